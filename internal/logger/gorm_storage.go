package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// GORMStorage keeps the action journal in a SQLite file through gorm.
type GORMStorage struct {
	db            *gorm.DB
	config        *GORMConfig
	log           *logrus.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewGORMStorage opens (or creates) actions.db in logDir. retentionDays > 0
// starts a daily cleanup of older entries.
func NewGORMStorage(logDir string, retentionDays int, log *logrus.Logger) (*GORMStorage, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	config := DefaultGORMConfig(filepath.Join(logDir, "actions.db"))

	// modernc.org/sqlite registers itself as "sqlite"
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        config.DSN(),
	}, &gorm.Config{
		Logger:                                   logger.Default.LogMode(config.LogLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = memory",
		fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeout),
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			log.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	if err := db.AutoMigrate(&GormActionLog{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	storage := &GORMStorage{
		db:          db,
		config:      config,
		log:         log,
		stopCleanup: make(chan struct{}),
	}
	if retentionDays > 0 {
		storage.startBackgroundCleanup(retentionDays)
	}
	return storage, nil
}

func isBusyError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "database is locked") ||
		strings.Contains(s, "SQLITE_BUSY") ||
		strings.Contains(s, "database table is locked")
}

// SaveAction writes one entry, retrying with backoff while the database is busy.
func (g *GORMStorage) SaveAction(entry *ActionLog) error {
	row := ConvertToGormActionLog(entry)
	delay := 5 * time.Millisecond

	attempts := g.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = g.db.Create(row).Error; err == nil {
			return nil
		}
		if !isBusyError(err) {
			break
		}
		time.Sleep(delay)
		if delay *= 2; delay > 500*time.Millisecond {
			delay = 500 * time.Millisecond
		}
	}
	return fmt.Errorf("failed to save action %s: %v", entry.ActionID, err)
}

// GetActions pages through the journal, newest first.
func (g *GORMStorage) GetActions(limit, offset int, failedOnly bool) ([]*ActionLog, int, error) {
	var rows []GormActionLog
	var total int64

	query := g.db.Model(&GormActionLog{})
	if failedOnly {
		query = query.Where("outcome IN ?", failedOutcomes)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %v", err)
	}

	err := query.Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query actions: %v", err)
	}

	out := make([]*ActionLog, len(rows))
	for i := range rows {
		out[i] = ConvertFromGormActionLog(&rows[i])
	}
	return out, int(total), nil
}

// GetActionsByChannel returns every journaled action for one channel, oldest first.
func (g *GORMStorage) GetActionsByChannel(channelID int) ([]*ActionLog, error) {
	var rows []GormActionLog
	err := g.db.Where("channel_id = ?", channelID).
		Order("timestamp ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query actions by channel: %v", err)
	}

	out := make([]*ActionLog, len(rows))
	for i := range rows {
		out[i] = ConvertFromGormActionLog(&rows[i])
	}
	return out, nil
}

// CleanupLogsByDays deletes entries older than days; days <= 0 deletes everything.
func (g *GORMStorage) CleanupLogsByDays(days int) (int64, error) {
	var result *gorm.DB
	if days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		result = g.db.Where("timestamp < ?", cutoff).Delete(&GormActionLog{})
	} else {
		result = g.db.Where("1 = 1").Delete(&GormActionLog{})
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup actions: %v", result.Error)
	}

	if result.RowsAffected > 0 {
		if err := g.db.Exec("VACUUM").Error; err != nil {
			g.log.WithError(err).Warn("Failed to vacuum action journal")
		}
	}
	return result.RowsAffected, nil
}

func (g *GORMStorage) Close() error {
	var err error
	g.closeOnce.Do(func() {
		if g.cleanupTicker != nil {
			g.cleanupTicker.Stop()
		}
		close(g.stopCleanup)

		sqlDB, dbErr := g.db.DB()
		if dbErr != nil {
			err = dbErr
			return
		}
		err = sqlDB.Close()
	})
	return err
}

func (g *GORMStorage) startBackgroundCleanup(days int) {
	g.cleanupTicker = time.NewTicker(24 * time.Hour)

	go func() {
		for {
			select {
			case <-g.cleanupTicker.C:
				deleted, err := g.CleanupLogsByDays(days)
				if err != nil {
					g.log.WithError(err).Warn("Background journal cleanup failed")
				} else if deleted > 0 {
					g.log.WithField("deleted", deleted).Info("Background journal cleanup")
				}
			case <-g.stopCleanup:
				return
			}
		}
	}()
}

// GetStats summarizes the journal.
func (g *GORMStorage) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int64
	if err := g.db.Model(&GormActionLog{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count actions: %v", err)
	}
	stats["total_actions"] = total

	var failed int64
	g.db.Model(&GormActionLog{}).Where("outcome IN ?", failedOutcomes).Count(&failed)
	stats["failed_actions"] = failed

	var oldest GormActionLog
	if err := g.db.Order("timestamp ASC").First(&oldest).Error; err == nil {
		stats["oldest_action"] = oldest.Timestamp
	}

	type kindAgg struct {
		Kind    string
		Outcome string
		Count   int64
	}
	var rows []kindAgg
	g.db.Model(&GormActionLog{}).
		Select("kind, outcome, COUNT(*) as count").
		Group("kind, outcome").
		Order("kind").
		Scan(&rows)

	byKind := make(map[string]map[string]int64)
	for _, row := range rows {
		if byKind[row.Kind] == nil {
			byKind[row.Kind] = make(map[string]int64)
		}
		byKind[row.Kind][row.Outcome] = row.Count
	}
	stats["by_kind"] = byKind

	var pageCount, pageSize int
	g.db.Raw("PRAGMA page_count").Scan(&pageCount)
	g.db.Raw("PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// GetDatabaseHealth reports connectivity and pool usage.
func (g *GORMStorage) GetDatabaseHealth() map[string]interface{} {
	health := make(map[string]interface{})

	sqlDB, err := g.db.DB()
	if err != nil {
		health["status"] = "error"
		health["error"] = err.Error()
		return health
	}

	var result int
	if err := g.db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		health["status"] = "error"
		health["error"] = err.Error()
	} else {
		health["status"] = "healthy"
	}

	stats := sqlDB.Stats()
	health["open_connections"] = stats.OpenConnections
	health["in_use"] = stats.InUse
	health["idle"] = stats.Idle
	return health
}
