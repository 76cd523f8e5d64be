package logger

import (
	"strconv"
	"time"

	appconfig "channel-console/internal/config"

	"gorm.io/gorm/logger"
)

// GORMConfig contains configuration for the action journal database.
type GORMConfig struct {
	DBPath          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     int
	MaxRetries      int
	LogLevel        logger.LogLevel
}

// DefaultGORMConfig uses a single connection; SQLite serializes writers anyway.
func DefaultGORMConfig(dbPath string) *GORMConfig {
	return &GORMConfig{
		DBPath:          dbPath,
		MaxOpenConns:    appconfig.Default.Database.MaxOpenConns,
		MaxIdleConns:    appconfig.Default.Database.MaxIdleConns,
		ConnMaxLifetime: appconfig.Default.Database.ConnMaxLifetime,
		BusyTimeout:     appconfig.Default.Database.BusyTimeout,
		MaxRetries:      appconfig.Default.Database.MaxRetries,
		LogLevel:        logger.Silent,
	}
}

// DSN builds a modernc.org/sqlite connection string with WAL enabled.
func (c *GORMConfig) DSN() string {
	return c.DBPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(" + strconv.Itoa(c.BusyTimeout) + ")"
}
