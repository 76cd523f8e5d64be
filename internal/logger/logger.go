package logger

import (
	"fmt"
	"io"
	"time"

	"channel-console/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// StorageInterface is the action journal backend.
type StorageInterface interface {
	SaveAction(entry *ActionLog) error
	GetActions(limit, offset int, failedOnly bool) ([]*ActionLog, int, error)
	GetActionsByChannel(channelID int) ([]*ActionLog, error)
	CleanupLogsByDays(days int) (int64, error)
	Close() error
	GetStats() (map[string]interface{}, error)
}

// LogConfig mirrors the logging section of the config file.
type LogConfig struct {
	Level         string
	LogActions    string // failed | success | all | none
	LogDirectory  string
	RetentionDays int
}

// Logger wraps the process-wide logrus logger and the action journal.
type Logger struct {
	logger    *logrus.Logger
	storage   StorageInterface
	config    LogConfig
	startTime time.Time
}

func newLogrus(level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	if out != nil {
		l.SetOutput(out)
	}
	return l
}

// NewLogger creates the logger and opens the journal under LogDirectory.
func NewLogger(config LogConfig) (*Logger, error) {
	l := newLogrus(config.Level, nil)

	storage, err := NewGORMStorage(config.LogDirectory, config.RetentionDays, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize action journal: %v", err)
	}
	return &Logger{
		logger:    l,
		storage:   storage,
		config:    config,
		startTime: time.Now(),
	}, nil
}

// NewConsoleLogger logs to out without a journal.
func NewConsoleLogger(config LogConfig, out io.Writer) *Logger {
	return &Logger{
		logger:    newLogrus(config.Level, out),
		config:    config,
		startTime: time.Now(),
	}
}

// Logrus exposes the underlying logger for packages that take *logrus.Logger.
func (l *Logger) Logrus() *logrus.Logger {
	return l.logger
}

// ObserveAction journals ev and, depending on log_actions, echoes it to the log.
func (l *Logger) ObserveAction(ev interfaces.ActionEvent) {
	entry := NewActionLog(ev)

	if l.storage != nil {
		if err := l.storage.SaveAction(entry); err != nil {
			l.Error("Failed to journal action", err, logrus.Fields{"action_id": entry.ActionID})
		}
	}

	if !l.shouldLogAction(entry) {
		return
	}
	fields := logrus.Fields{
		"action_id":   entry.ActionID,
		"kind":        entry.Kind,
		"outcome":     entry.Outcome,
		"duration_ms": entry.DurationMs,
	}
	if entry.ChannelID != 0 {
		fields["channel_id"] = entry.ChannelID
		fields["channel_name"] = entry.ChannelName
	}
	if entry.Value != "" {
		fields["value"] = entry.Value
	}
	if entry.Failed() {
		fields["message"] = entry.Message
		l.logger.WithFields(fields).Warn("Action failed")
	} else {
		l.logger.WithFields(fields).Info("Action completed")
	}
}

func (l *Logger) shouldLogAction(entry *ActionLog) bool {
	switch l.config.LogActions {
	case "failed":
		return entry.Failed()
	case "success":
		return !entry.Failed()
	case "none":
		return false
	default:
		return true
	}
}

func (l *Logger) Info(msg string, fields ...logrus.Fields) {
	if len(fields) > 0 {
		l.logger.WithFields(fields[0]).Info(msg)
	} else {
		l.logger.Info(msg)
	}
}

// Error logs msg with err attached.
func (l *Logger) Error(msg string, err error, fields ...logrus.Fields) {
	baseFields := logrus.Fields{}
	if err != nil {
		baseFields["error"] = err.Error()
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			baseFields[k] = v
		}
	}
	l.logger.WithFields(baseFields).Error(msg)
}

func (l *Logger) Debug(msg string, fields ...logrus.Fields) {
	if len(fields) > 0 {
		l.logger.WithFields(fields[0]).Debug(msg)
	} else {
		l.logger.Debug(msg)
	}
}

// GetActions pages through the journal, newest first.
func (l *Logger) GetActions(limit, offset int, failedOnly bool) ([]*ActionLog, int, error) {
	if l.storage == nil {
		return []*ActionLog{}, 0, nil
	}
	return l.storage.GetActions(limit, offset, failedOnly)
}

func (l *Logger) GetActionsByChannel(channelID int) ([]*ActionLog, error) {
	if l.storage == nil {
		return []*ActionLog{}, nil
	}
	return l.storage.GetActionsByChannel(channelID)
}

// CleanupLogsByDays removes entries older than days.
func (l *Logger) CleanupLogsByDays(days int) (int64, error) {
	if l.storage == nil {
		return 0, fmt.Errorf("storage not available")
	}
	return l.storage.CleanupLogsByDays(days)
}

func (l *Logger) GetStats() (map[string]interface{}, error) {
	if l.storage == nil {
		return nil, fmt.Errorf("storage not available")
	}
	stats, err := l.storage.GetStats()
	if err != nil {
		return nil, err
	}
	stats["uptime_seconds"] = time.Since(l.startTime).Seconds()
	return stats, nil
}

// GetDatabaseHealth reports on the journal database, if there is one.
func (l *Logger) GetDatabaseHealth() map[string]interface{} {
	if gormStorage, ok := l.storage.(*GORMStorage); ok {
		return gormStorage.GetDatabaseHealth()
	}
	return map[string]interface{}{
		"status":  "unknown",
		"message": "No action journal configured",
	}
}

// UpdateConfig applies a new level and action filter without reopening the journal.
func (l *Logger) UpdateConfig(newConfig LogConfig) {
	if level, err := logrus.ParseLevel(newConfig.Level); err == nil {
		l.logger.SetLevel(level)
	}
	l.config.Level = newConfig.Level
	l.config.LogActions = newConfig.LogActions
}

// Close closes the journal database.
func (l *Logger) Close() error {
	if l.storage != nil {
		return l.storage.Close()
	}
	return nil
}

var _ interfaces.ActionObserver = (*Logger)(nil)
