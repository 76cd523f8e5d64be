package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ConfigPersister writes client-local configuration changes back to disk with throttling.
type ConfigPersister struct {
	mu         sync.RWMutex
	config     *Config
	configPath string

	pendingChanges bool
	lastWrite      time.Time
	writeCount     int64
	throttleCount  int64

	flushInterval time.Duration
	maxDirtyTime  time.Duration // forces a write once changes are this old

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once

	beforeWrite func(*Config) error
	afterWrite  func(*Config) error
}

type PersisterConfig struct {
	FlushInterval time.Duration
	MaxDirtyTime  time.Duration
	BeforeWrite   func(*Config) error
	AfterWrite    func(*Config) error
}

// NewConfigPersister tracks config for path. A nil cfg uses the default intervals.
func NewConfigPersister(config *Config, path string, cfg *PersisterConfig) *ConfigPersister {
	if cfg == nil {
		cfg = &PersisterConfig{}
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = Default.Persister.FlushInterval
	}
	if cfg.MaxDirtyTime <= 0 {
		cfg.MaxDirtyTime = Default.Persister.MaxDirtyTime
	}

	return &ConfigPersister{
		config:        config,
		configPath:    path,
		flushInterval: cfg.FlushInterval,
		maxDirtyTime:  cfg.MaxDirtyTime,
		stopChan:      make(chan struct{}),
		beforeWrite:   cfg.BeforeWrite,
		afterWrite:    cfg.AfterWrite,
		lastWrite:     time.Now(),
	}
}

// Start runs the flush loop until Stop.
func (cp *ConfigPersister) Start() {
	cp.ticker = time.NewTicker(cp.flushInterval)
	go cp.flushLoop()
	logrus.WithFields(logrus.Fields{
		"flush_interval": cp.flushInterval.String(),
		"max_dirty_time": cp.maxDirtyTime.String(),
	}).Info("config persister started")
}

// Stop halts the background loop and writes any pending change.
func (cp *ConfigPersister) Stop() error {
	var err error
	cp.stopOnce.Do(func() {
		close(cp.stopChan)
		if cp.ticker != nil {
			cp.ticker.Stop()
		}
		cp.mu.Lock()
		defer cp.mu.Unlock()
		err = cp.flush()
	})
	return err
}

// MarkDirty schedules a write for the next flush tick.
func (cp *ConfigPersister) MarkDirty() {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if !cp.pendingChanges {
		logrus.WithField("flush_interval", cp.flushInterval.String()).Debug("config marked dirty")
	}
	cp.pendingChanges = true
}

// Mutate applies fn to the tracked config under the write lock and marks it dirty.
func (cp *ConfigPersister) Mutate(fn func(*Config)) {
	cp.mu.Lock()
	fn(cp.config)
	cp.mu.Unlock()
	cp.MarkDirty()
}

// Snapshot returns a shallow copy of the tracked config.
func (cp *ConfigPersister) Snapshot() Config {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return *cp.config
}

// FlushNow writes immediately, ignoring throttling. Used for operator toggles.
func (cp *ConfigPersister) FlushNow() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.flushForce()
}

func (cp *ConfigPersister) flushLoop() {
	for {
		select {
		case <-cp.ticker.C:
			cp.flushIfNeeded()
		case <-cp.stopChan:
			return
		}
	}
}

func (cp *ConfigPersister) flushIfNeeded() {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if !cp.pendingChanges {
		return
	}

	sinceLastWrite := time.Since(cp.lastWrite)
	if sinceLastWrite >= cp.maxDirtyTime {
		logrus.WithField("max_dirty_time", cp.maxDirtyTime.String()).Warn("config dirty for too long, forcing write")
		if err := cp.flush(); err != nil {
			logrus.WithError(err).Error("config flush failed")
		}
		return
	}

	if sinceLastWrite < cp.flushInterval {
		cp.throttleCount++
		return
	}

	if err := cp.flush(); err != nil {
		logrus.WithError(err).Error("config flush failed")
	}
}

// flush requires cp.mu held.
func (cp *ConfigPersister) flush() error {
	if !cp.pendingChanges {
		return nil
	}
	return cp.flushForce()
}

// flushForce requires cp.mu held.
func (cp *ConfigPersister) flushForce() error {
	if cp.beforeWrite != nil {
		if err := cp.beforeWrite(cp.config); err != nil {
			return fmt.Errorf("beforeWrite callback failed: %w", err)
		}
	}

	startTime := time.Now()
	if err := SaveConfig(cp.config, cp.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cp.pendingChanges = false
	cp.lastWrite = time.Now()
	cp.writeCount++

	logrus.WithFields(logrus.Fields{
		"writes":      cp.writeCount,
		"throttled":   cp.throttleCount,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("config written")

	if cp.afterWrite != nil {
		if err := cp.afterWrite(cp.config); err != nil {
			logrus.WithError(err).Warn("afterWrite callback failed")
		}
	}

	return nil
}

// GetStats reports write and throttle counters.
func (cp *ConfigPersister) GetStats() PersisterStats {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	return PersisterStats{
		WriteCount:     cp.writeCount,
		ThrottleCount:  cp.throttleCount,
		PendingChanges: cp.pendingChanges,
		LastWrite:      cp.lastWrite,
		FlushInterval:  cp.flushInterval,
	}
}

type PersisterStats struct {
	WriteCount     int64
	ThrottleCount  int64
	PendingChanges bool
	LastWrite      time.Time
	FlushInterval  time.Duration
}

func (ps PersisterStats) String() string {
	status := "clean"
	if ps.PendingChanges {
		status = "dirty"
	}
	return fmt.Sprintf("ConfigPersister Stats: writes=%d, throttled=%d, status=%s, last_write=%v, interval=%v",
		ps.WriteCount, ps.ThrottleCount, status, ps.LastWrite.Format("15:04:05"), ps.FlushInterval)
}

// DetailToggle adapts the persister to the view's show_detail setting.
type DetailToggle struct {
	persister *ConfigPersister
}

// NewDetailToggle stores show_detail through p.
func NewDetailToggle(p *ConfigPersister) *DetailToggle {
	return &DetailToggle{persister: p}
}

func (d *DetailToggle) ShowDetail() bool {
	return d.persister.Snapshot().View.ShowDetail
}

// SetShowDetail writes the setting immediately.
func (d *DetailToggle) SetShowDetail(show bool) error {
	d.persister.Mutate(func(c *Config) { c.View.ShowDetail = show })
	return d.persister.FlushNow()
}
