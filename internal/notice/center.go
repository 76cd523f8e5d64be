// Package notice collects transient operator messages, keeps a bounded
// history of them and forwards each one to the configured sinks.
package notice

import (
	"sync"
	"time"

	"channel-console/internal/interfaces"
	"channel-console/internal/utils"

	"github.com/google/uuid"
)

// Notice is one message shown to the operator.
type Notice struct {
	ID      string                 `json:"id"`
	Level   interfaces.NoticeLevel `json:"level"`
	Message string                 `json:"message"`
	Time    time.Time              `json:"time"`
}

// Sink receives every notice as it is raised. Deliver must not block.
type Sink interface {
	Deliver(n Notice)
}

type SinkFunc func(n Notice)

func (f SinkFunc) Deliver(n Notice) { f(n) }

// Center implements interfaces.Notifier.
type Center struct {
	history *utils.CircularBuffer[Notice]
	mu      sync.RWMutex
	sinks   []Sink
	now     func() time.Time
}

// NewCenter keeps the last historySize notices.
func NewCenter(historySize int, sinks ...Sink) *Center {
	if historySize <= 0 {
		historySize = 200
	}
	return &Center{
		history: utils.NewCircularBuffer[Notice](historySize),
		sinks:   sinks,
		now:     time.Now,
	}
}

// AddSink adds s for subsequent notices.
func (c *Center) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Notify records the notice and delivers it to every sink in order.
func (c *Center) Notify(level interfaces.NoticeLevel, message string) {
	n := Notice{
		ID:      uuid.New().String(),
		Level:   level,
		Message: message,
		Time:    c.now(),
	}
	c.history.Add(n)

	c.mu.RLock()
	sinks := c.sinks
	c.mu.RUnlock()
	for _, s := range sinks {
		s.Deliver(n)
	}
}

// Recent returns up to limit notices, newest first.
func (c *Center) Recent(limit int) []Notice {
	return c.history.Recent(limit)
}

// Last returns the newest notice of level, if any is still in the history.
func (c *Center) Last(level interfaces.NoticeLevel) (Notice, bool) {
	return c.history.Find(func(n Notice) bool { return n.Level == level })
}

func (c *Center) Clear() {
	c.history.Clear()
}

var _ interfaces.Notifier = (*Center)(nil)
