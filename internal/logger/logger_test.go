package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"channel-console/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, logActions string) *Logger {
	t.Helper()
	l, err := NewLogger(LogConfig{
		Level:        "debug",
		LogActions:   logActions,
		LogDirectory: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func event(id, kind string, channelID int, outcome interfaces.ActionOutcome, at time.Time) interfaces.ActionEvent {
	return interfaces.ActionEvent{
		ID:          id,
		Kind:        kind,
		ChannelID:   channelID,
		ChannelName: "channel",
		Outcome:     outcome,
		Duration:    25 * time.Millisecond,
		Timestamp:   at,
	}
}

func TestJournalPaging(t *testing.T) {
	l := newTestLogger(t, "all")
	base := time.Now().Add(-time.Hour)

	l.ObserveAction(event("a1", "delete", 1, interfaces.OutcomeSuccess, base))
	l.ObserveAction(event("a2", "enable", 2, interfaces.OutcomeRejected, base.Add(time.Minute)))
	l.ObserveAction(event("a3", "set-weight", 1, interfaces.OutcomeSkipped, base.Add(2*time.Minute)))
	l.ObserveAction(event("a4", "health-test", 3, interfaces.OutcomeTransport, base.Add(3*time.Minute)))

	all, total, err := l.GetActions(10, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, all, 4)
	assert.Equal(t, "a4", all[0].ActionID)
	assert.Equal(t, int64(25), all[0].DurationMs)

	page, total, err := l.GetActions(2, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "a3", page[0].ActionID)

	failed, total, err := l.GetActions(10, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, a := range failed {
		assert.True(t, a.Failed())
	}

	byChannel, err := l.GetActionsByChannel(1)
	require.NoError(t, err)
	require.Len(t, byChannel, 2)
	assert.Equal(t, "a1", byChannel[0].ActionID)
}

func TestCleanupLogsByDays(t *testing.T) {
	l := newTestLogger(t, "none")

	l.ObserveAction(event("old", "delete", 1, interfaces.OutcomeSuccess, time.Now().AddDate(0, 0, -40)))
	l.ObserveAction(event("new", "delete", 2, interfaces.OutcomeSuccess, time.Now()))

	deleted, err := l.CleanupLogsByDays(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	rest, total, err := l.GetActions(10, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "new", rest[0].ActionID)

	deleted, err = l.CleanupLogsByDays(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestStats(t *testing.T) {
	l := newTestLogger(t, "none")
	l.ObserveAction(event("s1", "delete", 1, interfaces.OutcomeSuccess, time.Now()))
	l.ObserveAction(event("s2", "delete", 2, interfaces.OutcomeConflict, time.Now()))

	stats, err := l.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["total_actions"])
	assert.Equal(t, int64(1), stats["failed_actions"])
	byKind := stats["by_kind"].(map[string]map[string]int64)
	assert.Equal(t, int64(1), byKind["delete"]["conflict"])

	assert.Equal(t, "healthy", l.GetDatabaseHealth()["status"])
}

func TestLogActionsFilter(t *testing.T) {
	tests := []struct {
		logActions string
		wantOK     bool
		wantFailed bool
	}{
		{"all", true, true},
		{"failed", false, true},
		{"success", true, false},
		{"none", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.logActions, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewConsoleLogger(LogConfig{Level: "info", LogActions: tt.logActions}, &buf)

			l.ObserveAction(event("ok", "enable", 1, interfaces.OutcomeSuccess, time.Now()))
			l.ObserveAction(event("bad", "enable", 1, interfaces.OutcomeRejected, time.Now()))

			out := buf.String()
			assert.Equal(t, tt.wantOK, strings.Contains(out, `"action_id":"ok"`))
			assert.Equal(t, tt.wantFailed, strings.Contains(out, `"action_id":"bad"`))
		})
	}
}

func TestConsoleLoggerWithoutJournal(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(LogConfig{Level: "warn"}, &buf)

	actions, total, err := l.GetActions(10, 0, false)
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.Zero(t, total)

	_, err = l.CleanupLogsByDays(1)
	assert.Error(t, err)
	assert.Equal(t, "unknown", l.GetDatabaseHealth()["status"])

	l.Info("hidden")
	l.Error("shown", nil)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	l.UpdateConfig(LogConfig{Level: "debug"})
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
	assert.NoError(t, l.Close())
}
