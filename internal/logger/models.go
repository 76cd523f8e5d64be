package logger

import (
	"time"

	"channel-console/internal/interfaces"
)

// ActionLog is one journaled row or bulk action.
type ActionLog struct {
	ActionID    string    `json:"action_id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	ChannelID   int       `json:"channel_id,omitempty"`
	ChannelName string    `json:"channel_name,omitempty"`
	Value       string    `json:"value,omitempty"`
	Outcome     string    `json:"outcome"`
	Message     string    `json:"message,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
}

// Failed reports whether the action did not reach the store successfully.
func (a *ActionLog) Failed() bool {
	return isFailedOutcome(a.Outcome)
}

func isFailedOutcome(outcome string) bool {
	return outcome != string(interfaces.OutcomeSuccess) && outcome != string(interfaces.OutcomeSkipped)
}

// failedOutcomes is the SQL form of isFailedOutcome.
var failedOutcomes = []string{
	string(interfaces.OutcomeRejected),
	string(interfaces.OutcomeTransport),
	string(interfaces.OutcomeValidation),
	string(interfaces.OutcomeConflict),
}

// NewActionLog converts an action event into a journal entry.
func NewActionLog(ev interfaces.ActionEvent) *ActionLog {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ActionLog{
		ActionID:    ev.ID,
		Timestamp:   ts.UTC(),
		Kind:        ev.Kind,
		ChannelID:   ev.ChannelID,
		ChannelName: ev.ChannelName,
		Value:       ev.Value,
		Outcome:     string(ev.Outcome),
		Message:     ev.Message,
		DurationMs:  ev.Duration.Milliseconds(),
	}
}

// GormActionLog is the table layout of the journal.
type GormActionLog struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ActionID    string    `gorm:"column:action_id;size:64;uniqueIndex"`
	Timestamp   time.Time `gorm:"column:timestamp;index:idx_action_timestamp"`
	Kind        string    `gorm:"column:kind;size:32;index:idx_action_kind"`
	ChannelID   int       `gorm:"column:channel_id;index:idx_action_channel"`
	ChannelName string    `gorm:"column:channel_name;size:255"`
	Value       string    `gorm:"column:value;size:255"`
	Outcome     string    `gorm:"column:outcome;size:32;index:idx_action_outcome"`
	Message     string    `gorm:"column:message;type:text"`
	DurationMs  int64     `gorm:"column:duration_ms"`
}

func (GormActionLog) TableName() string { return "action_logs" }

// ConvertToGormActionLog maps an entry to its table row.
func ConvertToGormActionLog(a *ActionLog) *GormActionLog {
	return &GormActionLog{
		ActionID:    a.ActionID,
		Timestamp:   a.Timestamp,
		Kind:        a.Kind,
		ChannelID:   a.ChannelID,
		ChannelName: a.ChannelName,
		Value:       a.Value,
		Outcome:     a.Outcome,
		Message:     a.Message,
		DurationMs:  a.DurationMs,
	}
}

func ConvertFromGormActionLog(g *GormActionLog) *ActionLog {
	return &ActionLog{
		ActionID:    g.ActionID,
		Timestamp:   g.Timestamp,
		Kind:        g.Kind,
		ChannelID:   g.ChannelID,
		ChannelName: g.ChannelName,
		Value:       g.Value,
		Outcome:     g.Outcome,
		Message:     g.Message,
		DurationMs:  g.DurationMs,
	}
}
