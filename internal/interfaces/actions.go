package interfaces

import "time"

// ActionOutcome classifies how an action ended.
type ActionOutcome string

const (
	OutcomeSuccess    ActionOutcome = "success"
	OutcomeRejected   ActionOutcome = "rejected"
	OutcomeTransport  ActionOutcome = "transport_error"
	OutcomeValidation ActionOutcome = "validation_error"
	OutcomeConflict   ActionOutcome = "conflict"
	OutcomeSkipped    ActionOutcome = "skipped"
)

// ActionEvent describes one completed row or bulk action.
type ActionEvent struct {
	ID          string
	Kind        string
	ChannelID   int // 0 for bulk actions
	ChannelName string
	Value       string
	Outcome     ActionOutcome
	Message     string
	Duration    time.Duration
	Timestamp   time.Time
}

// ActionObserver is called synchronously after every action completes.
type ActionObserver interface {
	ObserveAction(ev ActionEvent)
}

// ActionObservers fans an event out to several observers.
type ActionObservers []ActionObserver

// ObserveAction forwards ev to every observer in order.
func (o ActionObservers) ObserveAction(ev ActionEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveAction(ev)
		}
	}
}
