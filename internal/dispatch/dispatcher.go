// Package dispatch runs row and bulk actions against the remote store and
// folds their results back into the collection view.
package dispatch

import (
	"time"

	"channel-console/internal/collection"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/interfaces"
	"channel-console/internal/remote"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind names a row or bulk action.
type Kind string

const (
	KindDelete          Kind = "delete"
	KindEnable          Kind = "enable"
	KindDisable         Kind = "disable"
	KindSetPriority     Kind = "set-priority"
	KindSetWeight       Kind = "set-weight"
	KindHealthTest      Kind = "health-test"
	KindRefreshBalance  Kind = "refresh-balance"
	KindSwitchTestModel Kind = "switch-test-model"

	KindTestAll       Kind = "test-all"
	KindTestDisabled  Kind = "test-disabled"
	KindPurgeDisabled Kind = "purge-disabled"
)

const completedMessage = "Operation completed successfully"

// Dispatcher runs row and bulk actions against the store and applies the results to the view.
type Dispatcher struct {
	view     *collection.View
	store    remote.Store
	notifier interfaces.Notifier
	observer interfaces.ActionObserver
	logger   *logrus.Logger
	now      func() time.Time
}

type Option func(*Dispatcher)

// WithObserver receives every finished action.
func WithObserver(o interfaces.ActionObserver) Option {
	return func(d *Dispatcher) { d.observer = o }
}

func WithLogger(l *logrus.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithClock replaces time.Now for test_time and balance_updated_time.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New builds a dispatcher that notifies through the view's notifier.
func New(view *collection.View, store remote.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		view:     view,
		store:    store,
		notifier: view.Notifier(),
		logger:   logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// action tracks one invocation from start to its journal event.
type action struct {
	event   interfaces.ActionEvent
	started time.Time
}

func (d *Dispatcher) begin(kind Kind, target collection.Target, value string) *action {
	now := d.now()
	return &action{
		started: now,
		event: interfaces.ActionEvent{
			ID:          uuid.New().String(),
			Kind:        string(kind),
			ChannelID:   target.ID,
			ChannelName: target.Name,
			Value:       value,
			Timestamp:   now,
		},
	}
}

// finish records the outcome, surfaces failures as notices and returns err.
func (d *Dispatcher) finish(a *action, outcome interfaces.ActionOutcome, message string, err error) error {
	a.event.Outcome = outcome
	a.event.Message = message
	a.event.Duration = d.now().Sub(a.started)

	entry := d.logger.WithFields(logrus.Fields{
		"action_id": a.event.ID,
		"kind":      a.event.Kind,
		"channel":   a.event.ChannelID,
		"outcome":   outcome,
	})
	if err != nil {
		entry.WithField("summary", consoleerrors.ErrorSummary(err)).WithError(err).Warn("Channel action failed")
		level := interfaces.NoticeError
		if outcome == interfaces.OutcomeValidation || outcome == interfaces.OutcomeConflict {
			level = interfaces.NoticeWarning
		}
		d.notifier.Notify(level, message)
	} else {
		entry.Debug("Channel action completed")
	}

	if d.observer != nil {
		d.observer.ObserveAction(a.event)
	}
	return err
}

func (d *Dispatcher) fail(a *action, err error) error {
	return d.finish(a, outcomeOf(err), consoleerrors.UserMessage(err), err)
}

func (d *Dispatcher) succeed(a *action, level interfaces.NoticeLevel, message string) error {
	d.notifier.Notify(level, message)
	return d.finish(a, interfaces.OutcomeSuccess, message, nil)
}

func outcomeOf(err error) interfaces.ActionOutcome {
	switch {
	case consoleerrors.IsRemoteRejection(err):
		return interfaces.OutcomeRejected
	case consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeValidation):
		return interfaces.OutcomeValidation
	case consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeConflict),
		consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeNotFound):
		return interfaces.OutcomeConflict
	default:
		return interfaces.OutcomeTransport
	}
}
