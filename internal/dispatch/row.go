package dispatch

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"channel-console/internal/channel"
	"channel-console/internal/collection"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/interfaces"
	"channel-console/internal/remote"
)

// Run resolves the page-relative index on the active page and performs kind.
// value carries the new priority, weight or test model where the kind needs one.
func (d *Dispatcher) Run(ctx context.Context, kind Kind, index int, value string) error {
	target, err := d.view.Resolve(index)
	if err != nil {
		a := d.begin(kind, collection.Target{}, value)
		return d.fail(a, err)
	}
	return d.RunTarget(ctx, kind, target, value)
}

// RunTarget performs kind against an already resolved row.
func (d *Dispatcher) RunTarget(ctx context.Context, kind Kind, target collection.Target, value string) error {
	switch kind {
	case KindDelete:
		return d.Delete(ctx, target)
	case KindEnable:
		return d.SetStatus(ctx, target, channel.StatusEnabled)
	case KindDisable:
		return d.SetStatus(ctx, target, channel.StatusManuallyDisabled)
	case KindSetPriority:
		return d.SetPriority(ctx, target, value)
	case KindSetWeight:
		return d.SetWeight(ctx, target, value)
	case KindHealthTest:
		return d.HealthTest(ctx, target)
	case KindRefreshBalance:
		return d.RefreshBalance(ctx, target)
	case KindSwitchTestModel:
		return d.SwitchTestModel(target, value)
	}
	return consoleerrors.NewValidationError("kind", "unknown row action "+strconv.Quote(string(kind)))
}

// Delete removes the channel remotely and hides its row. The slot is kept.
func (d *Dispatcher) Delete(ctx context.Context, target collection.Target) error {
	a := d.begin(KindDelete, target, "")
	if err := d.store.Delete(ctx, target.ID); err != nil {
		return d.fail(a, err)
	}
	d.apply(target.ID, func(r *channel.Record) error {
		r.State = r.State.Delete()
		return nil
	})
	return d.succeed(a, interfaces.NoticeSuccess, completedMessage)
}

// SetStatus enables or disables a channel and stores the status the server echoes.
func (d *Dispatcher) SetStatus(ctx context.Context, target collection.Target, status channel.Status) error {
	kind := KindEnable
	if status != channel.StatusEnabled {
		kind = KindDisable
	}
	a := d.begin(kind, target, strconv.Itoa(int(status)))

	if rec, ok := d.view.Cache().Get(target.ID); ok && rec.Deleted() {
		return d.fail(a, consoleerrors.NewConflictError("channel has been deleted").
			WithContext("channel", target.ID))
	}

	s := int(status)
	raw, err := d.store.Update(ctx, remote.UpdateRequest{ID: target.ID, Status: &s})
	if err != nil {
		return d.fail(a, err)
	}

	echoed := channel.Status(raw.Status)
	d.apply(target.ID, func(r *channel.Record) error {
		// a delete that landed in between wins
		if next, ok := r.State.WithStatus(echoed); ok {
			r.State = next
		}
		return nil
	})
	return d.succeed(a, interfaces.NoticeSuccess, completedMessage)
}

// parseInput returns ok=false for an empty value, which callers treat as a no-op.
func parseInput(field, value string) (int64, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, consoleerrors.NewValidationError(field, fmt.Sprintf("%s must be an integer", field)).
			WithContext("value", value)
	}
	return n, true, nil
}

// SetPriority parses value as an integer. An empty value is skipped.
func (d *Dispatcher) SetPriority(ctx context.Context, target collection.Target, value string) error {
	a := d.begin(KindSetPriority, target, value)
	priority, ok, err := parseInput("priority", value)
	if err != nil {
		return d.fail(a, err)
	}
	if !ok {
		return d.finish(a, interfaces.OutcomeSkipped, "", nil)
	}

	if _, err := d.store.Update(ctx, remote.UpdateRequest{ID: target.ID, Priority: &priority}); err != nil {
		return d.fail(a, err)
	}
	d.apply(target.ID, func(r *channel.Record) error {
		r.Priority = priority
		return nil
	})
	return d.succeed(a, interfaces.NoticeSuccess, completedMessage)
}

// SetWeight clamps negative weights to zero before submitting.
func (d *Dispatcher) SetWeight(ctx context.Context, target collection.Target, value string) error {
	a := d.begin(KindSetWeight, target, value)
	n, ok, err := parseInput("weight", value)
	if err != nil {
		return d.fail(a, err)
	}
	if !ok {
		return d.finish(a, interfaces.OutcomeSkipped, "", nil)
	}
	if n < 0 {
		n = 0
	}
	if n > math.MaxInt32 {
		return d.fail(a, consoleerrors.NewValidationError("weight", "weight is too large").WithContext("value", value))
	}
	weight := uint(n)

	if _, err := d.store.Update(ctx, remote.UpdateRequest{ID: target.ID, Weight: &weight}); err != nil {
		return d.fail(a, err)
	}
	d.apply(target.ID, func(r *channel.Record) error {
		r.Weight = int(weight)
		return nil
	})
	return d.succeed(a, interfaces.NoticeSuccess, completedMessage)
}

// HealthTest probes the channel with its current test model. Failures leave the
// row untouched.
func (d *Dispatcher) HealthTest(ctx context.Context, target collection.Target) error {
	model := target.TestModel
	if rec, ok := d.view.Cache().Get(target.ID); ok {
		model = rec.TestModel
	}
	a := d.begin(KindHealthTest, target, model)

	result, err := d.store.Test(ctx, target.ID, model)
	if err != nil {
		return d.fail(a, err)
	}
	if result.Model != "" {
		model = result.Model
	}
	testedAt := d.now().Unix()
	d.apply(target.ID, func(r *channel.Record) error {
		r.ResponseTime = int(math.Round(result.Time * 1000))
		r.TestTime = testedAt
		return nil
	})
	return d.succeed(a, interfaces.NoticeInfo,
		fmt.Sprintf("Channel %s test succeeded, model %s, took %.2f seconds", target.Name, model, result.Time))
}

// RefreshBalance asks the gateway to query the upstream balance.
func (d *Dispatcher) RefreshBalance(ctx context.Context, target collection.Target) error {
	a := d.begin(KindRefreshBalance, target, "")
	balance, err := d.store.UpdateBalance(ctx, target.ID)
	if err != nil {
		return d.fail(a, err)
	}
	updatedAt := d.now().Unix()
	d.apply(target.ID, func(r *channel.Record) error {
		r.Balance = balance
		r.BalanceUpdatedTime = updatedAt
		return nil
	})
	return d.succeed(a, interfaces.NoticeInfo, fmt.Sprintf("Channel %s balance updated", target.Name))
}

// SwitchTestModel changes the model used by later health tests. It never
// contacts the store.
func (d *Dispatcher) SwitchTestModel(target collection.Target, model string) error {
	a := d.begin(KindSwitchTestModel, target, model)
	model = strings.TrimSpace(model)
	_, err := d.view.Cache().UpdateByID(target.ID, func(r *channel.Record) error {
		if !r.HasModel(model) {
			return consoleerrors.NewValidationError("test_model", "model is not served by this channel").
				WithContext("model", model)
		}
		r.TestModel = model
		return nil
	})
	if err != nil {
		return d.fail(a, err)
	}
	return d.finish(a, interfaces.OutcomeSuccess, "", nil)
}

// apply folds a remote result into the cache. The row may have been dropped by
// a reload while the call was in flight; that is not an error.
func (d *Dispatcher) apply(id int, mutate collection.Mutator) {
	if _, err := d.view.Cache().UpdateByID(id, mutate); err != nil {
		d.logger.WithError(err).WithField("channel", id).Debug("Action result not applied")
	}
}
