package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"channel-console/internal/collection"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/interfaces"
	"channel-console/internal/remote"
)

const testStartedMessage = "Test started, refresh the page later to see the results"

// TestAll starts a server-side test of every channel. Results are not awaited.
func (d *Dispatcher) TestAll(ctx context.Context) error {
	return d.bulkTest(ctx, KindTestAll, remote.ScopeAll)
}

// TestDisabled starts a server-side test of the disabled channels only.
func (d *Dispatcher) TestDisabled(ctx context.Context) error {
	return d.bulkTest(ctx, KindTestDisabled, remote.ScopeDisabled)
}

func (d *Dispatcher) bulkTest(ctx context.Context, kind Kind, scope remote.Scope) error {
	a := d.begin(kind, collection.Target{}, string(scope))
	if err := d.store.TestAll(ctx, scope); err != nil {
		return d.fail(a, err)
	}
	return d.succeed(a, interfaces.NoticeInfo, testStartedMessage)
}

// PurgeDisabled deletes every disabled channel remotely, then reloads page zero.
func (d *Dispatcher) PurgeDisabled(ctx context.Context) (int, error) {
	a := d.begin(KindPurgeDisabled, collection.Target{}, "")
	count, err := d.store.DeleteDisabled(ctx)
	if err != nil {
		return 0, d.fail(a, err)
	}
	a.event.Value = fmt.Sprint(count)
	if err := d.succeed(a, interfaces.NoticeSuccess,
		fmt.Sprintf("Deleted all disabled channels, %d in total", count)); err != nil {
		return count, err
	}
	// the view reports its own load failure
	return count, d.view.Load(ctx)
}

// RunBulk dispatches a bulk kind by name.
func (d *Dispatcher) RunBulk(ctx context.Context, kind Kind) error {
	switch kind {
	case KindTestAll:
		return d.TestAll(ctx)
	case KindTestDisabled:
		return d.TestDisabled(ctx)
	case KindPurgeDisabled:
		_, err := d.PurgeDisabled(ctx)
		return err
	}
	return consoleerrors.NewValidationError("kind", "unknown bulk action "+strconv.Quote(string(kind)))
}
