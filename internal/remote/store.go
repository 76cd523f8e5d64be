package remote

import (
	"context"

	"channel-console/internal/channel"
)

// Scope selects which channels a bulk test covers.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeDisabled Scope = "disabled"
)

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	ID       int    `json:"id"`
	Status   *int   `json:"status,omitempty"`
	Priority *int64 `json:"priority,omitempty"`
	Weight   *uint  `json:"weight,omitempty"`
}

// TestResult is the outcome of a single-channel health test.
type TestResult struct {
	Time  float64 // seconds
	Model string
}

// Store is the channel store surface the collection view depends on.
type Store interface {
	ListPage(ctx context.Context, page int) ([]channel.Raw, error)
	Search(ctx context.Context, keyword string) ([]channel.Raw, error)
	Update(ctx context.Context, req UpdateRequest) (channel.Raw, error)
	Delete(ctx context.Context, id int) error
	DeleteDisabled(ctx context.Context) (int, error)
	Test(ctx context.Context, id int, model string) (TestResult, error)
	UpdateBalance(ctx context.Context, id int) (float64, error)
	TestAll(ctx context.Context, scope Scope) error
}

// Option is one global key/value setting.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OptionStore reads and writes gateway-wide options.
type OptionStore interface {
	ListOptions(ctx context.Context) ([]Option, error)
	UpdateOption(ctx context.Context, opt Option) error
	UpdateAbilities(ctx context.Context) error
}

// Observer receives one callback per completed remote call.
type Observer interface {
	ObserveRemoteCall(operation, outcome string, seconds float64)
}
