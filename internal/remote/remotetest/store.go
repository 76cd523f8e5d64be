// Package remotetest provides an in-memory channel store for tests.
package remotetest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/remote"
)

// Store is an in-memory remote.Store and remote.OptionStore. Hooks let tests
// block or fail individual calls.
type Store struct {
	mu       sync.Mutex
	rows     []channel.Raw
	options  map[string]string
	PageSize int

	// Reject makes the named operation answer success=false with the given message.
	Reject map[string]string
	// Fail makes the named operation fail as a transport error.
	Fail map[string]error
	// Gate, when set for an operation, is received from before the call returns.
	Gate map[string]chan struct{}
	// CoerceStatus maps a requested status to the one the store echoes back.
	CoerceStatus map[int]int

	TestTime  float64
	Balance   float64
	Calls     []string
	BulkTests []remote.Scope
	Abilities int
}

// NewStore serves rows in pages of pageSize.
func NewStore(pageSize int, rows ...channel.Raw) *Store {
	return &Store{
		rows:         append([]channel.Raw(nil), rows...),
		options:      map[string]string{},
		PageSize:     pageSize,
		Reject:       map[string]string{},
		Fail:         map[string]error{},
		Gate:         map[string]chan struct{}{},
		CoerceStatus: map[int]int{},
		TestTime:     1.23,
		Balance:      10,
	}
}

// Rows generates n rows with ids 1..n, each with models "m<id>,alt".
func Rows(n int) []channel.Raw {
	out := make([]channel.Raw, 0, n)
	for i := 1; i <= n; i++ {
		p := int64(0)
		w := uint(0)
		out = append(out, channel.Raw{
			ID:       i,
			Name:     "channel-" + strconv.Itoa(i),
			Type:     channel.TypeOpenAI,
			Status:   int(channel.StatusEnabled),
			Priority: &p,
			Weight:   &w,
			Models:   "m" + strconv.Itoa(i) + ",alt",
			Group:    "default",
		})
	}
	return out
}

func (s *Store) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, op)
	gate := s.Gate[op]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return consoleerrors.ClassifyError(ctx.Err())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.Reject[op]; ok {
		return consoleerrors.NewRemoteRejection(op, msg)
	}
	if err, ok := s.Fail[op]; ok {
		return consoleerrors.NewNetworkError("generic", "Network operation failed", err).WithOperation(op)
	}
	return nil
}

// SetRows replaces the store contents.
func (s *Store) SetRows(rows []channel.Raw) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]channel.Raw(nil), rows...)
}

// CallCount counts calls to op, including rejected ones.
func (s *Store) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (s *Store) ListPage(ctx context.Context, page int) ([]channel.Raw, error) {
	if err := s.enter(ctx, "list"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start := page * s.PageSize
	if start >= len(s.rows) {
		return []channel.Raw{}, nil
	}
	end := start + s.PageSize
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return append([]channel.Raw(nil), s.rows[start:end]...), nil
}

func (s *Store) Search(ctx context.Context, keyword string) ([]channel.Raw, error) {
	if err := s.enter(ctx, "search"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []channel.Raw{}
	for _, r := range s.rows {
		if strings.Contains(r.Name, keyword) || strconv.Itoa(r.ID) == keyword {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) find(id int) int {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Update(ctx context.Context, req remote.UpdateRequest) (channel.Raw, error) {
	if err := s.enter(ctx, "update"); err != nil {
		return channel.Raw{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(req.ID)
	if i < 0 {
		return channel.Raw{}, consoleerrors.NewRemoteRejection("update", "record not found")
	}
	if req.Status != nil {
		status := *req.Status
		if coerced, ok := s.CoerceStatus[status]; ok {
			status = coerced
		}
		s.rows[i].Status = status
	}
	if req.Priority != nil {
		p := *req.Priority
		s.rows[i].Priority = &p
	}
	if req.Weight != nil {
		w := *req.Weight
		s.rows[i].Weight = &w
	}
	return s.rows[i], nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if err := s.enter(ctx, "delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i >= 0 {
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
	}
	return nil
}

func (s *Store) DeleteDisabled(ctx context.Context) (int, error) {
	if err := s.enter(ctx, "delete_disabled"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	removed := 0
	for _, r := range s.rows {
		if channel.Status(r.Status).Disabled() {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}

func (s *Store) Test(ctx context.Context, id int, model string) (remote.TestResult, error) {
	if err := s.enter(ctx, "test"); err != nil {
		return remote.TestResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return remote.TestResult{Time: s.TestTime, Model: model}, nil
}

func (s *Store) UpdateBalance(ctx context.Context, id int) (float64, error) {
	if err := s.enter(ctx, "update_balance"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Balance, nil
}

func (s *Store) TestAll(ctx context.Context, scope remote.Scope) error {
	if err := s.enter(ctx, "test_all"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BulkTests = append(s.BulkTests, scope)
	return nil
}

func (s *Store) ListOptions(ctx context.Context) ([]remote.Option, error) {
	if err := s.enter(ctx, "list_options"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remote.Option, 0, len(s.options))
	for k, v := range s.options {
		out = append(out, remote.Option{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// SetOption seeds an option without recording a call.
func (s *Store) SetOption(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[key] = value
}

func (s *Store) UpdateOption(ctx context.Context, opt remote.Option) error {
	if err := s.enter(ctx, "update_option"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[opt.Key] = opt.Value
	return nil
}

func (s *Store) UpdateAbilities(ctx context.Context) error {
	if err := s.enter(ctx, "update_abilities"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Abilities++
	return nil
}

var (
	_ remote.Store       = (*Store)(nil)
	_ remote.OptionStore = (*Store)(nil)
)
