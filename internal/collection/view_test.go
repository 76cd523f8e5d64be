package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/interfaces"
	"channel-console/internal/remote/remotetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedNotice struct {
	level   interfaces.NoticeLevel
	message string
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []recordedNotice
}

func (r *noticeRecorder) Notify(level interfaces.NoticeLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, recordedNotice{level, message})
}

func (r *noticeRecorder) all() []recordedNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedNotice(nil), r.notices...)
}

type memoryDetail struct {
	show bool
	err  error
}

func (m *memoryDetail) ShowDetail() bool { return m.show }

func (m *memoryDetail) SetShowDetail(show bool) error {
	if m.err != nil {
		return m.err
	}
	m.show = show
	return nil
}

type nameTags struct{}

func (nameTags) TagsFor(rec *channel.Record) []string {
	return []string{"tag-" + rec.Name}
}

func newTestView(t *testing.T, rows int) (*View, *remotetest.Store, *noticeRecorder) {
	t.Helper()
	store := remotetest.NewStore(10, remotetest.Rows(rows)...)
	notices := &noticeRecorder{}
	v := NewView(store, Options{PageSize: 10, Notifier: notices})
	return v, store, notices
}

func TestLoad(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()

	require.NoError(t, v.Load(ctx))
	assert.Equal(t, 10, v.Cache().Len())
	assert.Equal(t, 1, v.ActivePage())
	assert.Equal(t, ModeBrowsing, v.Mode())
	assert.Equal(t, 2, v.TotalPages())
	assert.Equal(t, 1, store.CallCount("list"))
}

func TestGoToBoundaryPageFetchesAndSplices(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	require.NoError(t, v.GoToPage(ctx, 2))
	assert.Equal(t, 20, v.Cache().Len())
	assert.Equal(t, 2, v.ActivePage())
	assert.Equal(t, 2, store.CallCount("list"))

	// going back to a loaded page does not fetch
	require.NoError(t, v.GoToPage(ctx, 1))
	assert.Equal(t, 2, store.CallCount("list"))

	require.NoError(t, v.GoToPage(ctx, 3))
	assert.Equal(t, 25, v.Cache().Len())
	assert.Equal(t, 3, v.TotalPages())
	assert.Equal(t, 3, store.CallCount("list"))

	page := v.Render()
	require.Len(t, page.Rows, 5)
	assert.Equal(t, 21, page.Rows[0].Record.ID)
}

func TestGoToPageOutOfRange(t *testing.T) {
	v, store, _ := newTestView(t, 5)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	err := v.GoToPage(ctx, 2)
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeValidation))
	err = v.GoToPage(ctx, 0)
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeValidation))
	assert.Equal(t, 1, v.ActivePage())
	assert.Equal(t, 1, store.CallCount("list"))
}

func TestGoToPageFetchFailureKeepsPage(t *testing.T) {
	v, store, notices := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	store.Fail["list"] = errors.New("connection reset")
	err := v.GoToPage(ctx, 2)
	require.Error(t, err)
	assert.True(t, consoleerrors.IsTransport(err))
	assert.Equal(t, 1, v.ActivePage())
	assert.Equal(t, 10, v.Cache().Len())

	got := notices.all()
	require.Len(t, got, 1)
	assert.Equal(t, interfaces.NoticeError, got[0].level)
}

func TestRejectedLoadSurfacesMessage(t *testing.T) {
	v, store, notices := newTestView(t, 3)
	store.Reject["list"] = "invalid token"

	err := v.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, v.Cache().Len())

	got := notices.all()
	require.Len(t, got, 1)
	assert.Equal(t, "invalid token", got[0].message)
}

func TestSearch(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	require.NoError(t, v.Search(ctx, "  channel-1 "))
	assert.Equal(t, ModeSearching, v.Mode())
	assert.Equal(t, 1, v.ActivePage())
	// channel-1 and channel-10..19
	assert.Equal(t, 11, v.Cache().Len())
	assert.Equal(t, "channel-1", v.Render().Keyword)

	// navigation stays inside the result set
	require.NoError(t, v.GoToPage(ctx, 2))
	assert.Equal(t, 1, store.CallCount("list"))
	assert.Len(t, v.Render().Rows, 1)
}

func TestSearchNoResults(t *testing.T) {
	v, _, _ := newTestView(t, 5)
	ctx := context.Background()

	require.NoError(t, v.Search(ctx, "nothing-matches"))
	assert.Equal(t, 0, v.Cache().Len())
	assert.Equal(t, 1, v.TotalPages())
	assert.Empty(t, v.Render().Rows)
}

func TestSearchRejectsMarkup(t *testing.T) {
	v, store, notices := newTestView(t, 5)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	err := v.Search(ctx, "<script>alert(1)</script>")
	require.Error(t, err)
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeValidation))
	assert.Zero(t, store.CallCount("search"))
	assert.Equal(t, ModeBrowsing, v.Mode())
	assert.Len(t, notices.all(), 1)
}

func TestEmptySearchReloadsPageZero(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	require.NoError(t, v.GoToPage(ctx, 2))
	require.NoError(t, v.Search(ctx, "channel-2"))

	require.NoError(t, v.Search(ctx, "   "))
	assert.Equal(t, ModeBrowsing, v.Mode())
	assert.Equal(t, 1, v.ActivePage())
	assert.Equal(t, 10, v.Cache().Len())
	assert.Equal(t, 1, store.CallCount("search"))

	ids := idsOf(v.Cache())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)
}

func TestPageAdvanceResolvingAfterSearchIsDropped(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	gate := make(chan struct{})
	store.Gate["list"] = gate
	done := make(chan error, 1)
	go func() { done <- v.GoToPage(ctx, 2) }()
	require.Eventually(t, func() bool { return store.CallCount("list") == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, v.Search(ctx, "channel-2"))
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, ModeSearching, v.Mode())
	assert.Equal(t, 1, v.ActivePage())
	assert.Equal(t, []int{2, 20, 21, 22, 23, 24, 25}, idsOf(v.Cache()))
}

func TestRefreshResolvingAfterSearchIsDropped(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	require.NoError(t, v.GoToPage(ctx, 2))

	gate := make(chan struct{})
	store.Gate["list"] = gate
	done := make(chan error, 1)
	go func() { done <- v.Refresh(ctx) }()
	require.Eventually(t, func() bool { return store.CallCount("list") == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, v.Search(ctx, "channel-1"))
	close(gate)
	require.NoError(t, <-done)

	page := v.Render()
	assert.Equal(t, ModeSearching, page.Mode)
	assert.Equal(t, "channel-1", page.Keyword)
	assert.Equal(t, 11, page.Loaded)
}

func TestSearchSupersededByLoadKeepsBrowsing(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()

	gate := make(chan struct{})
	store.Gate["search"] = gate
	done := make(chan error, 1)
	go func() { done <- v.Search(ctx, "channel-2") }()
	require.Eventually(t, func() bool { return store.CallCount("search") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, v.Load(ctx))
	close(gate)
	require.NoError(t, <-done)

	page := v.Render()
	assert.Equal(t, ModeBrowsing, page.Mode)
	assert.Empty(t, page.Keyword)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, idsOf(v.Cache()))
}

func TestRefreshBrowsingSplicesActivePage(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	require.NoError(t, v.GoToPage(ctx, 2))

	rows := remotetest.Rows(25)
	rows[12].Name = "renamed"
	store.SetRows(rows)

	require.NoError(t, v.Refresh(ctx))
	assert.Equal(t, 20, v.Cache().Len())
	assert.Equal(t, 2, v.ActivePage())
	rec, ok := v.Cache().Get(13)
	require.True(t, ok)
	assert.Equal(t, "renamed", rec.Name)
}

func TestRefreshSearchingRerunsSearch(t *testing.T) {
	v, store, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Search(ctx, "channel-2"))

	require.NoError(t, v.Refresh(ctx))
	assert.Equal(t, 2, store.CallCount("search"))
	assert.Equal(t, ModeSearching, v.Mode())
}

func TestSortKeepsModeAndPage(t *testing.T) {
	v, _, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Search(ctx, "channel-1"))

	require.NoError(t, v.Sort("id"))
	assert.Equal(t, ModeSearching, v.Mode())
	assert.Equal(t, "id", v.Render().SortedBy)

	err := v.Sort("bogus")
	assert.Error(t, err)
	assert.Equal(t, "id", v.Render().SortedBy)
}

func TestRenderHidesDeletedRows(t *testing.T) {
	v, _, _ := newTestView(t, 3)
	require.NoError(t, v.Load(context.Background()))

	_, err := v.Cache().UpdateByID(2, func(r *channel.Record) error {
		r.State = r.State.Delete()
		return nil
	})
	require.NoError(t, err)

	page := v.Render()
	assert.Equal(t, 3, page.Loaded)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, 1, page.Rows[0].Record.ID)
	assert.Equal(t, 3, page.Rows[1].Record.ID)
	assert.Equal(t, 2, page.Rows[1].Index)
}

func TestRenderLabelsAndTags(t *testing.T) {
	store := remotetest.NewStore(10, remotetest.Rows(1)...)
	detail := &memoryDetail{show: true}
	v := NewView(store, Options{PageSize: 10, Detail: detail, Tags: nameTags{}})
	require.NoError(t, v.Load(context.Background()))

	page := v.Render()
	require.Len(t, page.Rows, 1)
	row := page.Rows[0]
	assert.True(t, page.ShowDetail)
	assert.Equal(t, []string{"tag-channel-1"}, row.Tags)
	assert.Equal(t, channel.FormatResponseTime(0), row.ResponseTime)
	assert.NotEmpty(t, row.Balance)
	assert.Equal(t, "m1", row.Record.TestModel)
}

func TestToggleDetailPersists(t *testing.T) {
	store := remotetest.NewStore(10)
	detail := &memoryDetail{}
	v := NewView(store, Options{Detail: detail})

	show, err := v.ToggleDetail()
	require.NoError(t, err)
	assert.True(t, show)
	assert.True(t, detail.show)

	detail.err = errors.New("disk full")
	_, err = v.ToggleDetail()
	assert.Error(t, err)
	assert.False(t, v.ShowDetail())
}

func TestResolveCapturesID(t *testing.T) {
	v, _, _ := newTestView(t, 25)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	require.NoError(t, v.GoToPage(ctx, 2))

	target, err := v.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, 14, target.ID)
	assert.Equal(t, 2, target.Page)

	require.NoError(t, v.GoToPage(ctx, 1))
	assert.Equal(t, 14, target.ID)

	_, err = v.Resolve(10)
	assert.Error(t, err)
}
