package collection

import (
	"context"
	"strings"
	"sync"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/interfaces"
	"channel-console/internal/remote"
	"channel-console/internal/security"

	"github.com/sirupsen/logrus"
)

// Mode tells whether the cache holds browsed pages or a search result.
type Mode string

const (
	ModeBrowsing  Mode = "browsing"
	ModeSearching Mode = "searching"
)

// View is the page, sort and search controller over a Cache.
type View struct {
	store    remote.Store
	cache    *Cache
	notifier interfaces.Notifier
	tags     interfaces.TagSource
	detail   interfaces.DetailStore
	logger   *logrus.Logger

	// mu also orders cache writes against mode and page changes
	mu         sync.RWMutex
	generation uint64
	activePage int
	mode       Mode
	keyword    string
	sortedBy   string
	showDetail bool
}

// Options configure a View. Tags and Detail are optional.
type Options struct {
	PageSize int
	Notifier interfaces.Notifier
	Tags     interfaces.TagSource
	Detail   interfaces.DetailStore
	Logger   *logrus.Logger
}

// NewView reads the detail toggle once; it is not reloaded afterwards.
func NewView(store remote.Store, opts Options) *View {
	v := &View{
		store:      store,
		cache:      NewCache(opts.PageSize),
		notifier:   opts.Notifier,
		tags:       opts.Tags,
		detail:     opts.Detail,
		logger:     opts.Logger,
		activePage: 1,
		mode:       ModeBrowsing,
	}
	if v.notifier == nil {
		v.notifier = interfaces.NotifierFunc(func(interfaces.NoticeLevel, string) {})
	}
	if v.logger == nil {
		v.logger = logrus.StandardLogger()
	}
	if v.detail != nil {
		v.showDetail = v.detail.ShowDetail()
	}
	return v
}

// Cache exposes the backing cache.
func (v *View) Cache() *Cache { return v.cache }

func (v *View) Notifier() interfaces.Notifier { return v.notifier }

// ActivePage is the 1-based visible page.
func (v *View) ActivePage() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.activePage
}

// Mode reports browsing or searching.
func (v *View) Mode() Mode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}

// TotalPages counts the pages that can be selected, including the next unfetched one.
func (v *View) TotalPages() int {
	return TotalPages(v.cache.Len(), v.cache.PageSize())
}

// fail reports err to the operator and hands it back.
func (v *View) fail(operation string, err error) error {
	v.logger.WithError(err).WithField("operation", operation).Warn("channel view operation failed")
	v.notifier.Notify(interfaces.NoticeError, consoleerrors.UserMessage(err))
	return err
}

func (v *View) fetchPage(ctx context.Context, page int) ([]channel.Record, error) {
	raws, err := v.store.ListPage(ctx, page)
	if err != nil {
		return nil, err
	}
	return channel.ProjectAll(raws), nil
}

// Load fetches page zero, replaces the cache and returns to browsing page 1.
func (v *View) Load(ctx context.Context) error {
	gen := v.nextGeneration()
	rows, err := v.fetchPage(ctx, 0)
	if err != nil {
		return v.fail("load", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.WithField("operation", "load").Debug("discarding superseded result")
		return nil
	}
	v.cache.ReplaceAll(rows)
	v.mode = ModeBrowsing
	v.keyword = ""
	v.sortedBy = ""
	v.activePage = 1
	return nil
}

// GoToPage switches the visible page. While browsing, moving to the first
// unfetched page fetches it and splices it in before switching. A result that
// resolves after a newer Load or Search is dropped.
func (v *View) GoToPage(ctx context.Context, page int) error {
	v.mu.RLock()
	gen, mode := v.generation, v.mode
	v.mu.RUnlock()

	length := v.cache.Len()
	if page < 1 || page > TotalPages(length, v.cache.PageSize()) {
		return consoleerrors.NewValidationError("page", "page out of range").
			WithContext("page", page).
			WithContext("total_pages", TotalPages(length, v.cache.PageSize()))
	}

	var rows []channel.Record
	advance := mode == ModeBrowsing && page == BoundaryPage(length, v.cache.PageSize())
	if advance {
		var err error
		if rows, err = v.fetchPage(ctx, page-1); err != nil {
			return v.fail("advance", err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.WithField("page", page).Debug("discarding stale page change")
		return nil
	}
	if advance {
		v.cache.Splice(page-1, rows)
	}
	v.activePage = page
	return nil
}

// Search replaces the cache with the results for keyword. A blank keyword is
// a page-zero reload.
func (v *View) Search(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return v.Load(ctx)
	}
	if err := security.ValidateKeyword(keyword); err != nil {
		return v.fail("search", consoleerrors.NewValidationError("keyword", err.Error()))
	}

	gen := v.nextGeneration()
	raws, err := v.store.Search(ctx, keyword)
	if err != nil {
		return v.fail("search", err)
	}
	rows := channel.ProjectAll(raws)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.WithField("keyword", keyword).Debug("discarding superseded search")
		return nil
	}
	v.cache.ReplaceAll(rows)
	v.mode = ModeSearching
	v.keyword = keyword
	v.sortedBy = ""
	v.activePage = 1
	return nil
}

// Refresh re-fetches what is on screen: the active page while browsing, the
// current result set while searching.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.RLock()
	gen, mode, keyword, page := v.generation, v.mode, v.keyword, v.activePage
	v.mu.RUnlock()

	if mode == ModeSearching {
		return v.Search(ctx, keyword)
	}
	if page <= 1 {
		return v.Load(ctx)
	}
	rows, err := v.fetchPage(ctx, page-1)
	if err != nil {
		return v.fail("refresh", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.WithField("page", page).Debug("discarding stale refresh")
		return nil
	}
	v.cache.Splice(page-1, rows)
	return nil
}

// nextGeneration starts a new result set. Page changes and refreshes issued
// under an older generation are dropped when they resolve.
func (v *View) nextGeneration() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return v.generation
}

// Sort reorders the loaded set in place. It does not change mode.
func (v *View) Sort(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.cache.Sort(key); err != nil {
		return err
	}
	v.sortedBy = key
	return nil
}

// ShowDetail reports whether the balance columns are shown.
func (v *View) ShowDetail() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.showDetail
}

// SetShowDetail flips the detail columns and persists the choice.
func (v *View) SetShowDetail(show bool) error {
	v.mu.Lock()
	v.showDetail = show
	v.mu.Unlock()
	if v.detail == nil {
		return nil
	}
	if err := v.detail.SetShowDetail(show); err != nil {
		return v.fail("toggle_detail", consoleerrors.NewInternalError("view", "Failed to persist show_detail", err))
	}
	return nil
}

// ToggleDetail flips the detail columns and returns the new setting.
func (v *View) ToggleDetail() (bool, error) {
	show := !v.ShowDetail()
	return show, v.SetShowDetail(show)
}

// Target is a row resolved at the moment an action is invoked.
type Target struct {
	ID        int
	Name      string
	TestModel string
	Page      int
	Index     int
}

// Resolve captures the active page and turns a page-relative index into the
// row's id, so a later page change cannot redirect the action.
func (v *View) Resolve(pageRelativeIndex int) (Target, error) {
	page := v.ActivePage()
	return v.ResolveAt(page, pageRelativeIndex)
}

// ResolveAt resolves a row on an explicit page.
func (v *View) ResolveAt(page, pageRelativeIndex int) (Target, error) {
	id, err := v.cache.IDAt(page, pageRelativeIndex)
	if err != nil {
		return Target{}, err
	}
	rec, ok := v.cache.Get(id)
	if !ok {
		return Target{}, consoleerrors.NewNotFoundError("channel", id)
	}
	return Target{ID: id, Name: rec.Name, TestModel: rec.TestModel, Page: page, Index: pageRelativeIndex}, nil
}

// Row is one rendered line of the channel table.
type Row struct {
	Index        int                 `json:"index"`
	Record       channel.Record      `json:"record"`
	TypeLabel    channel.TypeLabel   `json:"type_label"`
	StatusLabel  channel.StatusLabel `json:"status_label"`
	ResponseTime string              `json:"response_time_text"`
	LatencyBand  channel.LatencyBand `json:"latency_band"`
	Balance      string              `json:"balance_text,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
}

// Page is the rendered state of the view.
type Page struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	PageSize   int    `json:"page_size"`
	Loaded     int    `json:"loaded"`
	Mode       Mode   `json:"mode"`
	Keyword    string `json:"keyword,omitempty"`
	SortedBy   string `json:"sorted_by,omitempty"`
	ShowDetail bool   `json:"show_detail"`
	Rows       []Row  `json:"rows"`
}

// Render builds the active page. Soft-deleted rows are left out.
func (v *View) Render() Page {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p := Page{
		Page:       v.activePage,
		Mode:       v.mode,
		Keyword:    v.keyword,
		SortedBy:   v.sortedBy,
		ShowDetail: v.showDetail,
	}

	p.PageSize = v.cache.PageSize()
	p.Loaded = v.cache.Len()
	p.TotalPages = TotalPages(p.Loaded, p.PageSize)

	slots := v.cache.PageSlots(p.Page)
	p.Rows = make([]Row, 0, len(slots))
	for _, s := range slots {
		rec := s.Record
		band := channel.BandForResponseTime(rec.ResponseTime)
		row := Row{
			Index:        s.Index,
			Record:       rec,
			TypeLabel:    channel.LabelForType(rec.Type),
			StatusLabel:  channel.LabelForStatus(rec.Status(), rec.AwakeTime),
			ResponseTime: channel.FormatResponseTime(rec.ResponseTime),
			LatencyBand:  band,
		}
		if p.ShowDetail {
			row.Balance = channel.FormatBalance(rec.Type, rec.Balance)
		}
		if v.tags != nil {
			row.Tags = v.tags.TagsFor(&rec)
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}
