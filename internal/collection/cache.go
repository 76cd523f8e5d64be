package collection

import (
	"sync"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"
)

// Mutator changes fields of one record. Returning an error discards the change.
type Mutator func(rec *channel.Record) error

// Cache is the client-held, ordered copy of channel rows.
//
// Slots hold ids; records live in byID so an id that appears in more than one
// slot (the store reordered between page fetches) is updated everywhere at once.
// Records are never modified in place: writers clone, mutate and swap the
// pointer, so snapshots handed to readers stay consistent.
type Cache struct {
	mu       sync.RWMutex
	pageSize int
	slots    []int
	byID     map[int]*channel.Record
	version  uint64
}

// NewCache returns an empty cache; pageSize defaults when not positive.
func NewCache(pageSize int) *Cache {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Cache{
		pageSize: pageSize,
		byID:     make(map[int]*channel.Record),
	}
}

func (c *Cache) PageSize() int { return c.pageSize }

// Len counts slots, including soft-deleted rows.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}

// Version increases with every successful write.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ReplaceAll discards the current contents.
func (c *Cache) ReplaceAll(rows []channel.Record) {
	slots := make([]int, 0, len(rows))
	byID := make(map[int]*channel.Record, len(rows))
	for i := range rows {
		rec := rows[i].Clone()
		slots = append(slots, rec.ID)
		byID[rec.ID] = rec
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = slots
	c.byID = byID
	c.version++
}

// Splice overwrites len(rows) slots starting at startIndex*pageSize, extending
// the sequence when needed. A start beyond the end appends.
func (c *Cache) Splice(startIndex int, rows []channel.Record) {
	if startIndex < 0 {
		startIndex = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := startIndex * c.pageSize
	if start > len(c.slots) {
		start = len(c.slots)
	}

	slots := make([]int, len(c.slots))
	copy(slots, c.slots)
	if need := start + len(rows); need > len(slots) {
		slots = append(slots, make([]int, need-len(slots))...)
	}

	byID := make(map[int]*channel.Record, len(c.byID)+len(rows))
	for id, rec := range c.byID {
		byID[id] = rec
	}
	for i := range rows {
		rec := rows[i].Clone()
		slots[start+i] = rec.ID
		byID[rec.ID] = rec
	}

	// drop records no slot refers to any more
	live := make(map[int]struct{}, len(slots))
	for _, id := range slots {
		live[id] = struct{}{}
	}
	for id := range byID {
		if _, ok := live[id]; !ok {
			delete(byID, id)
		}
	}

	c.slots = slots
	c.byID = byID
	c.version++
}

// AbsoluteIndex converts an active page and a page-relative row index.
func (c *Cache) AbsoluteIndex(activePage, pageRelativeIndex int) int {
	return (activePage-1)*c.pageSize + pageRelativeIndex
}

// IDAt resolves a page position to the id it holds right now.
func (c *Cache) IDAt(activePage, pageRelativeIndex int) (int, error) {
	if activePage < 1 || pageRelativeIndex < 0 || pageRelativeIndex >= c.pageSize {
		return 0, consoleerrors.NewValidationError("index", "row position out of range").
			WithContext("page", activePage).
			WithContext("index", pageRelativeIndex)
	}
	abs := c.AbsoluteIndex(activePage, pageRelativeIndex)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if abs >= len(c.slots) {
		return 0, consoleerrors.NewNotFoundError("row", abs)
	}
	return c.slots[abs], nil
}

// UpdateAt applies mutate to the record at the page position. It never reorders.
func (c *Cache) UpdateAt(activePage, pageRelativeIndex int, mutate Mutator) (channel.Record, error) {
	abs := c.AbsoluteIndex(activePage, pageRelativeIndex)

	c.mu.Lock()
	defer c.mu.Unlock()
	if abs < 0 || abs >= len(c.slots) {
		return channel.Record{}, consoleerrors.NewNotFoundError("row", abs)
	}
	return c.applyLocked(c.slots[abs], mutate)
}

// UpdateByID applies mutate to the record with id wherever it sits.
func (c *Cache) UpdateByID(id int, mutate Mutator) (channel.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(id, mutate)
}

func (c *Cache) applyLocked(id int, mutate Mutator) (channel.Record, error) {
	current, ok := c.byID[id]
	if !ok {
		return channel.Record{}, consoleerrors.NewNotFoundError("channel", id)
	}
	next := current.Clone()
	if err := mutate(next); err != nil {
		return *current.Clone(), err
	}
	next.ID = id
	c.byID[id] = next
	c.version++
	return *next.Clone(), nil
}

// Get returns a copy of the record with id.
func (c *Cache) Get(id int) (channel.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.byID[id]
	if !ok {
		return channel.Record{}, false
	}
	return *rec.Clone(), true
}

// Snapshot copies every slot in order.
func (c *Cache) Snapshot() []channel.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]channel.Record, 0, len(c.slots))
	for _, id := range c.slots {
		out = append(out, *c.byID[id].Clone())
	}
	return out
}

// Slot is one cached row with its page-relative index.
type Slot struct {
	Index  int
	Record channel.Record
}

// PageSlots copies the rows of page, skipping soft-deleted ones. Index is the
// row's position within the page, so it stays stable while rows are hidden.
func (c *Cache) PageSlots(page int) []Slot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := (page - 1) * c.pageSize
	if page < 1 || start >= len(c.slots) {
		return []Slot{}
	}
	end := start + c.pageSize
	if end > len(c.slots) {
		end = len(c.slots)
	}
	out := make([]Slot, 0, end-start)
	for abs := start; abs < end; abs++ {
		rec := c.byID[c.slots[abs]]
		if rec.Deleted() {
			continue
		}
		out = append(out, Slot{Index: abs - start, Record: *rec.Clone()})
	}
	return out
}

// TotalPages over-counts by one page when the cache ends on a page boundary so
// the next incremental fetch can always be reached. An empty cache has one page.
func TotalPages(length, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (length + pageSize - 1) / pageSize
	if length%pageSize == 0 {
		pages++
	}
	return pages
}

// BoundaryPage is the first page that has not been fetched yet.
func BoundaryPage(length, pageSize int) int {
	return (length+pageSize-1)/pageSize + 1
}
