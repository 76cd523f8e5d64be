package collection

import (
	"testing"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(ids ...int) []channel.Record {
	out := make([]channel.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, channel.Record{
			ID:    id,
			Name:  "channel",
			State: channel.Active(channel.StatusEnabled),
		})
	}
	return out
}

func idsOf(c *Cache) []int {
	var ids []int
	for _, rec := range c.Snapshot() {
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		length, pageSize, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 2},
		{20, 10, 3},
		{25, 10, 3},
		{30, 10, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.length, tt.pageSize), "length=%d", tt.length)
	}
}

func TestBoundaryPage(t *testing.T) {
	assert.Equal(t, 1, BoundaryPage(0, 10))
	assert.Equal(t, 3, BoundaryPage(20, 10))
	assert.Equal(t, 4, BoundaryPage(25, 10))
}

func TestSpliceExtendsAndOverwrites(t *testing.T) {
	c := NewCache(2)
	c.ReplaceAll(records(1, 2))

	c.Splice(1, records(3, 4))
	assert.Equal(t, []int{1, 2, 3, 4}, idsOf(c))

	// re-fetch of page 1 with different contents
	c.Splice(0, records(5, 6))
	assert.Equal(t, []int{5, 6, 3, 4}, idsOf(c))
	_, ok := c.Get(1)
	assert.False(t, ok, "unreferenced record should be dropped")

	// short page overwrites only its prefix
	c.Splice(1, records(7))
	assert.Equal(t, []int{5, 6, 7, 4}, idsOf(c))

	// start past the end appends
	c.Splice(9, records(8))
	assert.Equal(t, []int{5, 6, 7, 4, 8}, idsOf(c))
}

func TestReplaceAllIsolatesInput(t *testing.T) {
	rows := records(1)
	rows[0].Models = []string{"a"}
	c := NewCache(10)
	c.ReplaceAll(rows)

	rows[0].Models[0] = "changed"
	rec, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, rec.Models)
}

func TestUpdateAtChangesOnlyTargetField(t *testing.T) {
	c := NewCache(5)
	c.ReplaceAll(records(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	before := c.Snapshot()

	// page 2, index 2 is absolute index 7
	rec, err := c.UpdateAt(2, 2, func(r *channel.Record) error {
		r.Priority = 5
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, rec.ID)

	after := c.Snapshot()
	require.Len(t, after, len(before))
	for i := range after {
		if i == 7 {
			assert.Equal(t, int64(5), after[i].Priority)
			after[i].Priority = before[i].Priority
		}
		assert.Equal(t, before[i], after[i])
	}
}

func TestUpdateByIDDiscardsOnError(t *testing.T) {
	c := NewCache(10)
	c.ReplaceAll(records(1))
	v := c.Version()

	_, err := c.UpdateByID(1, func(r *channel.Record) error {
		r.Name = "half-written"
		return consoleerrors.NewConflictError("nope")
	})
	require.Error(t, err)

	rec, _ := c.Get(1)
	assert.Equal(t, "channel", rec.Name)
	assert.Equal(t, v, c.Version())

	_, err = c.UpdateByID(42, func(*channel.Record) error { return nil })
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeNotFound))
}

func TestIDAt(t *testing.T) {
	c := NewCache(2)
	c.ReplaceAll(records(10, 20, 30))

	id, err := c.IDAt(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, id)

	_, err = c.IDAt(2, 1)
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeNotFound))

	_, err = c.IDAt(1, 2)
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeValidation))
}

func TestDeleteKeepsLengthAndHidesRow(t *testing.T) {
	c := NewCache(10)
	c.ReplaceAll(records(1, 2, 3))

	_, err := c.UpdateByID(2, func(r *channel.Record) error {
		r.State = r.State.Delete()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	slots := c.PageSlots(1)
	require.Len(t, slots, 2)
	assert.Equal(t, 0, slots[0].Index)
	assert.Equal(t, 2, slots[1].Index)
	assert.Equal(t, 3, slots[1].Record.ID)
}

func TestSortTogglesDirection(t *testing.T) {
	c := NewCache(10)
	c.ReplaceAll(records(3, 1, 2))

	require.NoError(t, c.Sort("id"))
	assert.Equal(t, []int{1, 2, 3}, idsOf(c))

	require.NoError(t, c.Sort("id"))
	assert.Equal(t, []int{3, 2, 1}, idsOf(c))
}

func TestSortNumericVersusLexicographic(t *testing.T) {
	c := NewCache(10)
	rows := records(1, 2, 3)
	rows[0].Priority = 10
	rows[1].Priority = 9
	rows[2].Priority = 100
	c.ReplaceAll(rows)

	require.NoError(t, c.Sort("priority"))
	assert.Equal(t, []int{2, 1, 3}, idsOf(c))

	rows = records(1, 2, 3)
	rows[0].Name = "9"
	rows[1].Name = "10"
	rows[2].Name = "b"
	c.ReplaceAll(rows)

	require.NoError(t, c.Sort("name"))
	assert.Equal(t, []int{2, 1, 3}, idsOf(c), "mixed values compare as text")
}

func TestSortUnknownKey(t *testing.T) {
	c := NewCache(10)
	c.ReplaceAll(records(2, 1))

	err := c.Sort("colour")
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeValidation))
	assert.Equal(t, []int{2, 1}, idsOf(c))
}

func TestSortEmptyCache(t *testing.T) {
	c := NewCache(10)
	assert.NoError(t, c.Sort("name"))
	assert.Equal(t, 0, c.Len())
}
