package channel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_EmptyModels(t *testing.T) {
	rec := Project(Raw{ID: 1, Models: ""})

	assert.NotNil(t, rec.Models)
	assert.Empty(t, rec.Models)
	assert.Equal(t, "", rec.TestModel)
}

func TestProject_TestModelDefaultsToFirst(t *testing.T) {
	tests := []struct {
		models string
		want   []string
	}{
		{"gpt-4", []string{"gpt-4"}},
		{"gpt-4,gpt-3.5-turbo", []string{"gpt-4", "gpt-3.5-turbo"}},
		{"claude-3, claude-2 ,", []string{"claude-3", "claude-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.models, func(t *testing.T) {
			rec := Project(Raw{ID: 7, Models: tt.models})
			assert.Equal(t, tt.want, rec.Models)
			assert.Equal(t, tt.want[0], rec.TestModel)
			assert.True(t, rec.HasModel(rec.TestModel))
		})
	}
}

func TestProject_FromStoreJSON(t *testing.T) {
	payload := `{"id":3,"type":1,"status":4,"name":"main","awake_time":1700000000,
		"priority":null,"weight":5,"response_time":1230,"balance":12.5,
		"models":"gpt-4o,gpt-4o-mini","group":"default,vip"}`

	var raw Raw
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	rec := Project(raw)

	assert.Equal(t, 3, rec.ID)
	assert.Equal(t, StatusDormant, rec.Status())
	assert.False(t, rec.Deleted())
	assert.Equal(t, int64(0), rec.Priority)
	assert.Equal(t, 5, rec.Weight)
	assert.Equal(t, "gpt-4o", rec.TestModel)
	assert.True(t, rec.Tested())
	assert.Equal(t, []string{"default", "vip"}, Groups(rec.Group))
}

func TestRowState_DeleteAndStatusCommute(t *testing.T) {
	s := Active(StatusEnabled)

	deleted := s.Delete()
	assert.True(t, deleted.IsDeleted())

	_, ok := deleted.WithStatus(StatusManuallyDisabled)
	assert.False(t, ok, "status update must be rejected after delete")

	next, ok := s.WithStatus(StatusManuallyDisabled)
	require.True(t, ok)
	assert.True(t, next.Delete().IsDeleted())
	assert.Equal(t, StatusManuallyDisabled, next.Delete().Status())
}

func TestRecord_CloneDoesNotShareModels(t *testing.T) {
	rec := Project(Raw{ID: 1, Models: "a,b"})
	c := rec.Clone()
	c.Models[0] = "z"
	assert.Equal(t, "a", rec.Models[0])
}

func TestRecord_AccessorsOnReturnedValue(t *testing.T) {
	assert.Equal(t, StatusEnabled, Project(Raw{ID: 1, Status: int(StatusEnabled)}).Status())
	assert.False(t, Project(Raw{ID: 1}).Deleted())
	assert.True(t, Project(Raw{ID: 1, Models: "a,b"}).HasModel("b"))
	assert.False(t, Project(Raw{ID: 1}).Tested())

	rec := Project(Raw{ID: 2, Status: int(StatusManuallyDisabled)})
	rec.State = rec.State.Delete()
	deleted := func() Record { return rec }
	assert.True(t, deleted().Deleted())
	assert.Equal(t, StatusManuallyDisabled, deleted().Status())
}
