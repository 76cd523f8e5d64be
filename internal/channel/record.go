package channel

import (
	"encoding/json"
)

// Status is the gateway lifecycle state of a channel.
type Status int

const (
	StatusUnknown           Status = 0
	StatusEnabled           Status = 1
	StatusManuallyDisabled  Status = 2
	StatusAutoDisabled      Status = 3
	StatusDormant           Status = 4
	StatusPendingActivation Status = 5
)

// Disabled covers both manual and automatic disabling.
func (s Status) Disabled() bool {
	return s == StatusManuallyDisabled || s == StatusAutoDisabled
}

// Raw is a channel as the store sends it. models is comma-joined on the wire.
type Raw struct {
	ID                 int     `json:"id"`
	Type               int     `json:"type"`
	Status             int     `json:"status"`
	Name               string  `json:"name"`
	AwakeTime          int64   `json:"awake_time"`
	Priority           *int64  `json:"priority"`
	Weight             *uint   `json:"weight"`
	CreatedTime        int64   `json:"created_time"`
	TestTime           int64   `json:"test_time"`
	ResponseTime       int     `json:"response_time"` // ms
	BaseURL            string  `json:"base_url"`
	Balance            float64 `json:"balance"`
	BalanceUpdatedTime int64   `json:"balance_updated_time"`
	Models             string  `json:"models"`
	Group              string  `json:"group"`
}

// RowState is either Active(status) or Deleted. Deleted is terminal.
type RowState struct {
	status  Status
	deleted bool
}

// Active is a live row with status.
func Active(status Status) RowState {
	return RowState{status: status}
}

// Deleted keeps the last known status for display in history.
func Deleted(last Status) RowState {
	return RowState{status: last, deleted: true}
}

// Status is the current status, or the last one before deletion.
func (s RowState) Status() Status { return s.status }

// IsDeleted reports whether the row was deleted.
func (s RowState) IsDeleted() bool { return s.deleted }

// WithStatus transitions an active row to status. It reports false for deleted rows.
func (s RowState) WithStatus(status Status) (RowState, bool) {
	if s.deleted {
		return s, false
	}
	return Active(status), true
}

// Delete is idempotent.
func (s RowState) Delete() RowState {
	return Deleted(s.status)
}

func (s RowState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status  Status `json:"status"`
		Deleted bool   `json:"deleted"`
	}{s.status, s.deleted})
}

func (s *RowState) UnmarshalJSON(data []byte) error {
	var aux struct {
		Status  Status `json:"status"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.status, s.deleted = aux.Status, aux.Deleted
	return nil
}

// Record is the display-ready channel held by the collection cache.
type Record struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	Group              string   `json:"group"`
	Type               int      `json:"type"`
	Priority           int64    `json:"priority"`
	Weight             int      `json:"weight"`
	State              RowState `json:"state"`
	AwakeTime          int64    `json:"awake_time"`
	Models             []string `json:"models"`
	TestModel          string   `json:"test_model"`
	ResponseTime       int      `json:"response_time"`
	TestTime           int64    `json:"test_time"`
	Balance            float64  `json:"balance"`
	BalanceUpdatedTime int64    `json:"balance_updated_time"`
	BaseURL            string   `json:"base_url,omitempty"`
	CreatedTime        int64    `json:"created_time"`
}

// Status is the lifecycle status, or the last one known before deletion.
func (r Record) Status() Status { return r.State.Status() }

// Deleted reports whether the row was deleted in this session.
func (r Record) Deleted() bool { return r.State.IsDeleted() }

// Tested distinguishes "never tested" from a measured latency.
func (r Record) Tested() bool { return r.ResponseTime != 0 }

// HasModel reports whether model is in the capability set.
func (r Record) HasModel(model string) bool {
	for _, m := range r.Models {
		if m == model {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; the models slice is not shared.
func (r *Record) Clone() *Record {
	c := *r
	if r.Models != nil {
		c.Models = append([]string(nil), r.Models...)
	}
	return &c
}
