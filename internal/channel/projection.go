package channel

import "strings"

// Project turns a raw store record into a Record. It is applied identically to
// page fetches and search results.
func Project(raw Raw) Record {
	rec := Record{
		ID:                 raw.ID,
		Name:               raw.Name,
		Group:              raw.Group,
		Type:               raw.Type,
		State:              Active(Status(raw.Status)),
		AwakeTime:          raw.AwakeTime,
		ResponseTime:       raw.ResponseTime,
		TestTime:           raw.TestTime,
		Balance:            raw.Balance,
		BalanceUpdatedTime: raw.BalanceUpdatedTime,
		BaseURL:            raw.BaseURL,
		CreatedTime:        raw.CreatedTime,
		Models:             SplitModels(raw.Models),
	}
	if raw.Priority != nil {
		rec.Priority = *raw.Priority
	}
	if raw.Weight != nil {
		rec.Weight = int(*raw.Weight)
	}
	if len(rec.Models) > 0 {
		rec.TestModel = rec.Models[0]
	}
	return rec
}

// ProjectAll projects a page of raw records, preserving order.
func ProjectAll(raws []Raw) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Project(raw))
	}
	return out
}

// SplitModels parses the comma-joined models field. An empty string yields an
// empty, non-nil list.
func SplitModels(models string) []string {
	out := []string{}
	if models == "" {
		return out
	}
	for _, m := range strings.Split(models, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
