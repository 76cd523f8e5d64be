package collection

import (
	"sort"
	"strconv"
	"strings"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"
)

type sortValue func(rec *channel.Record) string

// sortKeys lists the columns the view can be ordered by. Values are compared
// as numbers when every value in the cache parses as one.
var sortKeys = map[string]sortValue{
	"id":                   func(r *channel.Record) string { return strconv.Itoa(r.ID) },
	"name":                 func(r *channel.Record) string { return r.Name },
	"group":                func(r *channel.Record) string { return r.Group },
	"type":                 func(r *channel.Record) string { return strconv.Itoa(r.Type) },
	"status":               func(r *channel.Record) string { return strconv.Itoa(int(r.Status())) },
	"response_time":        func(r *channel.Record) string { return strconv.Itoa(r.ResponseTime) },
	"test_time":            func(r *channel.Record) string { return strconv.FormatInt(r.TestTime, 10) },
	"balance":              func(r *channel.Record) string { return strconv.FormatFloat(r.Balance, 'f', -1, 64) },
	"balance_updated_time": func(r *channel.Record) string { return strconv.FormatInt(r.BalanceUpdatedTime, 10) },
	"priority":             func(r *channel.Record) string { return strconv.FormatInt(r.Priority, 10) },
	"weight":               func(r *channel.Record) string { return strconv.Itoa(r.Weight) },
	"test_model":           func(r *channel.Record) string { return r.TestModel },
}

// SortKeys lists the accepted sort keys in alphabetical order.
func SortKeys() []string {
	keys := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type sortEntry struct {
	id   int
	text string
	num  float64
}

// Sort reorders every slot by key. When the first slot is unchanged by the
// ascending sort the result is reversed, so repeated calls on one key toggle
// between ascending and descending.
func (c *Cache) Sort(key string) error {
	extract, ok := sortKeys[key]
	if !ok {
		return consoleerrors.NewValidationError("key", "unknown sort key "+strconv.Quote(key)).
			WithContext("allowed", SortKeys())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.slots) == 0 {
		return nil
	}

	entries := make([]sortEntry, len(c.slots))
	numeric := true
	for i, id := range c.slots {
		text := extract(c.byID[id])
		entries[i] = sortEntry{id: id, text: text}
		if numeric {
			n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
			if err != nil {
				numeric = false
				continue
			}
			entries[i].num = n
		}
	}

	if numeric {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].num < entries[j].num })
	} else {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].text < entries[j].text })
	}

	if entries[0].id == c.slots[0] {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	slots := make([]int, len(entries))
	for i, e := range entries {
		slots[i] = e.id
	}
	c.slots = slots
	c.version++
	return nil
}
