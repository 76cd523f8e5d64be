package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"channel-console/internal/channel"
	"channel-console/internal/interfaces"
)

const (
	TypeSlowResponse = "slow-response"
	TypeLowBalance   = "low-balance"
	TypeStatus       = "status"
	TypeGroup        = "group"
	TypeModel        = "model"
)

// New builds the builtin tagger named by builtinType from its rule config.
func New(builtinType, name, tag string, config map[string]interface{}) (interfaces.Tagger, error) {
	cfg := ruleConfig(config)
	base := BaseTagger{name: name, tag: tag}

	switch builtinType {
	case TypeSlowResponse:
		ms, err := cfg.float("threshold_ms", 5000)
		if err != nil {
			return nil, err
		}
		return &SlowResponseTagger{BaseTagger: base, ThresholdMs: int(ms)}, nil
	case TypeLowBalance:
		threshold, err := cfg.float("threshold", 1)
		if err != nil {
			return nil, err
		}
		return &LowBalanceTagger{BaseTagger: base, Threshold: threshold}, nil
	case TypeStatus:
		values := cfg.list("statuses")
		if len(values) == 0 {
			return nil, fmt.Errorf("status tagger %s: statuses is required", name)
		}
		statuses := make(map[channel.Status]bool, len(values))
		for _, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("status tagger %s: %q is not a status code", name, v)
			}
			statuses[channel.Status(n)] = true
		}
		return &StatusTagger{BaseTagger: base, Statuses: statuses}, nil
	case TypeGroup:
		group := cfg.str("group")
		if group == "" {
			return nil, fmt.Errorf("group tagger %s: group is required", name)
		}
		return &GroupTagger{BaseTagger: base, Group: group}, nil
	case TypeModel:
		model := cfg.str("model")
		if model == "" {
			return nil, fmt.Errorf("model tagger %s: model is required", name)
		}
		return &ModelTagger{BaseTagger: base, Pattern: model}, nil
	}
	return nil, fmt.Errorf("unknown builtin tagger type %q", builtinType)
}

// SlowResponseTagger matches tested rows slower than ThresholdMs.
type SlowResponseTagger struct {
	BaseTagger
	ThresholdMs int
}

func (t *SlowResponseTagger) ShouldTag(rec *channel.Record) (bool, error) {
	return rec.Tested() && rec.ResponseTime > t.ThresholdMs, nil
}

// LowBalanceTagger matches rows whose last known balance is below Threshold.
// Rows whose type has no balance, or that were never refreshed, never match.
type LowBalanceTagger struct {
	BaseTagger
	Threshold float64
}

func (t *LowBalanceTagger) ShouldTag(rec *channel.Record) (bool, error) {
	if !channel.SupportsBalance(rec.Type) || rec.BalanceUpdatedTime == 0 {
		return false, nil
	}
	return rec.Balance < t.Threshold, nil
}

// StatusTagger matches rows in any of the configured statuses.
type StatusTagger struct {
	BaseTagger
	Statuses map[channel.Status]bool
}

func (t *StatusTagger) ShouldTag(rec *channel.Record) (bool, error) {
	return t.Statuses[rec.Status()], nil
}

// GroupTagger matches rows that belong to a configured group.
type GroupTagger struct {
	BaseTagger
	Group string
}

func (t *GroupTagger) ShouldTag(rec *channel.Record) (bool, error) {
	for _, g := range channel.Groups(rec.Group) {
		if g == t.Group {
			return true, nil
		}
	}
	return false, nil
}

// ModelTagger matches rows serving Pattern. A trailing "*" matches by prefix.
type ModelTagger struct {
	BaseTagger
	Pattern string
}

func (t *ModelTagger) ShouldTag(rec *channel.Record) (bool, error) {
	prefix, wildcard := strings.CutSuffix(t.Pattern, "*")
	for _, m := range rec.Models {
		if wildcard && strings.HasPrefix(m, prefix) {
			return true, nil
		}
		if !wildcard && m == t.Pattern {
			return true, nil
		}
	}
	return false, nil
}
