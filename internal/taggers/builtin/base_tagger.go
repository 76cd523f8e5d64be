// Package builtin holds the row taggers that need no script.
package builtin

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseTagger carries the name and tag shared by every builtin tagger.
type BaseTagger struct {
	name string
	tag  string
}

func (b BaseTagger) Name() string { return b.name }

func (b BaseTagger) Tag() string { return b.tag }

// ruleConfig reads loosely typed values decoded from YAML.
type ruleConfig map[string]interface{}

func (c ruleConfig) float(key string, def float64) (float64, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", key, n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%s: unsupported value type %T", key, v)
}

func (c ruleConfig) str(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// list accepts a list or a comma-separated string.
func (c ruleConfig) list(key string) []string {
	v, ok := c[key]
	if !ok || v == nil {
		return nil
	}
	var raw []string
	switch list := v.(type) {
	case []interface{}:
		for _, item := range list {
			raw = append(raw, fmt.Sprint(item))
		}
	case []string:
		raw = list
	default:
		raw = strings.Split(fmt.Sprint(v), ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
