package starlark

import (
	"fmt"
	"os"
	"time"

	"channel-console/internal/channel"
)

// Tagger tags rows for which the script's should_tag returns True.
type Tagger struct {
	name     string
	tag      string
	executor *Executor
}

// NewTagger compiles script; a broken script is reported here rather than on
// every render.
func NewTagger(name, tag, script string, timeout time.Duration) (*Tagger, error) {
	executor, err := NewExecutor(name, script, timeout)
	if err != nil {
		return nil, fmt.Errorf("starlark tagger %s: %w", name, err)
	}
	return &Tagger{
		name:     name,
		tag:      tag,
		executor: executor,
	}, nil
}

// NewTaggerFromFile reads the script from path.
func NewTaggerFromFile(name, tag, path string, timeout time.Duration) (*Tagger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("starlark tagger %s: failed to read script: %w", name, err)
	}
	return NewTagger(name, tag, string(data), timeout)
}

// Name identifies the tagger in logs and results.
func (t *Tagger) Name() string {
	return t.name
}

// Tag is the label added to matching rows.
func (t *Tagger) Tag() string {
	return t.tag
}

// ShouldTag runs the script against rec.
func (t *Tagger) ShouldTag(rec *channel.Record) (bool, error) {
	shouldTag, err := t.executor.ExecuteScript(rec)
	if err != nil {
		return false, fmt.Errorf("starlark tagger %s failed: %w", t.name, err)
	}
	return shouldTag, nil
}
