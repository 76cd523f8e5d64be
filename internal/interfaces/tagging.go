package interfaces

import (
	"time"

	"channel-console/internal/channel"
)

// Tagger is implemented by builtin and Starlark row taggers.
type Tagger interface {
	Name() string
	Tag() string
	ShouldTag(rec *channel.Record) (bool, error)
}

// TaggerResult is one tagger's verdict for one row.
type TaggerResult struct {
	TaggerName string
	Tag        string
	Matched    bool
	Error      error
	Duration   time.Duration
}

// TagSource computes display tags for a row. The view calls it once per rendered row.
type TagSource interface {
	TagsFor(rec *channel.Record) []string
}
