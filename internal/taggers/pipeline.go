// Package taggers builds the row tagging pipeline from configuration.
package taggers

import (
	"fmt"
	"sync"
	"time"

	"channel-console/internal/channel"
	"channel-console/internal/config"
	"channel-console/internal/interfaces"
	"channel-console/internal/security"
	"channel-console/internal/taggers/builtin"
	"channel-console/internal/taggers/starlark"

	"github.com/sirupsen/logrus"
)

// Pipeline runs every enabled tagger against a row concurrently and collects
// the tags of those that matched, in configuration order.
type Pipeline struct {
	taggers []interfaces.Tagger
	timeout time.Duration
	logger  *logrus.Logger
}

// NewPipeline builds the taggers declared in cfg. Disabled entries are skipped.
func NewPipeline(cfg config.TaggingConfig, logger *logrus.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	timeout := config.GetTimeoutDuration(cfg.PipelineTimeout, 2*time.Second)

	p := &Pipeline{timeout: timeout, logger: logger}
	for _, tc := range cfg.Taggers {
		if !tc.Enabled {
			continue
		}
		if err := security.ValidateTag(tc.Tag); err != nil {
			return nil, fmt.Errorf("tagger %s: %w", tc.Name, err)
		}
		t, err := buildTagger(tc, timeout)
		if err != nil {
			return nil, err
		}
		p.taggers = append(p.taggers, t)
	}
	return p, nil
}

// NewPipelineWith wraps already built taggers.
func NewPipelineWith(timeout time.Duration, logger *logrus.Logger, taggers ...interfaces.Tagger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{taggers: taggers, timeout: timeout, logger: logger}
}

func buildTagger(tc config.TaggerConfig, timeout time.Duration) (interfaces.Tagger, error) {
	switch tc.Type {
	case "builtin":
		return builtin.New(tc.BuiltinType, tc.Name, tc.Tag, tc.Config)
	case "starlark":
		if path, _ := tc.Config["script_file"].(string); path != "" {
			return starlark.NewTaggerFromFile(tc.Name, tc.Tag, path, timeout)
		}
		script, _ := tc.Config["script"].(string)
		return starlark.NewTagger(tc.Name, tc.Tag, script, timeout)
	}
	return nil, fmt.Errorf("tagger %s: unknown type %q", tc.Name, tc.Type)
}

// Len is the number of enabled taggers.
func (p *Pipeline) Len() int { return len(p.taggers) }

// Process evaluates every tagger. Taggers still running when the pipeline
// timeout expires are reported with an error.
func (p *Pipeline) Process(rec *channel.Record) []interfaces.TaggerResult {
	results := make([]interfaces.TaggerResult, len(p.taggers))
	if len(p.taggers) == 0 {
		return results
	}

	row := rec.Clone()
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := make([]bool, len(p.taggers))

	for i, t := range p.taggers {
		wg.Add(1)
		go func(i int, t interfaces.Tagger) {
			defer wg.Done()
			start := time.Now()
			matched, err := t.ShouldTag(row)

			mu.Lock()
			defer mu.Unlock()
			results[i] = interfaces.TaggerResult{
				TaggerName: t.Name(),
				Tag:        t.Tag(),
				Matched:    matched && err == nil,
				Error:      err,
				Duration:   time.Since(start),
			}
			done[i] = true
		}(i, t)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(p.timeout):
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]interfaces.TaggerResult, len(results))
	for i, t := range p.taggers {
		if !done[i] {
			out[i] = interfaces.TaggerResult{
				TaggerName: t.Name(),
				Tag:        t.Tag(),
				Error:      fmt.Errorf("tagger timed out after %s", p.timeout),
				Duration:   p.timeout,
			}
			continue
		}
		out[i] = results[i]
	}
	return out
}

// TagsFor returns the distinct tags of matching taggers.
func (p *Pipeline) TagsFor(rec *channel.Record) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, r := range p.Process(rec) {
		if r.Error != nil {
			p.logger.WithError(r.Error).WithFields(logrus.Fields{
				"tagger":  r.TaggerName,
				"channel": rec.ID,
			}).Debug("Tagger failed")
			continue
		}
		if r.Matched && !seen[r.Tag] {
			seen[r.Tag] = true
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

var _ interfaces.TagSource = (*Pipeline)(nil)
