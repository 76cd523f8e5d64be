package starlark

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"channel-console/internal/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() *channel.Record {
	return &channel.Record{
		ID:           3,
		Name:         "Azure-East",
		Group:        "default,vip",
		Type:         channel.TypeAzure,
		State:        channel.Active(channel.StatusEnabled),
		Models:       []string{"gpt-4o", "gpt-35-turbo"},
		TestModel:    "gpt-4o",
		ResponseTime: 1800,
		Priority:     5,
	}
}

func TestScriptReadsRowFields(t *testing.T) {
	scripts := map[string]bool{
		`def should_tag(channel):
    return channel.priority > 3 and "vip" in channel.groups`: true,
		`def should_tag(channel):
    return startswith(lower(channel.name), "azure")`: true,
		`def should_tag(channel):
    return len(channel.models) > 2`: false,
		`def should_tag(channel):
    return channel.tested and channel.response_time < 1000`: false,
		`def should_tag(channel):
    return channel.status_name == "Enabled" and channel.test_model in channel.models`: true,
	}

	for script, want := range scripts {
		tagger, err := NewTagger("rule", "tag", script, time.Second)
		require.NoError(t, err, script)

		got, err := tagger.ShouldTag(sampleRow())
		require.NoError(t, err, script)
		assert.Equal(t, want, got, script)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := NewTagger("broken", "x", "def should_tag(:", time.Second)
	assert.Error(t, err)

	_, err = NewTagger("missing", "x", "x = 1", time.Second)
	assert.ErrorContains(t, err, "should_tag function not found")

	_, err = NewTagger("notfunc", "x", "should_tag = True", time.Second)
	assert.ErrorContains(t, err, "should_tag is not a function")
}

func TestRuntimeErrors(t *testing.T) {
	tagger, err := NewTagger("wrong-type", "x", "def should_tag(channel):\n    return channel.name\n", time.Second)
	require.NoError(t, err)
	_, err = tagger.ShouldTag(sampleRow())
	assert.ErrorContains(t, err, "must return a boolean")

	tagger, err = NewTagger("missing-field", "x", "def should_tag(channel):\n    return channel.nope\n", time.Second)
	require.NoError(t, err)
	_, err = tagger.ShouldTag(sampleRow())
	assert.Error(t, err)
}

func TestScriptTimeout(t *testing.T) {
	script := `def should_tag(channel):
    n = 0
    for i in range(100000000):
        n += i
    return n > 0
`
	tagger, err := NewTagger("spin", "x", script, 20*time.Millisecond)
	require.NoError(t, err)

	_, err = tagger.ShouldTag(sampleRow())
	assert.ErrorContains(t, err, "timeout")
}


func TestNewTaggerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.star")
	require.NoError(t, os.WriteFile(path, []byte("def should_tag(channel):\n    return channel.id == 3\n"), 0644))

	tagger, err := NewTaggerFromFile("file", "three", path, time.Second)
	require.NoError(t, err)
	got, err := tagger.ShouldTag(sampleRow())
	require.NoError(t, err)
	assert.True(t, got)

	_, err = NewTaggerFromFile("nofile", "x", filepath.Join(t.TempDir(), "missing.star"), time.Second)
	assert.Error(t, err)
}
