package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/config"
	logger "channel-console/internal/logger"
	"channel-console/internal/metrics"
	"channel-console/internal/remote/remotetest"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, store *remotetest.Store, out io.Writer) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	path := filepath.Join(t.TempDir(), "config.yaml")
	log := logger.NewConsoleLogger(logger.LogConfig{Level: "error"}, io.Discard)

	a, err := newApp(cfg, path, store, log, metrics.NewMetrics(), out)
	require.NoError(t, err)
	return a
}

// useTestStore points every command at store for the duration of the test.
func useTestStore(t *testing.T, store *remotetest.Store) {
	t.Helper()
	orig := openApp
	openApp = func(cmd *cobra.Command) (*App, error) {
		return newTestApp(t, store, cmd.ErrOrStderr()), nil
	}
	t.Cleanup(func() { openApp = orig })
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	cmd := buildRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"serve", "list", "search", "sort", "delete", "enable", "disable",
		"balance", "priority", "weight", "test", "test-all", "test-disabled", "purge-disabled",
		"detail", "options", "actions"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestListSecondPage(t *testing.T) {
	useTestStore(t, remotetest.NewStore(10, remotetest.Rows(15)...))

	out, _, err := execute(t, "list", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "channel-11")
	assert.NotContains(t, out, "channel-1 ")
	assert.Contains(t, out, "page 2/2, 15 loaded")
}

func TestPriorityCommand(t *testing.T) {
	store := remotetest.NewStore(10, remotetest.Rows(3)...)
	useTestStore(t, store)

	out, stderr, err := execute(t, "priority", "1", "9")
	require.NoError(t, err)
	assert.Contains(t, stderr, "OK  Operation completed successfully")

	var line string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "channel-2") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, strings.Fields(line), "9")
	assert.Equal(t, 1, store.CallCount("update"))

	_, _, err = execute(t, "priority", "x", "9")
	assert.Error(t, err)
}

func TestRejectedCommandSurfacesMessage(t *testing.T) {
	store := remotetest.NewStore(10, remotetest.Rows(3)...)
	store.Reject["list"] = "access token invalid"
	useTestStore(t, store)

	_, stderr, err := execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, stderr, "ERR access token invalid")
}

func TestPurgeDisabledCommand(t *testing.T) {
	rows := remotetest.Rows(3)
	rows[0].Status = 2
	useTestStore(t, remotetest.NewStore(10, rows...))

	out, _, err := execute(t, "purge-disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1 disabled channels")
}

func TestDetailCommand(t *testing.T) {
	useTestStore(t, remotetest.NewStore(10))

	out, _, err := execute(t, "detail", "on")
	require.NoError(t, err)
	assert.Equal(t, "detail: on\n", out)

	_, _, err = execute(t, "detail", "maybe")
	assert.Error(t, err)
}

func TestOptionsList(t *testing.T) {
	store := remotetest.NewStore(10)
	store.SetOption("ModelRatio", `{"gpt-4":15}`)
	store.SetOption("PoolMode", "random")
	useTestStore(t, store)

	out, _, err := execute(t, "options", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PoolMode")
	assert.Contains(t, out, "ModelRatio:\n{\n  \"gpt-4\": 15\n}")
}

func TestServerStatus(t *testing.T) {
	a := newTestApp(t, remotetest.NewStore(10, remotetest.Rows(2)...), nil)
	defer a.cleanup()

	status := a.GetServerStatus()
	assert.Equal(t, false, status["running"])
	assert.Equal(t, config.Default.Server.Port, status["port"])
	assert.Equal(t, 1, status["taggers"])
}

func TestNewAppRejectsInvalidTagger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tagging.Taggers = append(cfg.Tagging.Taggers, config.TaggerConfig{
		Name:        "bad",
		Type:        "builtin",
		BuiltinType: "status",
		Tag:         "two words",
		Enabled:     true,
	})
	log := logger.NewConsoleLogger(logger.LogConfig{Level: "error"}, io.Discard)

	_, err := newApp(cfg, filepath.Join(t.TempDir(), "config.yaml"), remotetest.NewStore(10), log, metrics.NewMetrics(), nil)
	require.Error(t, err)
	assert.True(t, consoleerrors.HasErrorType(err, consoleerrors.ErrorTypeConfig))
}
