// Package options edits the gateway's global key/value settings.
package options

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	consoleerrors "channel-console/internal/common/errors"
	jsonutils "channel-console/internal/common/json"
	"channel-console/internal/interfaces"
	"channel-console/internal/remote"

	"github.com/sirupsen/logrus"
)

// ratioKeys hold JSON objects mapping names to multipliers.
var ratioKeys = map[string]bool{
	"ModelRatio":      true,
	"GroupRatio":      true,
	"CompletionRatio": true,
}

var poolModes = map[string]bool{"random": true, "polling": true}

// IsToggle reports whether key holds a "true"/"false" switch.
func IsToggle(key string) bool {
	return strings.HasSuffix(key, "Enabled")
}

// Manager caches the last listed values so unchanged settings are not resent.
type Manager struct {
	store    remote.OptionStore
	notifier interfaces.Notifier
	logger   *logrus.Logger

	mu     sync.RWMutex
	values map[string]string
	loaded bool
}

// NewManager reports outcomes through notifier.
func NewManager(store remote.OptionStore, notifier interfaces.Notifier, logger *logrus.Logger) *Manager {
	if notifier == nil {
		notifier = interfaces.NotifierFunc(func(interfaces.NoticeLevel, string) {})
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		store:    store,
		notifier: notifier,
		logger:   logger,
		values:   make(map[string]string),
	}
}

func (m *Manager) fail(err error) error {
	m.notifier.Notify(interfaces.NoticeError, consoleerrors.UserMessage(err))
	return err
}

// List fetches every option, sorted by key.
func (m *Manager) List(ctx context.Context) ([]remote.Option, error) {
	opts, err := m.store.ListOptions(ctx)
	if err != nil {
		return nil, m.fail(err)
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })

	values := make(map[string]string, len(opts))
	for _, o := range opts {
		values[o.Key] = o.Value
	}
	m.mu.Lock()
	m.values = values
	m.loaded = true
	m.mu.Unlock()
	return opts, nil
}

// Display formats a value for editing: ratio tables are indented and an
// empty object shows as blank.
func Display(opt remote.Option) string {
	if opt.Value == "{}" {
		return ""
	}
	if ratioKeys[opt.Key] {
		if pretty, err := jsonutils.Indent([]byte(opt.Value)); err == nil {
			return pretty
		}
	}
	return opt.Value
}

// Validate checks value against the rules for key and returns the form to send.
func Validate(key, value string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", consoleerrors.NewValidationError("key", "option key is required")
	}

	switch {
	case IsToggle(key):
		v := strings.ToLower(strings.TrimSpace(value))
		if v != "true" && v != "false" {
			return "", consoleerrors.NewValidationError(key, key+" must be true or false")
		}
		return v, nil
	case ratioKeys[key]:
		kind, err := jsonutils.GetJSONType([]byte(value))
		if err != nil || kind != "object" {
			return "", consoleerrors.NewValidationError(key, key+" is not a valid JSON object")
		}
		return jsonutils.Compact([]byte(value))
	case key == "PoolMode":
		if !poolModes[value] {
			return "", consoleerrors.NewValidationError(key, "PoolMode must be random or polling")
		}
	}
	return value, nil
}

func (m *Manager) current(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if !loaded {
		if _, err := m.List(ctx); err != nil {
			return "", false, err
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func same(key, a, b string) bool {
	if ratioKeys[key] {
		ca, errA := jsonutils.Compact([]byte(a))
		cb, errB := jsonutils.Compact([]byte(b))
		return errA == nil && errB == nil && ca == cb
	}
	return a == b
}

// Set validates and submits one option. It returns false without calling the
// store when the value is unchanged.
func (m *Manager) Set(ctx context.Context, key, value string) (bool, error) {
	normalized, err := Validate(key, value)
	if err != nil {
		m.notifier.Notify(interfaces.NoticeWarning, consoleerrors.UserMessage(err))
		return false, err
	}
	key = strings.TrimSpace(key)

	old, exists, err := m.current(ctx, key)
	if err != nil {
		return false, err
	}
	if exists && same(key, old, normalized) {
		m.logger.WithField("key", key).Debug("Option unchanged, not submitted")
		return false, nil
	}

	if err := m.store.UpdateOption(ctx, remote.Option{Key: key, Value: normalized}); err != nil {
		return false, m.fail(err)
	}

	m.mu.Lock()
	m.values[key] = normalized
	m.mu.Unlock()

	m.logger.WithField("key", key).Info("Option updated")
	m.notifier.Notify(interfaces.NoticeSuccess, fmt.Sprintf("Option %s updated", key))
	return true, nil
}

// Toggle flips a "...Enabled" switch and returns the new value.
func (m *Manager) Toggle(ctx context.Context, key string) (bool, error) {
	if !IsToggle(key) {
		err := consoleerrors.NewValidationError(key, key+" is not a switch")
		m.notifier.Notify(interfaces.NoticeWarning, err.Message)
		return false, err
	}
	old, _, err := m.current(ctx, key)
	if err != nil {
		return false, err
	}
	next := old != "true"
	if _, err := m.Set(ctx, key, fmt.Sprint(next)); err != nil {
		return false, err
	}
	return next, nil
}

// UpdateAbilities asks the gateway to rebuild its channel/model ability table.
func (m *Manager) UpdateAbilities(ctx context.Context) error {
	if err := m.store.UpdateAbilities(ctx); err != nil {
		return m.fail(err)
	}
	m.notifier.Notify(interfaces.NoticeSuccess, "Channel models updated")
	return nil
}
