// Package starlark runs operator-supplied should_tag(channel) scripts.
package starlark

import (
	"fmt"
	"strings"
	"time"

	"channel-console/internal/channel"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// Executor compiles a script once and evaluates should_tag per row.
type Executor struct {
	name    string
	timeout time.Duration
	program *starlark.Program
	globals starlark.StringDict
}

var fileOptions = &syntax.FileOptions{}

// NewExecutor compiles script and runs its top level once. The script must
// define should_tag(channel) returning a bool.
func NewExecutor(name, script string, timeout time.Duration) (*Executor, error) {
	predeclared := predeclaredNames()
	_, program, err := starlark.SourceProgramOptions(fileOptions, name+".star", script, predeclared.Has)
	if err != nil {
		return nil, fmt.Errorf("starlark compile error: %v", err)
	}

	thread := &starlark.Thread{Name: name}
	globals, err := program.Init(thread, predeclared)
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %v", err)
	}
	fn, ok := globals["should_tag"]
	if !ok {
		return nil, fmt.Errorf("should_tag function not found in script")
	}
	if _, ok := fn.(*starlark.Function); !ok {
		return nil, fmt.Errorf("should_tag is not a function")
	}
	globals.Freeze()

	return &Executor{
		name:    name,
		timeout: timeout,
		program: program,
		globals: globals,
	}, nil
}

// ExecuteScript calls should_tag with a read-only view of rec.
func (e *Executor) ExecuteScript(rec *channel.Record) (result bool, err error) {
	thread := &starlark.Thread{Name: e.name}
	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() { thread.Cancel("starlark script execution timeout") })
		defer timer.Stop()
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = false, fmt.Errorf("starlark script panic: %v", r)
		}
	}()

	value, err := starlark.Call(thread, e.globals["should_tag"], starlark.Tuple{channelObject(rec)}, nil)
	if err != nil {
		return false, fmt.Errorf("error calling should_tag: %v", err)
	}
	b, ok := value.(starlark.Bool)
	if !ok {
		return false, fmt.Errorf("should_tag must return a boolean, got %s", value.Type())
	}
	return bool(b), nil
}

func predeclaredNames() starlark.StringDict {
	return starlark.StringDict{
		"len":        starlark.NewBuiltin("len", starlarkLen),
		"str":        starlark.NewBuiltin("str", starlarkStr),
		"lower":      starlark.NewBuiltin("lower", starlarkLower),
		"upper":      starlark.NewBuiltin("upper", starlarkUpper),
		"contains":   starlark.NewBuiltin("contains", starlarkContains),
		"startswith": starlark.NewBuiltin("startswith", starlarkStartswith),
		"endswith":   starlark.NewBuiltin("endswith", starlarkEndswith),
		"struct":     starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

func stringList(items []string) *starlark.List {
	values := make([]starlark.Value, 0, len(items))
	for _, s := range items {
		values = append(values, starlark.String(s))
	}
	l := starlark.NewList(values)
	l.Freeze()
	return l
}

// channelObject exposes the row fields scripts may read.
func channelObject(rec *channel.Record) *starlarkstruct.Struct {
	label := channel.LabelForType(rec.Type)
	status := channel.LabelForStatus(rec.Status(), rec.AwakeTime)
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"id":                   starlark.MakeInt(rec.ID),
		"name":                 starlark.String(rec.Name),
		"group":                starlark.String(rec.Group),
		"groups":               stringList(channel.Groups(rec.Group)),
		"type":                 starlark.MakeInt(rec.Type),
		"type_name":            starlark.String(label.Text),
		"status":               starlark.MakeInt(int(rec.Status())),
		"status_name":          starlark.String(status.Text),
		"priority":             starlark.MakeInt64(rec.Priority),
		"weight":               starlark.MakeInt(rec.Weight),
		"models":               stringList(rec.Models),
		"test_model":           starlark.String(rec.TestModel),
		"response_time":        starlark.MakeInt(rec.ResponseTime),
		"tested":               starlark.Bool(rec.Tested()),
		"test_time":            starlark.MakeInt64(rec.TestTime),
		"balance":              starlark.Float(rec.Balance),
		"balance_updated_time": starlark.MakeInt64(rec.BalanceUpdatedTime),
		"base_url":             starlark.String(rec.BaseURL),
	})
}

func starlarkLen(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackArgs("len", args, kwargs, "x", &x); err != nil {
		return nil, err
	}

	switch v := x.(type) {
	case starlark.String:
		return starlark.MakeInt(len(string(v))), nil
	case *starlark.List:
		return starlark.MakeInt(v.Len()), nil
	case *starlark.Dict:
		return starlark.MakeInt(v.Len()), nil
	default:
		return nil, fmt.Errorf("len() not supported for type %T", x)
	}
}

func starlarkStr(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackArgs("str", args, kwargs, "x", &x); err != nil {
		return nil, err
	}
	return starlark.String(x.String()), nil
}

func starlarkLower(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s starlark.String
	if err := starlark.UnpackArgs("lower", args, kwargs, "s", &s); err != nil {
		return nil, err
	}
	return starlark.String(strings.ToLower(string(s))), nil
}

func starlarkUpper(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s starlark.String
	if err := starlark.UnpackArgs("upper", args, kwargs, "s", &s); err != nil {
		return nil, err
	}
	return starlark.String(strings.ToUpper(string(s))), nil
}

func starlarkContains(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s, substr starlark.String
	if err := starlark.UnpackArgs("contains", args, kwargs, "s", &s, "substr", &substr); err != nil {
		return nil, err
	}
	result := strings.Contains(string(s), string(substr))
	return starlark.Bool(result), nil
}

func starlarkStartswith(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s, prefix starlark.String
	if err := starlark.UnpackArgs("startswith", args, kwargs, "s", &s, "prefix", &prefix); err != nil {
		return nil, err
	}
	result := strings.HasPrefix(string(s), string(prefix))
	return starlark.Bool(result), nil
}

func starlarkEndswith(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s, suffix starlark.String
	if err := starlark.UnpackArgs("endswith", args, kwargs, "s", &s, "suffix", &suffix); err != nil {
		return nil, err
	}
	result := strings.HasSuffix(string(s), string(suffix))
	return starlark.Bool(result), nil
}