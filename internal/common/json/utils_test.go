package json

import (
	"strings"
	"testing"
)

func TestSafeMarshal(t *testing.T) {
	if _, err := SafeMarshal(map[string]interface{}{"key": "value"}); err != nil {
		t.Errorf("SafeMarshal() error = %v", err)
	}
	if _, err := SafeMarshal(make(chan int)); err == nil {
		t.Error("expected error marshaling a channel")
	}
}

func TestSafeUnmarshal(t *testing.T) {
	var out map[string]int
	if err := SafeUnmarshal(nil, &out); err == nil {
		t.Error("expected error for empty data")
	}
	if err := SafeUnmarshal([]byte(`{"a":1}`), &out); err != nil || out["a"] != 1 {
		t.Errorf("SafeUnmarshal() = %v, %v", out, err)
	}
}

func TestUnmarshalFromReader(t *testing.T) {
	var out struct {
		Success bool `json:"success"`
	}
	if err := UnmarshalFromReader(strings.NewReader(`{"success":true}`), &out); err != nil {
		t.Fatalf("UnmarshalFromReader() error = %v", err)
	}
	if !out.Success {
		t.Error("expected success=true")
	}
	if err := UnmarshalFromReader(strings.NewReader(""), &out); err == nil {
		t.Error("expected error for empty reader")
	}
}

func TestGetJSONType(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{`{"gpt-4":15}`, "object"},
		{`[1,2]`, "array"},
		{`"x"`, "string"},
		{`1.5`, "number"},
		{`true`, "boolean"},
		{`null`, "null"},
	}
	for _, tc := range testCases {
		got, err := GetJSONType([]byte(tc.input))
		if err != nil {
			t.Errorf("GetJSONType(%s) error = %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("GetJSONType(%s) = %s, want %s", tc.input, got, tc.want)
		}
	}
	if _, err := GetJSONType([]byte(`{`)); err == nil {
		t.Error("GetJSONType should reject truncated input")
	}
}

func TestCompactAndIndent(t *testing.T) {
	compact, err := Compact([]byte("{\n  \"gpt-4\": 15,\n  \"gpt-3.5\": 0.75\n}"))
	if err != nil {
		t.Fatalf("Compact error = %v", err)
	}
	if compact != `{"gpt-4":15,"gpt-3.5":0.75}` {
		t.Errorf("Compact = %s", compact)
	}

	indented, err := Indent([]byte(compact))
	if err != nil {
		t.Fatalf("Indent error = %v", err)
	}
	if indented != "{\n  \"gpt-4\": 15,\n  \"gpt-3.5\": 0.75\n}" {
		t.Errorf("Indent = %q", indented)
	}

	if _, err := Compact([]byte(`{"a":`)); err == nil {
		t.Error("Compact should reject truncated input")
	}
}
