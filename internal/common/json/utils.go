package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// SafeMarshal wraps json.Marshal with the value type in the error.
func SafeMarshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return data, nil
}

// SafeUnmarshal rejects empty input and names the target type in errors.
func SafeUnmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("cannot unmarshal empty data into %T", v)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %w", v, err)
	}
	return nil
}

// UnmarshalFromReader reads reader to the end and decodes it into target.
func UnmarshalFromReader[T any](reader io.Reader, target *T) error {
	if reader == nil {
		return fmt.Errorf("reader is nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("empty data from reader")
	}

	return SafeUnmarshal(data, target)
}

// GetJSONType names the top-level JSON kind: object, array, string, number, boolean or null.
func GetJSONType(data []byte) (string, error) {
	var temp interface{}
	if err := json.Unmarshal(data, &temp); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	switch temp.(type) {
	case map[string]interface{}:
		return "object", nil
	case []interface{}:
		return "array", nil
	case string:
		return "string", nil
	case float64:
		return "number", nil
	case bool:
		return "boolean", nil
	default:
		return "null", nil
	}
}

// Compact strips insignificant whitespace so two encodings of one value compare equal.
func Compact(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}

// Indent re-indents JSON text with two spaces.
func Indent(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}
