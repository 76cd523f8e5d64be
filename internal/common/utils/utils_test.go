package utils

import "testing"

func TestBasicAuth(t *testing.T) {
	if got := BasicAuth("", ""); got != "" {
		t.Errorf("expected empty credentials to produce empty value, got %q", got)
	}
	if got := BasicAuth("user", "pass"); got != "dXNlcjpwYXNz" {
		t.Errorf("BasicAuth() = %q", got)
	}
}
