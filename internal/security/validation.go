package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptPattern = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	tagPattern    = regexp.MustCompile(`^[\p{L}\p{N}\-_.:]+$`)
	dangerousTags = []string{"<iframe", "<object", "<embed", "<form", "<input", "<meta"}
)

// SanitizeInput rejects text that is too long or carries markup a browser
// would execute.
func SanitizeInput(input string, maxLength int) (string, error) {
	if utf8.RuneCountInString(input) > maxLength {
		return "", fmt.Errorf("input longer than %d characters", maxLength)
	}

	if scriptPattern.MatchString(input) {
		return "", fmt.Errorf("input contains a script tag")
	}

	lowerInput := strings.ToLower(input)
	if strings.Contains(lowerInput, "javascript:") {
		return "", fmt.Errorf("input contains a javascript: URL")
	}
	for _, tag := range dangerousTags {
		if strings.Contains(lowerInput, tag) {
			return "", fmt.Errorf("input contains a disallowed HTML tag")
		}
	}

	return input, nil
}

// ValidateKeyword checks a channel search keyword. Empty is allowed.
func ValidateKeyword(keyword string) error {
	if _, err := SanitizeInput(keyword, 200); err != nil {
		return fmt.Errorf("invalid keyword: %v", err)
	}
	return nil
}

// ValidateTag checks a display tag produced by a tagger.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if _, err := SanitizeInput(tag, 50); err != nil {
		return fmt.Errorf("tag '%s': %v", tag, err)
	}
	if !tagPattern.MatchString(tag) {
		return fmt.Errorf("tag '%s' may only contain letters, digits, '-', '_', '.' and ':'", tag)
	}
	return nil
}

// ValidateLogDays bounds a journal cleanup window.
func ValidateLogDays(days int) error {
	if days < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}
	if days > 365 {
		return fmt.Errorf("retention days cannot exceed 365")
	}
	return nil
}
