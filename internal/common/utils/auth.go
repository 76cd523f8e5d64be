package utils

import "encoding/base64"

// BasicAuth encodes user:password for a Basic auth header value, without the "Basic " prefix.
func BasicAuth(username, password string) string {
	if username == "" && password == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
