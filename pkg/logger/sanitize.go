package logger

import (
	"strings"
)

// SanitizedUsername masks a username for logging (keeps the first character)
func SanitizedUsername(username string) string {
	if username == "" {
		return "[empty]"
	}
	if len(username) == 1 {
		return "*"
	}
	return string(username[0]) + strings.Repeat("*", len(username)-1)
}

// SanitizeQueryString checks if a query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"email",
		"auth",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
