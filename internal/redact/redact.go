// Package redact scrubs credentials from strings before they are logged or
// wrapped into errors that leave a storage adapter.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for redacted content.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
)

var (
	// Connection strings with user info
	dbConnRegex = regexp.MustCompile(`(?i)\b(postgres|postgresql|sqlite|file)://[^@\s/]+@`)

	// Credentials and tokens
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	apiKeyRegex   = regexp.MustCompile(`(?i)(api[_-]?key|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Statements echoed back by database drivers
	sqlRegex = regexp.MustCompile(
		`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\S]*?\b(FROM|INTO|SET)\b[^;]*`,
	)

	rules = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{dbConnRegex, RedactedCredentialPlaceholder},
		{passwordRegex, RedactedCredentialPlaceholder},
		{apiKeyRegex, RedactedKeyPlaceholder},
		{sqlRegex, RedactedSQLPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL masks the password of a connection URL while keeping the host and
// database visible. Unparseable input falls back to String.
func URL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return String(raw)
	}
	if q := u.Query(); q.Has("password") {
		q.Set("password", "xxxxx")
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
