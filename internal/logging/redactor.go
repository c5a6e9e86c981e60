package logging

import (
	"regexp"
	"strings"
)

var segmentSplitter = regexp.MustCompile(`[^a-z0-9]+`)

// redactor redacts sensitive values in log key-value pairs.
type redactor struct {
	sensitiveWords map[string]bool
}

// newRedactor creates a redactor for credentials and biometric payloads.
// Face encodings identify a person and must never reach a log file.
func newRedactor() *redactor {
	words := []string{"secret", "password", "token", "key", "auth", "credential", "encoding"}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact walks a flattened key-value slice and replaces the values of
// sensitive keys with "[REDACTED]". The input slice is not modified.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if r.isSensitive(key) {
			result[i+1] = "[REDACTED]"
		}
	}
	return result
}

// isSensitive reports whether any alphanumeric segment of key is a sensitive word.
func (r *redactor) isSensitive(key string) bool {
	for _, part := range segmentSplitter.Split(strings.ToLower(key), -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}
