package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/logging"
)

const redacted = "[REDACTED]"

// RedactHeaders converts an http.Header map into slog attributes sorted by
// header name. Sensitive headers are replaced with "[REDACTED]" and
// multi-value headers are joined with a comma.
func RedactHeaders(headers http.Header) []slog.Attr {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		value := redacted
		if !logging.SensitiveHeaders[strings.ToLower(key)] {
			value = strings.Join(headers[key], ",")
		}
		attrs = append(attrs, slog.String(key, value))
	}
	return attrs
}
