package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders lists, lower-cased, the request and response headers that
// carry credentials. The header redactor in the HTTP middleware reads the same
// set, so a header added here is hidden in both places.
var SensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"x-api-key":           true,
	"cookie":              true,
	"set-cookie":          true,
}

// sensitiveFields are attribute keys whose values are never logged. The
// storage config's dsn is here because it usually embeds a password.
var sensitiveFields = []string{"password", "secret", "token", "dsn"}

// sensitivePrefixes catch key variants such as secret_key or api_key_v2.
var sensitivePrefixes = []string{"secret_", "api_key"}

// valuePatterns redact secrets that turn up inside otherwise harmless values,
// for example a driver error that echoes its connection string.
var valuePatterns = []*regexp.Regexp{
	// Bearer tokens.
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	// JWTs. Ten or more characters per segment so version strings survive.
	regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
	// api_key=..., apikey: ...
	regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
	// user:password@ in a connection URL.
	regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.\-]*://[^:/@\s]+:[^@\s]+@`),
}

// newRedactAttr builds the slog ReplaceAttr hook installed by New.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0,
		len(SensitiveHeaders)+len(sensitiveFields)+len(sensitivePrefixes)+len(valuePatterns))

	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, prefix := range sensitivePrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}
	for _, re := range valuePatterns {
		opts = append(opts, masq.WithRegex(re))
	}

	return masq.New(opts...)
}
