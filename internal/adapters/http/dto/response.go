// Package dto renders domain results and errors into HTTP responses: the
// plain-text user bodies, the fallback 404/403 bodies and RFC 9457 Problem
// Details for everything else.
package dto

import (
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
)

// Response header names and values.
const (
	HeaderUserID   = "X-USER-ID"
	HeaderCustomID = "X-CUSTOM-ID"

	// CustomIDDefault tags every response that does not set its own.
	CustomIDDefault = "CUSTOM"
	// CustomIDUsers tags collection responses.
	CustomIDUsers = "USERS"

	foundPrefix         = "Found user: "
	collectionSeparator = ","
)

// Rendered is a formatted response waiting to be written. It never touches
// storage.
type Rendered struct {
	Header http.Header
	Body   string
}

// RenderUser formats a single-record response.
func RenderUser(u *user.User) Rendered {
	h := make(http.Header)
	h.Set("Content-Type", contentTypeText)
	h.Set(HeaderUserID, u.ID.String())
	h.Set(HeaderCustomID, CustomIDDefault)

	return Rendered{Header: h, Body: foundPrefix + u.Summary()}
}

// RenderUsers formats a collection response: record summaries joined by a
// comma, in the order given.
func RenderUsers(users []user.User) Rendered {
	parts := make([]string, len(users))
	for i := range users {
		parts[i] = users[i].Summary()
	}

	h := make(http.Header)
	h.Set("Content-Type", contentTypeText)
	h.Set(HeaderCustomID, CustomIDUsers)

	return Rendered{Header: h, Body: strings.Join(parts, collectionSeparator)}
}

// Write copies the rendered headers onto w and writes status and body.
func (rd Rendered) Write(w http.ResponseWriter, status int) error {
	maps.Copy(w.Header(), rd.Header)
	w.WriteHeader(status)
	_, err := io.WriteString(w, rd.Body)
	return err
}
