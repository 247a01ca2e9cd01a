package middleware

import (
	"net/http"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
)

// CustomTag sets X-CUSTOM-ID on responses that did not set it themselves.
type CustomTag struct {
	value string
}

// NewCustomTag creates a hook tagging responses with value.
func NewCustomTag(value string) *CustomTag {
	return &CustomTag{value: value}
}

// Name identifies the hook in logs.
func (*CustomTag) Name() string { return "custom-tag" }

// OnResponse sets X-CUSTOM-ID unless the handler already did.
func (t *CustomTag) OnResponse(_ *http.Request, h http.Header) error {
	if h.Get(dto.HeaderCustomID) == "" {
		h.Set(dto.HeaderCustomID, t.value)
	}
	return nil
}
