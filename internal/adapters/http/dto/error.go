package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
)

const (
	contentTypeProblem = "application/problem+json"
	contentTypeText    = "text/plain; charset=utf-8"

	// detailInternal replaces the text of every 5xx error so driver and
	// panic messages never reach the client.
	detailInternal = "internal server error"
)

// ErrorResponse represents an RFC 9457 Problem Details response.
type ErrorResponse struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents a single parameter-level error within an
// ErrorResponse.
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

// NewErrorResponse creates an RFC 9457 ErrorResponse from a domain error.
// The request is used to populate the instance field with the request URI.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status := domainErrorToStatus(err)

	resp := ErrorResponse{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: r.URL.RequestURI(),
	}

	if status >= http.StatusInternalServerError {
		resp.Detail = detailInternal
		return resp
	}

	var perr *user.ParseError
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &perr):
		resp.Detail = perr.Msg
		resp.Errors = []ErrorDetail{{
			Location: "path." + perr.Param,
			Message:  perr.Msg,
			Value:    perr.Value,
		}}
	case errors.As(err, &verr):
		resp.Errors = validationFieldsToDetails(verr.Fields)
	}

	return resp
}

// WriteErrorResponse writes the response for a domain error. Not-found and
// forbidden outcomes get the plain-text fallback bodies; everything else is
// written as RFC 9457 application/problem+json.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch status := domainErrorToStatus(err); status {
	case http.StatusNotFound, http.StatusForbidden:
		WriteFallback(w, r, status)
		return
	}

	resp := NewErrorResponse(r, err)

	w.Header().Set("Content-Type", contentTypeProblem)
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

// FallbackMessage returns the plain-text body for a 404 or 403 outcome. The
// request URI is embedded as received.
func FallbackMessage(r *http.Request, status int) string {
	uri := r.URL.RequestURI()
	if status == http.StatusForbidden {
		return fmt.Sprintf("Access forbidden %s.", uri)
	}
	return fmt.Sprintf("We cannot find this page %s.", uri)
}

// WriteFallback writes the plain-text fallback body for status.
func WriteFallback(w http.ResponseWriter, r *http.Request, status int) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, FallbackMessage(r, status))
}

// domainErrorToStatus maps domain sentinel errors to HTTP status codes.
// Backend and consistency failures share the 500 default.
func domainErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// validationFieldsToDetails converts domain validation fields to sorted
// ErrorDetail entries.
func validationFieldsToDetails(fields map[string]string) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, ErrorDetail{
			Location: "query." + field,
			Message:  msg,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Location < details[j].Location
	})
	return details
}
