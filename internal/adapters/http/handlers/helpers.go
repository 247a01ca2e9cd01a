package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
)

// Query parameter names for the optional search filters.
const (
	queryAge    = "age"
	queryActive = "active"
)

// Field messages for malformed filters.
const (
	msgAgeRange   = "must be an integer between 0 and 255"
	msgActiveBool = "must be a boolean"
)

// filterQuery is the raw form of the search filters. A nil field was absent
// from the query string; the two must be given together.
type filterQuery struct {
	Age    *string `query:"age" validate:"required_with=Active,omitnil,number"`
	Active *string `query:"active" validate:"required_with=Age,omitnil,boolean"`
}

// queryValidator is safe for concurrent use and caches struct metadata.
var queryValidator = newQueryValidator()

func newQueryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

// parseFilters decodes the optional age/active filters. It returns nil when
// neither is present and a *domain.ValidationError when only one is present
// or either is malformed.
func parseFilters(r *http.Request) (*user.Filters, error) {
	q := r.URL.Query()

	var raw filterQuery
	if q.Has(queryAge) {
		v := q.Get(queryAge)
		raw.Age = &v
	}
	if q.Has(queryActive) {
		v := q.Get(queryActive)
		raw.Active = &v
	}

	if raw.Age == nil && raw.Active == nil {
		return nil, nil
	}

	if err := queryValidator.Struct(raw); err != nil {
		return nil, toValidationError(err)
	}

	age, err := strconv.ParseUint(*raw.Age, 10, 8)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{queryAge: msgAgeRange}}
	}
	active, err := strconv.ParseBool(*raw.Active)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{queryActive: msgActiveBool}}
	}

	return &user.Filters{Age: uint8(age), Active: active}, nil
}

// toValidationError converts validator field errors into the domain form.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_with":
			fields[fe.Field()] = domain.MsgRequired
		case "number":
			fields[fe.Field()] = msgAgeRange
		case "boolean":
			fields[fe.Field()] = msgActiveBool
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &domain.ValidationError{Fields: fields}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}
