package user

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
)

const (
	nameGradeSeparator = "_"
	nameGradeParts     = 2

	// MsgParseUserParam is returned for every malformed name/grade segment.
	MsgParseUserParam = "Error parsing user parameter"
	// MsgParseUserID is returned for identifiers that are not canonical UUIDs.
	MsgParseUserID = "Error parsing user identifier"
)

// ParseError reports a path parameter that does not have the expected shape.
// It wraps domain.ErrValidation so the HTTP layer answers 400.
type ParseError struct {
	Param string
	Value string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Msg, e.Param, e.Value)
}

func (e *ParseError) Unwrap() error {
	return domain.ErrValidation
}

// ParseNameGrade decodes a "<name>_<grade>" segment. It succeeds only when the
// segment splits into exactly two parts and the grade is an integer in 0..255.
// The grade may carry one leading "+"; a "-" is always rejected.
func ParseNameGrade(segment string) (NameGrade, error) {
	parts := strings.Split(segment, nameGradeSeparator)
	if len(parts) != nameGradeParts {
		return NameGrade{}, &ParseError{Param: "name_grade", Value: segment, Msg: MsgParseUserParam}
	}

	grade, err := strconv.ParseUint(strings.TrimPrefix(parts[1], "+"), 10, 8)
	if err != nil {
		return NameGrade{}, &ParseError{Param: "name_grade", Value: segment, Msg: MsgParseUserParam}
	}

	return NameGrade{Name: parts[0], Grade: uint8(grade)}, nil
}

// canonicalUUIDLen is the length of the hyphenated 8-4-4-4-12 form.
const canonicalUUIDLen = 36

// ParseID decodes a point-lookup identifier. Only the canonical hyphenated
// form is accepted; uuid.Parse alone would also take braced and urn forms.
func ParseID(raw string) (uuid.UUID, error) {
	if len(raw) != canonicalUUIDLen {
		return uuid.Nil, &ParseError{Param: "id", Value: raw, Msg: MsgParseUserID}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ParseError{Param: "id", Value: raw, Msg: MsgParseUserID}
	}
	return id, nil
}
