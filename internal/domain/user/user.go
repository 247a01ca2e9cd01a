// Package user holds the User entity, the search criteria built from request
// input, and the parsers that decode path segments into those criteria.
package user

import (
	"fmt"

	"github.com/google/uuid"
)

// User is a row of the users table. Values are immutable once read.
type User struct {
	ID     uuid.UUID
	Name   string
	Age    int16
	Grade  int16
	Active bool
}

// Summary renders the user as a single line of text.
func (u *User) Summary() string {
	return fmt.Sprintf("User{ID: %s, Name: %q, Age: %d, Grade: %d, Active: %t}",
		u.ID, u.Name, u.Age, u.Grade, u.Active)
}
