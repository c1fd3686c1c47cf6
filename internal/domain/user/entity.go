package user

import (
	"time"

	"fitspace-backend/pkg/optional"
)

// User represents a user entity in the system.
type User struct {
	ID        int64     // ID is the unique identifier for the user, immutable once assigned
	Name      string    // Name is the full name of the user
	Email     string    // Email is the unique, lower-cased email address of the user
	Phone     *string   // Phone is optional
	Bio       *string   // Bio is an optional free-text biography
	CreatedAt time.Time // CreatedAt is assigned by the server on insert
	UpdatedAt time.Time // UpdatedAt is refreshed by the server on every update
}

// Patch is a partial update. Only fields with Set == true are written;
// a Null value clears the column.
type Patch struct {
	Name  optional.Value[string]
	Email optional.Value[string]
	Phone optional.Value[string]
	Bio   optional.Value[string]
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Phone.Set && !p.Bio.Set
}

// ListFilter selects a window of users, optionally matching Search
// case-insensitively against name or email.
type ListFilter struct {
	Search string
	Offset int64
	Limit  int64
}
