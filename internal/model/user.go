// Package model defines the data structures used throughout the application.
//
// Each entity has three shapes:
//   - the row itself (User, Snippet, Tag), which is what the API returns
//   - a New* payload for inserts, where every field is a pointer so an
//     omitted JSON key reaches the store as NULL instead of ""
//   - a *Patch payload for partial updates, where nil means "leave as is"
//
// Ids and timestamps are never patchable.
package model

import "time"

// User represents a registered user account.
//
// PasswordHash is stored exactly as supplied by the caller. It is never
// written back out in API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser is the body of POST /api/users. ID is optional; the store
// generates one when it is absent.
type NewUser struct {
	ID           *string `json:"id"`
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	PasswordHash *string `json:"passwordHash"`
}

// UserPatch is the body of PUT /api/users/{id}.
type UserPatch struct {
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	PasswordHash *string `json:"passwordHash"`
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil
}
