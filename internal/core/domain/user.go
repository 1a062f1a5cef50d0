package domain

import "time"

// User models an account holder. The password hash never leaves the service
// boundary: it is excluded from every JSON encoding.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MinUsernameLength is the shortest username accepted on register and rename.
const MinUsernameLength = 3

// RoleID returns the id of the user's role regardless of its representation.
func (u *User) RoleID() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.RoleID()
}

// WithRole returns a shallow copy of u carrying role r.
func (u *User) WithRole(r UserRole) *User {
	clone := *u
	clone.Role = r
	return &clone
}
