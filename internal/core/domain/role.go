package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultRoles are seeded when the role collection is empty.
var DefaultRoles = []string{RoleUser, RoleAdmin}

// UserRole is the role carried by a User. It is either a bare RoleRef, when
// the user was loaded without expansion, or a full Role.
type UserRole interface {
	RoleID() string
	isUserRole()
}

// RoleRef references a role by id only.
type RoleRef string

func (r RoleRef) RoleID() string { return string(r) }
func (RoleRef) isUserRole()      {}

// Role is a named permission bucket. As a UserRole it is the expanded form.
type Role struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (r Role) RoleID() string { return r.ID }
func (Role) isUserRole()      {}
