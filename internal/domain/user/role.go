package user

import "strings"

// Role is a back-office permission level. Every route open to staff is open
// to admins as well.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

var roleRank = map[Role]int{
	RoleStaff: 1,
	RoleAdmin: 2,
}

func NewRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r is at least min. Unknown roles satisfy nothing.
func (r Role) Satisfies(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := roleRank[min]
	return ok && have >= need
}
