package domain

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// ParseRole maps a persisted or server-supplied user type to a Role,
// defaulting to customer like the backend profile does.
func ParseRole(v string) Role {
	if strings.EqualFold(strings.TrimSpace(v), string(RoleSeller)) {
		return RoleSeller
	}
	return RoleCustomer
}

// Session is the authenticated identity of a client instance.
type Session struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
	Role     Role   `json:"user_type"`
}

func (s Session) Valid() bool {
	return s.Access != ""
}
