package rbac

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of roles a principal can hold.
type Role string

// Known roles.
const (
	RoleUser       Role = "User"
	RoleAdvertiser Role = "Advertiser"
	RoleAdmin      Role = "Admin"
	RoleSAdmin     Role = "SAdmin"
)

var allRoles = []Role{RoleUser, RoleAdvertiser, RoleAdmin, RoleSAdmin}

// AllRoles lists every known role.
func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole maps a role name, compared case-insensitively, to its canonical Role.
func ParseRole(name string) (Role, error) {
	name = strings.TrimSpace(name)
	for _, r := range allRoles {
		if strings.EqualFold(string(r), name) {
			return r, nil
		}
	}
	return "", fmt.Errorf("rbac: unknown role %q", name)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Principal describes the caller of a single request. The zero value is anonymous.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Anonymous returns the principal used when no credential was supplied.
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous reports whether no identity was resolved.
func (p Principal) IsAnonymous() bool {
	return p.ID == "" || !p.Role.Valid()
}

// Requirement is the set of roles permitted to invoke a route. Only Public
// builds the empty, allow-everyone requirement; the zero value admits nobody.
// Values are immutable once built.
type Requirement struct {
	public bool
	roles  map[Role]struct{}
}

// Public returns the requirement satisfied by every caller.
func Public() Requirement {
	return Requirement{public: true}
}

// NewRequirement builds a requirement allowing the listed roles. It fails on
// an unknown role or an empty list.
func NewRequirement(roles ...Role) (Requirement, error) {
	if len(roles) == 0 {
		return Requirement{}, errors.New("rbac: requirement needs at least one role")
	}
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return Requirement{}, fmt.Errorf("rbac: unknown role %q", r)
		}
		set[r] = struct{}{}
	}
	return Requirement{roles: set}, nil
}

// Require is NewRequirement for route registration. It panics on an unknown
// role or an empty list so a misspelt guard never mounts.
func Require(roles ...Role) Requirement {
	req, err := NewRequirement(roles...)
	if err != nil {
		panic(err)
	}
	return req
}

// Authenticated returns the requirement satisfied by any non-anonymous principal.
func Authenticated() Requirement {
	return Require(allRoles...)
}

// ParseRequirement reads a policy expression: "public", "authenticated", or a
// comma separated list of role names. The empty string is public; a list
// naming no role is rejected.
func ParseRequirement(expr string) (Requirement, error) {
	expr = strings.TrimSpace(expr)
	switch strings.ToLower(expr) {
	case "", "public":
		return Public(), nil
	case "authenticated":
		return Authenticated(), nil
	}
	var roles []Role
	for _, part := range strings.Split(expr, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		role, err := ParseRole(part)
		if err != nil {
			return Requirement{}, err
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return Requirement{}, fmt.Errorf("rbac: policy %q names no role", expr)
	}
	return NewRequirement(roles...)
}

// IsPublic reports whether the requirement admits anonymous callers.
func (r Requirement) IsPublic() bool {
	return r.public
}

// Allows reports whether role is a member of the requirement.
func (r Requirement) Allows(role Role) bool {
	_, ok := r.roles[role]
	return ok
}

// Roles returns the permitted roles in stable order.
func (r Requirement) Roles() []Role {
	out := make([]Role, 0, len(r.roles))
	for role := range r.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r Requirement) String() string {
	if r.IsPublic() {
		return "public"
	}
	if len(r.roles) == 0 {
		return "none"
	}
	names := make([]string, 0, len(r.roles))
	for _, role := range r.Roles() {
		names = append(names, string(role))
	}
	return strings.Join(names, ",")
}
