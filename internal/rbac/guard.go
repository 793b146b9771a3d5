package rbac

import "context"

// DenyReason explains why a request was refused.
type DenyReason string

// Deny reasons.
const (
	ReasonUnauthenticated DenyReason = "Unauthenticated"
	ReasonForbidden       DenyReason = "Forbidden"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Authorize decides whether principal may invoke a route guarded by req.
// Membership is flat: no role implies another.
func Authorize(principal Principal, req Requirement) Decision {
	if req.IsPublic() {
		return Decision{Allowed: true}
	}
	if principal.IsAnonymous() {
		return Decision{Reason: ReasonUnauthenticated}
	}
	if req.Allows(principal.Role) {
		return Decision{Allowed: true}
	}
	return Decision{Reason: ReasonForbidden}
}

type principalContextKey struct{}

// WithPrincipal stores the resolved principal in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal bound to ctx, or Anonymous.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalContextKey{}).(Principal)
	return p
}

// IsStaff reports whether the principal holds an administrative role.
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleSAdmin
}
