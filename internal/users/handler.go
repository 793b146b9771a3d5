package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// Policies are the configurable requirements of the user routes.
type Policies struct {
	Create          rbac.Requirement
	List            rbac.Requirement
	BusinessProfile rbac.Requirement
}

// DefaultPolicies mirrors the historical exposure of the user routes.
func DefaultPolicies() Policies {
	return Policies{
		Create:          rbac.Public(),
		List:            rbac.Public(),
		BusinessProfile: rbac.Authenticated(),
	}
}

// Handler manages user management endpoints.
type Handler struct {
	dispatch *dispatch.Dispatcher
	service  *Service
	policies Policies
}

// NewHandler builds Handler instance.
func NewHandler(d *dispatch.Dispatcher, service *Service, policies Policies) *Handler {
	return &Handler{dispatch: d, service: service, policies: policies}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.dispatch.Handle(h.create, h.policies.Create))
	r.Get("/", h.dispatch.Handle(h.list, h.policies.List))
	r.Put("/{uid}/business-profile", h.dispatch.Handle(h.updateBusinessProfile, h.policies.BusinessProfile))
	r.Post("/{uid}/role", h.dispatch.Handle(h.setRole, rbac.Require(rbac.RoleSAdmin)))
}

func (h *Handler) create(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	var in CreateUserInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(user), nil
}

func (h *Handler) list(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	page, err := dispatch.PageFromQuery(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	filter := ListFilter{Limit: page.Limit, Offset: page.Offset}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := rbac.ParseRole(raw)
		if err != nil {
			return dispatch.Result{}, shared.ValidationFields("invalid query", map[string]string{"role": "must be one of User, Advertiser, Admin, SAdmin"})
		}
		filter.Role = role
	}
	users, err := h.service.List(r.Context(), filter)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(users), nil
}

func (h *Handler) updateBusinessProfile(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	var profile BusinessProfile
	if err := dispatch.Bind(r, &profile); err != nil {
		return dispatch.Result{}, err
	}
	user, err := h.service.UpdateBusinessProfile(r.Context(), rbac.PrincipalFromContext(r.Context()), p.Get("uid"), profile)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(user), nil
}

func (h *Handler) setRole(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	var in SetRoleInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	user, err := h.service.SetRole(r.Context(), rbac.PrincipalFromContext(r.Context()), p.Get("uid"), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(user), nil
}
