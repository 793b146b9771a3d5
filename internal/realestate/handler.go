package realestate

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
)

// Handler exposes real estate endpoints.
type Handler struct {
	dispatch *dispatch.Dispatcher
	service  *Service
}

// NewHandler builds Handler instance.
func NewHandler(d *dispatch.Dispatcher, service *Service) *Handler {
	return &Handler{dispatch: d, service: service}
}

// MountRoutes registers real estate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.dispatch.Handle(h.create, rbac.Authenticated()))
	r.Get("/", h.dispatch.Handle(h.list, rbac.Public()))
	r.Patch("/{id}/status", h.dispatch.Handle(h.updateStatus, rbac.Require(rbac.RoleAdmin, rbac.RoleSAdmin)))
}

func (h *Handler) create(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	var in CreatePropertyInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	p, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(p), nil
}

func (h *Handler) list(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	page, err := dispatch.PageFromQuery(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	q := r.URL.Query()
	props, err := h.service.List(r.Context(), ListFilter{
		Viewer: rbac.PrincipalFromContext(r.Context()),
		Status: q.Get("status"),
		Kind:   q.Get("kind"),
		City:   q.Get("city"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(props), nil
}

func (h *Handler) updateStatus(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	var in StatusInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	prop, err := h.service.UpdateStatus(r.Context(), rbac.PrincipalFromContext(r.Context()), p.Get("id"), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(prop), nil
}
