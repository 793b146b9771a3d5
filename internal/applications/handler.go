package applications

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
)

// Handler exposes job application endpoints.
type Handler struct {
	dispatch *dispatch.Dispatcher
	service  *Service
}

// NewHandler builds Handler instance.
func NewHandler(d *dispatch.Dispatcher, service *Service) *Handler {
	return &Handler{dispatch: d, service: service}
}

// MountRoutes registers routes under /jobs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{jobId}/applications", h.dispatch.Handle(h.list, rbac.Require(rbac.RoleAdmin, rbac.RoleSAdmin, rbac.RoleAdvertiser)))
	r.Post("/{jobId}/applications", h.dispatch.Handle(h.apply, rbac.Authenticated()))
}

func (h *Handler) apply(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	var in ApplyInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	app, err := h.service.Apply(r.Context(), rbac.PrincipalFromContext(r.Context()).ID, p.Get("jobId"), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(app), nil
}

func (h *Handler) list(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	page, err := dispatch.PageFromQuery(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	apps, err := h.service.ListForJob(r.Context(), p.Get("jobId"), page.Limit, page.Offset)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(apps), nil
}
