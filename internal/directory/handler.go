package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
)

// Handler exposes directory endpoints.
type Handler struct {
	dispatch *dispatch.Dispatcher
	service  *Service
}

// NewHandler builds Handler instance.
func NewHandler(d *dispatch.Dispatcher, service *Service) *Handler {
	return &Handler{dispatch: d, service: service}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	staff := rbac.Require(rbac.RoleAdmin, rbac.RoleSAdmin)

	r.Post("/", h.dispatch.Handle(h.create, staff))
	r.Get("/", h.dispatch.Handle(h.list, rbac.Public()))
	r.Get("/{id}", h.dispatch.Handle(h.get, rbac.Public()))
	r.Delete("/{id}", h.dispatch.Handle(h.delete, staff))
	r.Post("/{id}/approve", h.dispatch.Handle(h.approve, staff))
	r.Post("/{id}/link", h.dispatch.Handle(h.link, rbac.Require(rbac.RoleAdvertiser)))
}

func (h *Handler) create(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	var in CreateListingInput
	if err := dispatch.Bind(r, &in); err != nil {
		return dispatch.Result{}, err
	}
	listing, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Created(listing), nil
}

func (h *Handler) list(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	page, err := dispatch.PageFromQuery(r)
	if err != nil {
		return dispatch.Result{}, err
	}
	q := r.URL.Query()
	listings, err := h.service.List(r.Context(), ListFilter{
		Viewer:   rbac.PrincipalFromContext(r.Context()),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(listings), nil
}

func (h *Handler) get(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	listing, err := h.service.Get(r.Context(), rbac.PrincipalFromContext(r.Context()), p.Get("id"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(listing), nil
}

func (h *Handler) delete(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	id := p.Get("id")
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), id); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(map[string]string{"id": id}), nil
}

func (h *Handler) approve(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	listing, err := h.service.Approve(r.Context(), rbac.PrincipalFromContext(r.Context()), p.Get("id"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(listing), nil
}

func (h *Handler) link(r *http.Request, p dispatch.Params) (dispatch.Result, error) {
	listing, err := h.service.Link(r.Context(), rbac.PrincipalFromContext(r.Context()), p.Get("id"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.OK(listing), nil
}
