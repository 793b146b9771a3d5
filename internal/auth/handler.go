package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	dispatch *dispatch.Dispatcher
	service  *Service
	resolver *Resolver
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, d *dispatch.Dispatcher, service *Service, resolver *Resolver, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		dispatch: d,
		service:  service,
		resolver: resolver,
		sessions: sessions,
		csrf:     csrf,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.dispatch.Handle(h.login, rbac.Public()))
	r.Post("/logout", h.dispatch.Handle(h.logout, rbac.Authenticated()))
	r.Get("/me", h.dispatch.Handle(h.me, rbac.Authenticated()))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) login(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	var req loginRequest
	if err := dispatch.Bind(r, &req); err != nil {
		return dispatch.Result{}, err
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return dispatch.Result{}, err
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Bind(result.User.ID, string(result.User.Role))
		if h.csrf != nil {
			token, err := h.csrf.EnsureToken(sess)
			if err != nil {
				h.logger.Warn("csrf token", slog.Any("error", err))
			}
			result.CSRFToken = token
		}
	}
	return dispatch.OK(result), nil
}

func (h *Handler) logout(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	if strings.TrimSpace(r.Header.Get("Authorization")) != "" && h.resolver != nil {
		claims, err := h.resolver.Claims(r)
		if err != nil {
			return dispatch.Result{}, err
		}
		if err := h.service.Logout(r.Context(), claims); err != nil {
			return dispatch.Result{}, err
		}
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil && h.sessions != nil {
		h.sessions.Destroy(sess)
	}
	return dispatch.OK(map[string]bool{"loggedOut": true}), nil
}

func (h *Handler) me(r *http.Request, _ dispatch.Params) (dispatch.Result, error) {
	return dispatch.OK(rbac.PrincipalFromContext(r.Context())), nil
}
