package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/bizdir/bizdir/internal/applications"
	"github.com/bizdir/bizdir/internal/auth"
	"github.com/bizdir/bizdir/internal/blog"
	"github.com/bizdir/bizdir/internal/chat"
	"github.com/bizdir/bizdir/internal/directory"
	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/observability"
	"github.com/bizdir/bizdir/internal/platform/cache"
	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/realestate"
	"github.com/bizdir/bizdir/internal/servicelistings"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/internal/users"
	"github.com/bizdir/bizdir/jobs"
)

// SessionCookieName names the cookie carrying the session id.
const SessionCookieName = "bizdir_session"

// Dependencies are the infrastructure handles the HTTP application runs on.
// Enqueuer and Inspector may be nil; notifications are then dropped and the
// queue report falls back to defaults.
type Dependencies struct {
	Logger    *slog.Logger
	Config    *Config
	Store     docstore.Store
	Redis     *redis.Client
	Metrics   *observability.Metrics
	Enqueuer  jobs.Enqueuer
	Inspector jobs.QueueInspector
	// Verifiers are tried after the first-party token verifier.
	Verifiers []auth.Verifier
}

// NewServer wires every controller and returns the root handler.
func NewServer(deps Dependencies) (http.Handler, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if deps.Store == nil {
		return nil, errors.New("app: document store required")
	}
	if deps.Redis == nil {
		return nil, errors.New("app: redis client required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	issuer, err := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("app: token issuer: %w", err)
	}
	tokens, err := auth.NewTokenVerifier(cfg.TokenSecret, cfg.TokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("app: token verifier: %w", err)
	}
	chain := append(auth.Chain{tokens}, deps.Verifiers...)
	revocations := auth.NewRevocationList(deps.Redis)
	audit := shared.NewAuditLogger(deps.Store, logger)
	userService := users.NewService(users.NewRepository(deps.Store), audit)
	accounts := accountStore{users: userService}
	resolver := auth.NewResolver(chain,
		auth.WithRevocations(revocations),
		auth.WithSessionRoles(accounts),
		auth.WithVerifyTimeout(cfg.VerifyTimeout),
	)

	var opts []dispatch.Option
	if deps.Metrics != nil {
		opts = append(opts, dispatch.WithObserver(deps.Metrics))
	}
	d := dispatch.New(resolver, logger, opts...)

	sessions := shared.NewSessionManager(deps.Redis, SessionCookieName, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)

	var notifier *jobs.Notifier
	if deps.Enqueuer != nil {
		notifier = jobs.NewNotifier(deps.Enqueuer, logger)
	}

	policies, err := cfg.UserPolicies()
	if err != nil {
		return nil, err
	}
	for _, route := range PublicUserRoutes(policies) {
		logger.Warn("user route is publicly accessible", slog.String("route", route))
	}

	authService := auth.NewService(accounts, issuer, revocations)

	directoryService := directory.NewService(deps.Store, directory.Deps{
		Cache:    cache.NewVersioned(deps.Redis, "directory", cfg.ListCacheTTL),
		Notifier: notifier,
		Audit:    audit,
	})

	return NewRouter(RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessions,
		CSRFManager:         csrf,
		Metrics:             deps.Metrics,
		AuthHandler:         auth.NewHandler(logger, d, authService, resolver, sessions, csrf),
		BlogHandler:         blog.NewHandler(d, blog.NewService(deps.Store)),
		ChatHandler:         chat.NewHandler(d, chat.NewService(deps.Store, notifier)),
		DirectoryHandler:    directory.NewHandler(d, directoryService),
		ApplicationsHandler: applications.NewHandler(d, applications.NewService(deps.Store, notifier)),
		RealEstateHandler:   realestate.NewHandler(d, realestate.NewService(deps.Store, audit)),
		ServicesHandler:     servicelistings.NewHandler(d, servicelistings.NewService(deps.Store, audit)),
		UsersHandler:        users.NewHandler(d, userService, policies),
		JobHandler:          jobs.NewHandler(d, deps.Inspector, logger),
	}), nil
}

// accountStore exposes user accounts to the login flow.
type accountStore struct {
	users *users.Service
}

func (s accountStore) FindByEmail(ctx context.Context, email string) (auth.Account, error) {
	acc, err := s.users.FindAccount(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, err
	}
	return auth.Account{
		ID:           acc.ID,
		Email:        acc.Email,
		Name:         acc.Name,
		PasswordHash: acc.PasswordHash,
		Role:         acc.Role,
	}, nil
}

func (s accountStore) CurrentRole(ctx context.Context, userID string) (rbac.Role, error) {
	u, err := s.users.Get(ctx, userID)
	if shared.KindOf(err) == shared.KindNotFound {
		return "", auth.ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
