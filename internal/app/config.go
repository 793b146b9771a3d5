package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/kelseyhightower/envconfig"

	"github.com/bizdir/bizdir/internal/auth"
	"github.com/bizdir/bizdir/internal/platform/cache"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/users"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// An empty PG_DSN selects the in-memory store, allowed only outside production.
	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"10"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	TokenSecret string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	TokenIssuer string        `envconfig:"TOKEN_ISSUER" default:"bizdir"`

	OIDCIssuerURL string        `envconfig:"OIDC_ISSUER_URL"`
	OIDCClientID  string        `envconfig:"OIDC_CLIENT_ID"`
	OIDCRoleClaim string        `envconfig:"OIDC_ROLE_CLAIM" default:"role"`
	VerifyTimeout time.Duration `envconfig:"VERIFY_TIMEOUT" default:"3s"`

	RateLimit    int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	ListCacheTTL time.Duration `envconfig:"LIST_CACHE_TTL" default:"60s"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"10"`

	PolicyUsersCreate          string `envconfig:"POLICY_USERS_CREATE" default:"public"`
	PolicyUsersList            string `envconfig:"POLICY_USERS_LIST" default:"public"`
	PolicyUsersBusinessProfile string `envconfig:"POLICY_USERS_BUSINESS_PROFILE" default:"authenticated"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if len(c.TokenSecret) < auth.MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes", auth.MinSecretLength)
	}
	if c.PGDSN == "" && c.IsProduction() {
		return errors.New("PG_DSN must be provided in production")
	}
	if c.OIDCIssuerURL != "" && c.OIDCClientID == "" {
		return errors.New("OIDC_CLIENT_ID must be provided with OIDC_ISSUER_URL")
	}
	if c.RateLimit < 1 {
		return errors.New("rate limit must be positive")
	}
	if _, err := c.UserPolicies(); err != nil {
		return err
	}
	return nil
}

// UserPolicies parses the configurable requirements of the user routes.
func (c *Config) UserPolicies() (users.Policies, error) {
	create, err := rbac.ParseRequirement(c.PolicyUsersCreate)
	if err != nil {
		return users.Policies{}, fmt.Errorf("POLICY_USERS_CREATE: %w", err)
	}
	list, err := rbac.ParseRequirement(c.PolicyUsersList)
	if err != nil {
		return users.Policies{}, fmt.Errorf("POLICY_USERS_LIST: %w", err)
	}
	profile, err := rbac.ParseRequirement(c.PolicyUsersBusinessProfile)
	if err != nil {
		return users.Policies{}, fmt.Errorf("POLICY_USERS_BUSINESS_PROFILE: %w", err)
	}
	return users.Policies{Create: create, List: list, BusinessProfile: profile}, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Redis returns the connection settings of the shared Redis instance.
func (c *Config) Redis() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// QueueRedis returns the asynq view of the same Redis instance.
func (c *Config) QueueRedis() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// UseMemoryStore reports whether documents live in process memory.
func (c *Config) UseMemoryStore() bool {
	return c != nil && c.PGDSN == ""
}

// PublicUserRoutes names the user routes whose policy admits anonymous callers.
func PublicUserRoutes(p users.Policies) []string {
	var routes []string
	if p.Create.IsPublic() {
		routes = append(routes, "POST /users")
	}
	if p.List.IsPublic() {
		routes = append(routes, "GET /users")
	}
	if p.BusinessProfile.IsPublic() {
		routes = append(routes, "PUT /users/{uid}/business-profile")
	}
	return routes
}
