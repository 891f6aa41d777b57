package iamcontainer

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/nimbus/pkg/config"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/auth"
	"github.com/Abraxas-365/nimbus/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/nimbus/pkg/iam/emailcheck"
	"github.com/Abraxas-365/nimbus/pkg/iam/login"
	"github.com/Abraxas-365/nimbus/pkg/iam/password"
	"github.com/Abraxas-365/nimbus/pkg/iam/registration"
	"github.com/Abraxas-365/nimbus/pkg/iam/secrethash"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
	"github.com/Abraxas-365/nimbus/pkg/iam/session/sessioninfra"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies the account handlers require.
// ---------------------------------------------------------------------------

type Deps struct {
	Cfg *config.Config

	UserPool   iam.UserPoolAPI
	Identities iam.IdentityPoolAPI
	Resolver   emailcheck.Resolver

	// Sync backs the cognitosync session store
	Sync sessioninfra.SyncAPI
	// Redis backs the redis session store
	Redis *redis.Client

	// Notifier sends the password reset notice; nil disables it
	Notifier password.Notifier
	// Recorder observes routed requests; nil disables it
	Recorder iam.Recorder
	// Audit defaults to the logx audit service
	Audit auth.AuditService
}

// ---------------------------------------------------------------------------
// Container: the public surface of the account module.
// ---------------------------------------------------------------------------

type Container struct {
	Router *iam.Router

	Registration *registration.Handler
	Login        *login.Handler
	Password     *password.Handler
	Forgot       *password.ForgotHandler

	Sessions session.Store
}

// New constructs the handler graph and mounts every handler on the router.
func New(deps Deps) (*Container, error) {
	logx.Info("🔧 Initializing IAM container...")

	cfg := deps.Cfg
	c := &Container{}

	audit := deps.Audit
	if audit == nil {
		audit = authinfra.NewLogxAuditService()
	}

	// ── Session store ────────────────────────────────────────────────────

	var writer session.Writer
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("iamcontainer: %s session store needs a redis client", cfg.Session.Backend)
		}
		store := sessioninfra.NewRedisStore(deps.Redis, cfg.Session.KeyPrefix)
		c.Sessions, writer = store, store
		logx.Info("  ✅ Using Redis session store")
	case config.SessionBackendCognitoSync:
		if deps.Sync == nil {
			return nil, fmt.Errorf("iamcontainer: %s session store needs a cognito sync client", cfg.Session.Backend)
		}
		c.Sessions = sessioninfra.NewSyncStore(deps.Sync, cfg.Cognito.ProfileDataset)
		logx.Infof("  ✅ Using Cognito Sync session store (dataset: %s)", cfg.Cognito.ProfileDataset)
	default:
		return nil, fmt.Errorf("iamcontainer: unknown session backend %q", cfg.Session.Backend)
	}

	// ── Handlers ─────────────────────────────────────────────────────────

	client := secrethash.Client{ID: cfg.Cognito.ClientID, Secret: cfg.Cognito.ClientSecret}

	c.Registration = registration.NewHandler(
		registration.Config{Client: client},
		deps.UserPool,
		emailcheck.NewValidator(deps.Resolver),
		audit,
	)

	loginOpts := []login.Option{login.WithAudit(audit)}
	if writer != nil {
		loginOpts = append(loginOpts, login.WithSessionWriter(writer))
	}
	c.Login = login.NewHandler(login.Config{Region: cfg.AWSRegion}, deps.UserPool, deps.Identities, loginOpts...)

	passwordOpts := []password.Option{password.WithAudit(audit)}
	if deps.Notifier != nil {
		passwordOpts = append(passwordOpts, password.WithNotifier(deps.Notifier))
		logx.Info("  ✅ Password reset notices enabled")
	}
	c.Password = password.NewHandler(password.Config{Client: client}, deps.UserPool, c.Sessions, passwordOpts...)
	c.Forgot = password.NewForgotHandler(password.Config{Client: client}, deps.UserPool, audit)

	// ── Routes ───────────────────────────────────────────────────────────

	c.Router = iam.NewRouter(deps.Recorder)
	c.Router.Handle(c.Registration, iam.ResourceRegister)
	c.Router.Handle(c.Login, iam.ResourceLogin)
	c.Router.Handle(c.Password, iam.ResourcePassword, iam.ResourceForgotPassword)
	c.Router.Handle(c.Forgot, iam.ResourceForgot)

	logx.Info("✅ IAM container initialized")
	return c, nil
}

// PoolParams returns the configured pool for entrypoints whose requests do
// not carry their own.
func PoolParams(cfg *config.Config) iam.PoolParams {
	return iam.PoolParams{
		UserPoolID:     cfg.Cognito.UserPoolID,
		ClientID:       cfg.Cognito.ClientID,
		ClientSecret:   cfg.Cognito.ClientSecret,
		IdentityPoolID: cfg.Cognito.IdentityPoolID,
	}
}
