// Package appcontainer is the composition root shared by the HTTP server and
// the Lambda entrypoint. It owns the AWS clients, Redis and the metrics
// registry, and composes the IAM container from them.
package appcontainer

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitosync"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/nimbus/pkg/config"
	"github.com/Abraxas-365/nimbus/pkg/iam/emailcheck/dnsresolver"
	"github.com/Abraxas-365/nimbus/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/nimbus/pkg/logx"
	"github.com/Abraxas-365/nimbus/pkg/metricsx"
	"github.com/Abraxas-365/nimbus/pkg/notifx"
	"github.com/Abraxas-365/nimbus/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/nimbus/pkg/notifx/notifxses"
)

// Container holds shared infrastructure and the composed module containers.
type Container struct {
	Config *config.Config

	// Infrastructure
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metricsx.Metrics

	// Bounded-context containers
	IAM *iamcontainer.Container
}

// New builds the whole graph. Nothing is contacted except Redis, which is
// pinged when it backs the session store.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	deps := iamcontainer.Deps{
		Cfg:        cfg,
		UserPool:   cognitoidentityprovider.NewFromConfig(awsCfg),
		Identities: cognitoidentity.NewFromConfig(awsCfg),
	}

	// 1. Session backend
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		c.Redis = redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Address(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.Timeout,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to Redis at %s: %w", cfg.Redis.Address(), err)
		}
		deps.Redis = c.Redis
		logx.Info("  ✅ Redis connected")
	default:
		deps.Sync = cognitosync.NewFromConfig(awsCfg)
	}

	// 2. MX resolver
	resolver, err := dnsresolver.New(cfg.DNS.Server, cfg.DNS.Timeout)
	if err != nil {
		return nil, fmt.Errorf("configure DNS resolver: %w", err)
	}
	deps.Resolver = resolver

	// 3. Notifications
	switch cfg.Notifx.Provider {
	case "ses":
		notices, err := newNotices(notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), cfg.Notifx.FromAddress), cfg)
		if err != nil {
			return nil, err
		}
		deps.Notifier = notices
		logx.Infof("  ✅ SES notices configured (from: %s)", cfg.Notifx.FromAddress)
	case "console":
		notices, err := newNotices(notifxconsole.NewConsoleProvider(), cfg)
		if err != nil {
			return nil, err
		}
		deps.Notifier = notices
		logx.Info("  ✅ Console notices configured")
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown NOTIFX_PROVIDER %q (use 'ses', 'console' or 'none')", cfg.Notifx.Provider)
	}

	// 4. Metrics
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metricsx.New(c.Registry)
	deps.Recorder = c.Metrics

	// 5. Modules
	c.IAM, err = iamcontainer.New(deps)
	if err != nil {
		return nil, err
	}

	logx.Info("✅ Application container initialized")
	return c, nil
}

func newNotices(provider notifx.EmailSender, cfg *config.Config) (*notifx.Notices, error) {
	return notifx.NewNotices(notifx.NewClient(provider), cfg.Notifx.FromAddress, cfg.Notifx.AppName)
}

// Cleanup releases the shared infrastructure.
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
