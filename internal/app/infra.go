package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/database"
	"github.com/imedbrahmi/hospital_backend/pkg/email"
	"github.com/imedbrahmi/hospital_backend/pkg/logs"
	"github.com/imedbrahmi/hospital_backend/pkg/observability"
	redispkg "github.com/imedbrahmi/hospital_backend/pkg/redis"
	s3pkg "github.com/imedbrahmi/hospital_backend/pkg/s3"
	"github.com/imedbrahmi/hospital_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideRepoClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideMetrics),
	fx.Provide(ProvideObjectStore),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
	fx.Provide(ProvideSubjects),
)

// startupTimeout bounds connection attempts made while the graph is built.
const startupTimeout = 15 * time.Second

func ProvideLogger(lc fx.Lifecycle, cfg *config.Config) *slog.Logger {
	logger, flush := logs.New(cfg)
	slog.SetDefault(logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			flush()
			return nil
		},
	})
	return logger
}

func ProvideRepoClient(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*repo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("closing main database pool")
			pool.Close()
			return nil
		},
	})
	return repo.NewClient(pool), nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	rdb, err := redispkg.NewRedisFromCentral(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.CasbinDatabase)
	if err != nil {
		return nil, err
	}

	opts := authorize.EnforcerOptions{DSN: database.NewDSN(cfg.CasbinDatabase)}
	if cfg.Authorization.PolicySyncEnabled {
		opts.Channel = cfg.Authorization.WatcherChannel
	}
	enforcer, cleanup, err := authorize.NewEnforcer(ctx, pool, opts)
	if err != nil {
		pool.Close()
		return nil, err
	}

	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		pool.Close()
		return nil, err
	}
	if cfg.Authorization.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, logger)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			pool.Close()
			return nil
		},
	})
	return auth, nil
}

func ProvideEmailClient(cfg *config.Config) (email.Sender, error) {
	c, err := email.NewFromCentral(cfg.Email)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func ProvideSMSClient(cfg *config.Config) (sms.Notifier, error) {
	c, err := sms.NewFromConfig(cfg.SMS)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func ProvideObjectStore(cfg *config.Config) (s3pkg.ObjectStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	return s3pkg.New(ctx, cfg.S3)
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*nats.Conn, error) {
	url := cfg.Nats.URL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("hospital"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvidePublisher(nc *nats.Conn) events.Publisher {
	return events.NewNATSPublisher(nc)
}

func ProvideSubjects(cfg *config.Config) events.Subjects {
	return events.Subjects{Prefix: cfg.Nats.SubjectPrefix}
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	logger.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideMetrics returns nil when telemetry is off; every Metrics method
// is nil-safe.
func ProvideMetrics(p *observability.Provider) (*observability.Metrics, error) {
	if p == nil || p.MeterProvider == nil {
		return nil, nil
	}
	return observability.NewMetrics(p.MeterProvider)
}
