package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/api/http/router"
	"github.com/imedbrahmi/hospital_backend/internal/app"
)

// Start builds the whole graph (infrastructure, services, event workers,
// routes) and blocks until a shutdown signal arrives.
func Start(cfg *config.Config, timeout time.Duration) error {
	fxApp := fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer registers the listener in its OnStart hook.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	)
	fxApp.Run()
	return fxApp.Err()
}
