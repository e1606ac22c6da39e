package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/internal/api/http/middleware"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/appointment"
	"github.com/imedbrahmi/hospital_backend/internal/service/auth"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinic"
	"github.com/imedbrahmi/hospital_backend/internal/service/contact"
	"github.com/imedbrahmi/hospital_backend/internal/service/invoice"
	"github.com/imedbrahmi/hospital_backend/internal/service/medicalrecord"
	"github.com/imedbrahmi/hospital_backend/internal/service/prescription"
	"github.com/imedbrahmi/hospital_backend/internal/service/scheduling"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/observability"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg      *config.Config
	Redis    *redis.Client
	Auth     authorize.IAuthorization
	DB       *repo.Client
	Resolver *session.Resolver
	Metrics  *observability.Metrics `optional:"true"`

	AuthSvc          auth.Service
	UserSvc          user.Service
	ClinicSvc        clinic.Service
	SchedulingSvc    scheduling.Service
	AppointmentSvc   appointment.Service
	MedicalRecordSvc medicalrecord.Service
	PrescriptionSvc  prescription.Service
	InvoiceSvc       invoice.Service
	ContactSvc       contact.Service
}

type Router struct {
	p Params

	staff   fiber.Handler
	patient fiber.Handler
	mixed   fiber.Handler
}

func NewRouter(p Params) *Router {
	cookies := middleware.Cookies{
		Staff:   p.Cfg.Authentication.StaffCookie,
		Patient: p.Cfg.Authentication.PatientCookie,
	}
	return &Router{
		p:       p,
		staff:   middleware.Session(p.Resolver, cookies, session.Staff),
		patient: middleware.Session(p.Resolver, cookies, session.Patient),
		mixed:   middleware.Session(p.Resolver, cookies, session.Mixed),
	}
}

// can checks the role table for (resource, action); it runs after one of
// the session handlers.
func (r *Router) can(res authorize.Resource, act authorize.Action) fiber.Handler {
	return middleware.RequirePermission(r.p.Auth, res, act)
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc, r.p.Cfg)
	userH := handler.NewUserHandler(r.p.UserSvc)
	clinicH := handler.NewClinicHandler(r.p.ClinicSvc)
	scheduleH := handler.NewScheduleHandler(r.p.SchedulingSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	recordH := handler.NewMedicalRecordHandler(r.p.MedicalRecordSvc)
	prescriptionH := handler.NewPrescriptionHandler(r.p.PrescriptionSvc)
	invoiceH := handler.NewInvoiceHandler(r.p.InvoiceSvc, r.p.Metrics)
	contactH := handler.NewContactHandler(r.p.ContactSvc)

	api := app.Group("/api/v1")

	// 3. Delegate to sub-files
	r.registerUserRoutes(api, authH, userH)
	r.registerClinicRoutes(api, clinicH)
	r.registerScheduleRoutes(api, scheduleH)
	r.registerAppointmentRoutes(api, appointmentH)
	r.registerMedicalRecordRoutes(api, recordH)
	r.registerPrescriptionRoutes(api, prescriptionH)
	r.registerInvoiceRoutes(api, invoiceH)
	r.registerContactRoutes(api, contactH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if !authorize.IsPolicyHealthy() {
				return false
			}
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			return r.p.DB.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
