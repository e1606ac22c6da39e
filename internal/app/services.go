package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/appointment"
	"github.com/imedbrahmi/hospital_backend/internal/service/auth"
	"github.com/imedbrahmi/hospital_backend/internal/service/clinic"
	"github.com/imedbrahmi/hospital_backend/internal/service/contact"
	"github.com/imedbrahmi/hospital_backend/internal/service/document"
	"github.com/imedbrahmi/hospital_backend/internal/service/invoice"
	"github.com/imedbrahmi/hospital_backend/internal/service/medicalrecord"
	"github.com/imedbrahmi/hospital_backend/internal/service/notification"
	"github.com/imedbrahmi/hospital_backend/internal/service/prescription"
	"github.com/imedbrahmi/hospital_backend/internal/service/scheduling"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
	"github.com/imedbrahmi/hospital_backend/pkg/crypto"
	"github.com/imedbrahmi/hospital_backend/pkg/email"
	pasetotoken "github.com/imedbrahmi/hospital_backend/pkg/paseto"
	s3pkg "github.com/imedbrahmi/hospital_backend/pkg/s3"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
	"github.com/imedbrahmi/hospital_backend/pkg/sms"
	"github.com/imedbrahmi/hospital_backend/pkg/util/password"
	"github.com/imedbrahmi/hospital_backend/pkg/util/phone"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideSessionStore,
		ProvideSessionResolver,
		ProvidePasswordHasher,
		ProvidePhoneNormalizer,
		ProvideFieldCipher,
		user.NewAccounts,
		ProvideUserService,
		ProvideAuthService,
		ProvideClinicService,
		ProvideSchedulingService,
		ProvideAppointmentService,
		ProvideMedicalRecordService,
		ProvideDocumentService,
		ProvidePrescriptionService,
		ProvideInvoiceService,
		ProvideContactService,
		ProvideNotifier,
	),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideSessionStore(rdb *redis.Client) *session.Store {
	return session.NewStore(rdb)
}

func ProvideSessionResolver(tokens *pasetotoken.Manager, store *session.Store, authSvc auth.Service, logger *slog.Logger) *session.Resolver {
	return session.NewResolver(tokens, store, authSvc.Lookup, logger)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvidePhoneNormalizer(cfg *config.Config) *phone.Normalizer {
	return phone.NewNormalizer(cfg.Server.PhoneRegion)
}

func ProvideFieldCipher(cfg *config.Config) (*crypto.FieldCipher, error) {
	return crypto.NewFieldCipher(cfg.Authentication.EncryptionKey)
}

func ProvideUserService(db *repo.Client, objects s3pkg.ObjectStore, accounts *user.Accounts, logger *slog.Logger) user.Service {
	return user.New(db.Users, db.Clinics, objects, accounts, logger)
}

func ProvideAuthService(
	db *repo.Client,
	accounts *user.Accounts,
	tokens *pasetotoken.Manager,
	sessions *session.Store,
	logger *slog.Logger,
) auth.Service {
	return auth.New(db.Users, accounts, tokens, sessions, logger)
}

func ProvideClinicService(db *repo.Client, accounts *user.Accounts) clinic.Service {
	return clinic.New(clinic.NewStore(db), accounts)
}

func ProvideSchedulingService(db *repo.Client, cfg *config.Config) scheduling.Service {
	return scheduling.New(db.Schedules, db.Appointments, db.Users, cfg.Scheduling)
}

func ProvideAppointmentService(
	db *repo.Client,
	slots scheduling.Service,
	cipher *crypto.FieldCipher,
	phones *phone.Normalizer,
	publisher events.Publisher,
	subjects events.Subjects,
	logger *slog.Logger,
) appointment.Service {
	return appointment.New(db.Appointments, db.Users, slots, cipher, phones, publisher, subjects, logger)
}

func ProvideMedicalRecordService(db *repo.Client) medicalrecord.Service {
	return medicalrecord.New(db.MedicalRecords, db.Users, db.Appointments)
}

func ProvideDocumentService(
	db *repo.Client,
	objects s3pkg.ObjectStore,
	publisher events.Publisher,
	subjects events.Subjects,
	cfg *config.Config,
	logger *slog.Logger,
) document.Service {
	return document.New(db.Prescriptions, db.Invoices, objects, publisher, subjects, cfg.Documents, logger)
}

func ProvidePrescriptionService(db *repo.Client, documents document.Service, logger *slog.Logger) prescription.Service {
	return prescription.New(db.Prescriptions, db.Users, db.MedicalRecords, db.Appointments, documents, logger)
}

func ProvideInvoiceService(db *repo.Client, documents document.Service, logger *slog.Logger) invoice.Service {
	return invoice.New(invoice.NewStore(db), db.Users, db.Appointments, documents, logger)
}

func ProvideContactService(
	db *repo.Client,
	phones *phone.Normalizer,
	publisher events.Publisher,
	subjects events.Subjects,
	logger *slog.Logger,
) contact.Service {
	return contact.New(db.Messages, phones, publisher, subjects, logger)
}

func ProvideNotifier(db *repo.Client, mail email.Sender, texts sms.Notifier, cfg *config.Config, logger *slog.Logger) *notification.Notifier {
	return notification.New(db.Appointments, db.Clinics, db.Messages, mail, email.FromCentralConfig(cfg.Email), texts, logger)
}
