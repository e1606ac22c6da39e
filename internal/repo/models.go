package repo

import (
	"time"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

// UserRef is the public slice of a user joined into other records.
type UserRef struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
}

func (r *UserRef) FullName() string {
	if r == nil {
		return ""
	}
	return r.FirstName + " " + r.LastName
}

type ClinicRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Email   string    `json:"email,omitempty"`
}

type User struct {
	ID               uuid.UUID      `json:"id"`
	FirstName        string         `json:"firstName"`
	LastName         string         `json:"lastName"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	CIN              string         `json:"cin,omitempty"`
	CINEncrypted     string         `json:"-"`
	DOB              string         `json:"dob,omitempty"`
	Gender           string         `json:"gender,omitempty"`
	PasswordHash     string         `json:"-"`
	Role             authorize.Role `json:"role"`
	ClinicID         *uuid.UUID     `json:"clinicId,omitempty"`
	DoctorDepartment string         `json:"doctorDepartment,omitempty"`
	AvatarKey        string         `json:"-"`
	AvatarURL        string         `json:"avatarUrl,omitempty"`
	IsActive         bool           `json:"isActive"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (u *User) Ref() *UserRef {
	return &UserRef{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		Department: u.DoctorDepartment,
	}
}

type Clinic struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Address            string     `json:"address"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	Services           []string   `json:"services"`
	ConsultationTariff float64    `json:"consultationTariff"`
	OwnerID            *uuid.UUID `json:"ownerId,omitempty"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	Admin *UserRef `json:"admin,omitempty"`
}

type Schedule struct {
	ID           uuid.UUID `json:"id"`
	DoctorID     uuid.UUID `json:"doctorId"`
	ClinicID     uuid.UUID `json:"clinicId"`
	DayOfWeek    string    `json:"dayOfWeek"`
	Date         string    `json:"date,omitempty"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	SlotDuration int       `json:"slotDuration"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Doctor *UserRef `json:"doctor,omitempty"`
}

type AppointmentStatus string

const (
	AppointmentPending  AppointmentStatus = "Pending"
	AppointmentAccepted AppointmentStatus = "Accepted"
	AppointmentRejected AppointmentStatus = "Rejected"
)

func (s AppointmentStatus) Valid() bool {
	return s == AppointmentPending || s == AppointmentAccepted || s == AppointmentRejected
}

// Blocking reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Blocking() bool {
	return s == AppointmentPending || s == AppointmentAccepted
}

type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	PatientID       uuid.UUID         `json:"patientId"`
	DoctorID        uuid.UUID         `json:"doctorId"`
	ClinicID        uuid.UUID         `json:"clinicId"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	CIN             string            `json:"cin,omitempty"`
	CINEncrypted    string            `json:"-"`
	DOB             string            `json:"dob,omitempty"`
	Gender          string            `json:"gender,omitempty"`
	Address         string            `json:"address,omitempty"`
	AppointmentDate string            `json:"appointmentDate"`
	AppointmentTime string            `json:"appointmentTime"`
	Department      string            `json:"department"`
	Status          AppointmentStatus `json:"status"`
	HasVisited      bool              `json:"hasVisited"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`

	Doctor *UserRef `json:"doctor,omitempty"`
}

type VitalSigns struct {
	BloodPressure string   `json:"bloodPressure,omitempty"`
	HeartRate     *float64 `json:"heartRate,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

type MedicalRecord struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patientId"`
	DoctorID      uuid.UUID  `json:"doctorId"`
	ClinicID      uuid.UUID  `json:"clinicId"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	VisitDate     string     `json:"visitDate"`
	Diagnosis     string     `json:"diagnosis"`
	Symptoms      string     `json:"symptoms,omitempty"`
	Examination   string     `json:"examination,omitempty"`
	Treatment     string     `json:"treatment,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	VitalSigns    VitalSigns `json:"vitalSigns"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Patient *UserRef `json:"patient,omitempty"`
	Doctor  *UserRef `json:"doctor,omitempty"`
}

type DocumentStatus string

const (
	DocumentPending DocumentStatus = "pending"
	DocumentReady   DocumentStatus = "ready"
	DocumentFailed  DocumentStatus = "failed"
)

// Document is the rendering state of a generated PDF.
// Document is the PDF state of a prescription or invoice. Revision grows
// each time the document is reset to pending; render results carry the
// revision they were built from.
type Document struct {
	Status   DocumentStatus `json:"pdfStatus"`
	Key      string         `json:"-"`
	Error    string         `json:"pdfError,omitempty"`
	Revision int64          `json:"-"`
}

type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

type Prescription struct {
	ID               uuid.UUID    `json:"id"`
	PatientID        uuid.UUID    `json:"patientId"`
	DoctorID         uuid.UUID    `json:"doctorId"`
	ClinicID         uuid.UUID    `json:"clinicId"`
	AppointmentID    *uuid.UUID   `json:"appointmentId,omitempty"`
	MedicalRecordID  *uuid.UUID   `json:"medicalRecordId,omitempty"`
	PrescriptionDate string       `json:"prescriptionDate"`
	Medications      []Medication `json:"medications"`
	Notes            string       `json:"notes,omitempty"`
	Document         Document     `json:"document"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`

	Patient *UserRef   `json:"patient,omitempty"`
	Doctor  *UserRef   `json:"doctor,omitempty"`
	Clinic  *ClinicRef `json:"clinic,omitempty"`
}

type InvoiceStatus string

const (
	InvoicePending       InvoiceStatus = "Pending"
	InvoicePartiallyPaid InvoiceStatus = "Partially Paid"
	InvoicePaid          InvoiceStatus = "Paid"
	InvoiceCancelled     InvoiceStatus = "Cancelled"
)

type PaymentMethod string

var PaymentMethods = []PaymentMethod{"Cash", "Credit Card", "Debit Card", "Bank Transfer", "Check", "Other"}

type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

type Payment struct {
	ID            uuid.UUID     `json:"id"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"paymentMethod"`
	PaidAt        time.Time     `json:"paymentDate"`
	TransactionID string        `json:"transactionId,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	RecordedBy    uuid.UUID     `json:"recordedBy"`
}

type Invoice struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	PatientID     uuid.UUID     `json:"patientId"`
	ClinicID      uuid.UUID     `json:"clinicId"`
	CreatedBy     uuid.UUID     `json:"createdBy"`
	AppointmentID *uuid.UUID    `json:"appointmentId,omitempty"`
	Items         []InvoiceItem `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	AmountPaid    float64       `json:"amountPaid"`
	Payments      []Payment     `json:"payments"`
	Status        InvoiceStatus `json:"status"`
	DueDate       string        `json:"dueDate,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Document      Document      `json:"document"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	Patient *UserRef   `json:"patient,omitempty"`
	Clinic  *ClinicRef `json:"clinic,omitempty"`
}

type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
