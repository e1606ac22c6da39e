package repo

import (
	"context"

	"github.com/google/uuid"
)

type PrescriptionRepo struct {
	db DBTX
}

const prescriptionSelect = `
	SELECT r.id, r.patient_id, r.doctor_id, r.clinic_id, r.appointment_id, r.medical_record_id,
		to_char(r.prescription_date, 'YYYY-MM-DD'), r.medications, r.notes,
		r.pdf_status, r.pdf_key, r.pdf_error, r.pdf_revision, r.created_at, r.updated_at,
		p.first_name, p.last_name, p.email, p.phone,
		d.first_name, d.last_name, d.email, d.doctor_department,
		c.name, c.address, c.phone, c.email
	FROM prescriptions r
	JOIN users p ON p.id = r.patient_id
	JOIN users d ON d.id = r.doctor_id
	JOIN clinics c ON c.id = r.clinic_id`

func scanPrescription(row scanner) (*Prescription, error) {
	var r Prescription
	p, d, c := &UserRef{}, &UserRef{}, &ClinicRef{}
	err := row.Scan(&r.ID, &r.PatientID, &r.DoctorID, &r.ClinicID, &r.AppointmentID, &r.MedicalRecordID,
		&r.PrescriptionDate, &r.Medications, &r.Notes,
		&r.Document.Status, &r.Document.Key, &r.Document.Error, &r.Document.Revision, &r.CreatedAt, &r.UpdatedAt,
		&p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&d.FirstName, &d.LastName, &d.Email, &d.Department,
		&c.Name, &c.Address, &c.Phone, &c.Email)
	if err != nil {
		return nil, err
	}
	p.ID, d.ID, c.ID = r.PatientID, r.DoctorID, r.ClinicID
	r.Patient, r.Doctor, r.Clinic = p, d, c
	return &r, nil
}

// Create stores the prescription with a pending document.
func (r *PrescriptionRepo) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	day, err := dateParam(p.PrescriptionDate)
	if err != nil {
		return err
	}
	p.Document = Document{Status: DocumentPending}
	err = r.db.QueryRow(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, clinic_id, appointment_id, medical_record_id,
			prescription_date, medications, notes, pdf_status)
		VALUES ($1, $2, $3, $4, $5, $6, coalesce($7, CURRENT_DATE), $8, $9, 'pending')
		RETURNING to_char(prescription_date, 'YYYY-MM-DD'), created_at, updated_at`,
		p.ID, p.PatientID, p.DoctorID, p.ClinicID, p.AppointmentID, p.MedicalRecordID,
		day, p.Medications, p.Notes,
	).Scan(&p.PrescriptionDate, &p.CreatedAt, &p.UpdatedAt)
	return translate("create prescription", err)
}

func (r *PrescriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanPrescription(r.db.QueryRow(ctx, prescriptionSelect+` WHERE r.id = $1 AND r.deleted_at IS NULL`, id))
	return p, translate("get prescription", err)
}

func (r *PrescriptionRepo) List(ctx context.Context, f RecordFilter) ([]*Prescription, error) {
	w := &where{}
	f.apply(w, "r")
	rows, err := r.db.Query(ctx, prescriptionSelect+w.String()+` ORDER BY r.prescription_date DESC, r.created_at DESC`, w.args...)
	if err != nil {
		return nil, translate("list prescriptions", err)
	}
	defer rows.Close()

	out := []*Prescription{}
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, translate("list prescriptions", err)
		}
		out = append(out, p)
	}
	return out, translate("list prescriptions", rows.Err())
}

func (r *PrescriptionRepo) SetDocument(ctx context.Context, id uuid.UUID, d Document) error {
	return setDocument(ctx, r.db, "prescriptions", id, d)
}

func (r *PrescriptionRepo) ResetDocument(ctx context.Context, id uuid.UUID) (int64, error) {
	return resetDocument(ctx, r.db, "prescriptions", id)
}

// setDocument records a render outcome for revision d.Revision. A row whose
// revision has moved on is reported as ErrNotFound.
func setDocument(ctx context.Context, db DBTX, table string, id uuid.UUID, d Document) error {
	tag, err := db.Exec(ctx,
		`UPDATE `+table+` SET pdf_status = $2, pdf_key = $3, pdf_error = $4, updated_at = now()
		WHERE id = $1 AND pdf_revision = $5 AND deleted_at IS NULL`,
		id, string(d.Status), d.Key, d.Error, d.Revision)
	if err != nil {
		return translate("set document", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("set document", ErrNotFound)
	}
	return nil
}

// resetDocument marks the document pending under a new revision and
// returns it.
func resetDocument(ctx context.Context, db DBTX, table string, id uuid.UUID) (int64, error) {
	var rev int64
	err := db.QueryRow(ctx,
		`UPDATE `+table+` SET pdf_status = 'pending', pdf_key = '', pdf_error = '',
			pdf_revision = pdf_revision + 1, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING pdf_revision`, id).Scan(&rev)
	return rev, translate("reset document", err)
}
