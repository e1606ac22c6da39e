package repo

import (
	"context"

	"github.com/google/uuid"
)

type MedicalRecordRepo struct {
	db DBTX
}

const medicalRecordSelect = `
	SELECT m.id, m.patient_id, m.doctor_id, m.clinic_id, m.appointment_id, to_char(m.visit_date, 'YYYY-MM-DD'),
		m.diagnosis, m.symptoms, m.examination, m.treatment, m.notes, m.vital_signs, m.created_at, m.updated_at,
		p.first_name, p.last_name, p.email, p.phone,
		d.first_name, d.last_name, d.email, d.doctor_department
	FROM medical_records m
	JOIN users p ON p.id = m.patient_id
	JOIN users d ON d.id = m.doctor_id`

func scanMedicalRecord(row scanner) (*MedicalRecord, error) {
	var m MedicalRecord
	p, d := &UserRef{}, &UserRef{}
	err := row.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.ClinicID, &m.AppointmentID, &m.VisitDate,
		&m.Diagnosis, &m.Symptoms, &m.Examination, &m.Treatment, &m.Notes, &m.VitalSigns, &m.CreatedAt, &m.UpdatedAt,
		&p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&d.FirstName, &d.LastName, &d.Email, &d.Department)
	if err != nil {
		return nil, err
	}
	p.ID, d.ID = m.PatientID, m.DoctorID
	m.Patient, m.Doctor = p, d
	return &m, nil
}

func (r *MedicalRecordRepo) Create(ctx context.Context, m *MedicalRecord) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	visit, err := dateParam(m.VisitDate)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, clinic_id, appointment_id, visit_date,
			diagnosis, symptoms, examination, treatment, notes, vital_signs)
		VALUES ($1, $2, $3, $4, $5, coalesce($6, CURRENT_DATE), $7, $8, $9, $10, $11, $12)
		RETURNING to_char(visit_date, 'YYYY-MM-DD'), created_at, updated_at`,
		m.ID, m.PatientID, m.DoctorID, m.ClinicID, m.AppointmentID, visit,
		m.Diagnosis, m.Symptoms, m.Examination, m.Treatment, m.Notes, m.VitalSigns,
	).Scan(&m.VisitDate, &m.CreatedAt, &m.UpdatedAt)
	return translate("create medical record", err)
}

func (r *MedicalRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	m, err := scanMedicalRecord(r.db.QueryRow(ctx, medicalRecordSelect+` WHERE m.id = $1 AND m.deleted_at IS NULL`, id))
	return m, translate("get medical record", err)
}

// RecordFilter selects clinical records. Nil fields do not filter.
type RecordFilter struct {
	ClinicID  *uuid.UUID
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

func (f RecordFilter) apply(w *where, alias string) {
	w.raw(alias + ".deleted_at IS NULL")
	w.uuid(alias+".clinic_id", f.ClinicID)
	w.uuid(alias+".doctor_id", f.DoctorID)
	w.uuid(alias+".patient_id", f.PatientID)
}

func (r *MedicalRecordRepo) List(ctx context.Context, f RecordFilter) ([]*MedicalRecord, error) {
	w := &where{}
	f.apply(w, "m")
	rows, err := r.db.Query(ctx, medicalRecordSelect+w.String()+` ORDER BY m.visit_date DESC, m.created_at DESC`, w.args...)
	if err != nil {
		return nil, translate("list medical records", err)
	}
	defer rows.Close()

	out := []*MedicalRecord{}
	for rows.Next() {
		m, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, translate("list medical records", err)
		}
		out = append(out, m)
	}
	return out, translate("list medical records", rows.Err())
}

func (r *MedicalRecordRepo) Update(ctx context.Context, m *MedicalRecord) error {
	visit, err := dateParam(m.VisitDate)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		UPDATE medical_records SET visit_date = coalesce($2, visit_date), diagnosis = $3, symptoms = $4,
			examination = $5, treatment = $6, notes = $7, vital_signs = $8, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		m.ID, visit, m.Diagnosis, m.Symptoms, m.Examination, m.Treatment, m.Notes, m.VitalSigns,
	).Scan(&m.UpdatedAt)
	return translate("update medical record", err)
}

func (r *MedicalRecordRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE medical_records SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return translate("delete medical record", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete medical record", ErrNotFound)
	}
	return nil
}
