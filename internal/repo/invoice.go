package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InvoiceRepo struct {
	db DBTX
}

const invoiceSelect = `
	SELECT i.id, i.invoice_number, i.patient_id, i.clinic_id, i.created_by, i.appointment_id,
		i.subtotal, i.tax, i.discount, i.total, i.amount_paid, i.status,
		coalesce(to_char(i.due_date, 'YYYY-MM-DD'), ''), i.notes,
		i.pdf_status, i.pdf_key, i.pdf_error, i.pdf_revision, i.created_at, i.updated_at,
		coalesce((
			SELECT jsonb_agg(jsonb_build_object(
				'description', it.description, 'quantity', it.quantity,
				'unitPrice', it.unit_price, 'total', it.total) ORDER BY it.position)
			FROM invoice_items it WHERE it.invoice_id = i.id), '[]'::jsonb),
		coalesce((
			SELECT jsonb_agg(jsonb_build_object(
				'id', pm.id, 'amount', pm.amount, 'paymentMethod', pm.method,
				'paymentDate', pm.paid_at, 'transactionId', pm.transaction_id,
				'notes', pm.notes, 'recordedBy', pm.recorded_by) ORDER BY pm.paid_at)
			FROM invoice_payments pm WHERE pm.invoice_id = i.id), '[]'::jsonb),
		p.first_name, p.last_name, p.email, p.phone,
		c.name, c.address, c.phone, c.email
	FROM invoices i
	JOIN users p ON p.id = i.patient_id
	JOIN clinics c ON c.id = i.clinic_id`

func scanInvoice(row scanner) (*Invoice, error) {
	var i Invoice
	p, c := &UserRef{}, &ClinicRef{}
	err := row.Scan(&i.ID, &i.InvoiceNumber, &i.PatientID, &i.ClinicID, &i.CreatedBy, &i.AppointmentID,
		&i.Subtotal, &i.Tax, &i.Discount, &i.Total, &i.AmountPaid, &i.Status,
		&i.DueDate, &i.Notes,
		&i.Document.Status, &i.Document.Key, &i.Document.Error, &i.Document.Revision, &i.CreatedAt, &i.UpdatedAt,
		&i.Items, &i.Payments,
		&p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&c.Name, &c.Address, &c.Phone, &c.Email)
	if err != nil {
		return nil, err
	}
	p.ID, c.ID = i.PatientID, i.ClinicID
	i.Patient, i.Clinic = p, c
	return &i, nil
}

// NextNumber draws the next value of invoice_number_seq.
func (r *InvoiceRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&n)
	return n, translate("next invoice number", err)
}

// Create inserts the invoice and its items. Run it inside WithTx.
func (r *InvoiceRepo) Create(ctx context.Context, inv *Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	due, err := dateParam(inv.DueDate)
	if err != nil {
		return err
	}
	inv.Document = Document{Status: DocumentPending}
	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (id, invoice_number, patient_id, clinic_id, created_by, appointment_id,
			subtotal, tax, discount, total, amount_paid, status, due_date, notes, pdf_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 'pending')
		RETURNING created_at, updated_at`,
		inv.ID, inv.InvoiceNumber, inv.PatientID, inv.ClinicID, inv.CreatedBy, inv.AppointmentID,
		inv.Subtotal, inv.Tax, inv.Discount, inv.Total, inv.AmountPaid, string(inv.Status), due, inv.Notes,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return translate("create invoice", err)
	}

	for pos, it := range inv.Items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			inv.ID, pos, it.Description, it.Quantity, it.UnitPrice, it.Total)
		if err != nil {
			return translate("create invoice item", err)
		}
	}
	if inv.Payments == nil {
		inv.Payments = []Payment{}
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1 AND i.deleted_at IS NULL`, id))
	return inv, translate("get invoice", err)
}

// GetForUpdate locks the invoice row for the rest of the transaction.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1 AND i.deleted_at IS NULL FOR UPDATE OF i`, id))
	return inv, translate("lock invoice", err)
}

type InvoiceFilter struct {
	ClinicID  *uuid.UUID
	PatientID *uuid.UUID
	Status    InvoiceStatus
}

func (r *InvoiceRepo) List(ctx context.Context, f InvoiceFilter) ([]*Invoice, error) {
	w := &where{}
	w.raw("i.deleted_at IS NULL")
	w.uuid("i.clinic_id", f.ClinicID)
	w.uuid("i.patient_id", f.PatientID)
	if f.Status != "" {
		w.add("i.status = ?", string(f.Status))
	}

	rows, err := r.db.Query(ctx, invoiceSelect+w.String()+` ORDER BY i.created_at DESC`, w.args...)
	if err != nil {
		return nil, translate("list invoices", err)
	}
	defer rows.Close()

	out := []*Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, translate("list invoices", err)
		}
		out = append(out, inv)
	}
	return out, translate("list invoices", rows.Err())
}

// AddPayment records p against the invoice. Run it inside WithTx together
// with SetPaymentState.
func (r *InvoiceRepo) AddPayment(ctx context.Context, invoiceID uuid.UUID, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoice_payments (id, invoice_id, amount, method, paid_at, transaction_id, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, invoiceID, p.Amount, string(p.Method), p.PaidAt, p.TransactionID, p.Notes, p.RecordedBy)
	return translate("add payment", err)
}

func (r *InvoiceRepo) SetPaymentState(ctx context.Context, id uuid.UUID, amountPaid float64, status InvoiceStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET amount_paid = $2, status = $3, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, amountPaid, string(status))
	if err != nil {
		return translate("set invoice status", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("set invoice status", ErrNotFound)
	}
	return nil
}

func (r *InvoiceRepo) SetDocument(ctx context.Context, id uuid.UUID, d Document) error {
	return setDocument(ctx, r.db, "invoices", id, d)
}

func (r *InvoiceRepo) ResetDocument(ctx context.Context, id uuid.UUID) (int64, error) {
	return resetDocument(ctx, r.db, "invoices", id)
}
