package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
)

// Renderer lays out prescriptions and invoices as A4 PDFs.
type Renderer struct {
	Hospital string
	Currency string
	// Now stamps the creation date; tests pin it.
	Now func() time.Time
}

type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r Renderer) newPage(title string) *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle(title, true)
	pdf.SetCreator(r.Hospital, true)
	if r.Now != nil {
		pdf.SetCreationDate(r.Now())
	}
	pdf.AddPage()

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, p.tr(r.Hospital), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, p.tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return p
}

func (p *page) heading(s string) {
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(0, 7, p.tr(s), "B", 1, "L", false, 0, "")
	p.pdf.Ln(1)
}

func (p *page) line(s string) {
	p.pdf.SetFont("Helvetica", "", 11)
	p.pdf.MultiCell(0, 6, p.tr(s), "", "L", false)
}

func (p *page) gap() { p.pdf.Ln(4) }

func (p *page) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *page) clinic(c *repo.ClinicRef) {
	if c == nil {
		return
	}
	p.heading("Clinic")
	p.line(c.Name)
	if c.Address != "" {
		p.line(c.Address)
	}
	if c.Phone != "" || c.Email != "" {
		p.line(c.Phone + "  " + c.Email)
	}
	p.gap()
}

func (p *page) person(title string, u *repo.UserRef) {
	if u == nil {
		return
	}
	p.heading(title)
	p.line(u.FullName())
	if u.Email != "" {
		p.line("Email: " + u.Email)
	}
	if u.Phone != "" {
		p.line("Phone: " + u.Phone)
	}
	p.gap()
}

func (r Renderer) Prescription(rx *repo.Prescription) ([]byte, error) {
	p := r.newPage("Medical Prescription")
	p.line("Date: " + rx.PrescriptionDate)
	p.gap()
	p.clinic(rx.Clinic)
	p.person("Patient", rx.Patient)
	if rx.Doctor != nil {
		p.heading("Doctor")
		p.line("Dr. " + rx.Doctor.FullName())
		if rx.Doctor.Department != "" {
			p.line("Department: " + rx.Doctor.Department)
		}
		p.gap()
	}

	p.heading("Medications")
	for i, m := range rx.Medications {
		p.line(fmt.Sprintf("%d. %s - %s - %s", i+1, m.Name, m.Dosage, m.Frequency))
		if m.Duration != "" {
			p.line("    Duration: " + m.Duration)
		}
		if m.Instructions != "" {
			p.line("    Instructions: " + m.Instructions)
		}
	}
	if rx.Notes != "" {
		p.gap()
		p.heading("Notes")
		p.line(rx.Notes)
	}

	p.pdf.Ln(16)
	p.pdf.SetFont("Helvetica", "", 11)
	p.pdf.CellFormat(0, 6, "Doctor's signature: ____________________", "", 1, "R", false, 0, "")
	return p.bytes()
}

func (r Renderer) money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, r.Currency)
}

func (r Renderer) Invoice(inv *repo.Invoice) ([]byte, error) {
	p := r.newPage("Invoice " + inv.InvoiceNumber)
	p.line("Status: " + string(inv.Status))
	p.line("Issued: " + inv.CreatedAt.UTC().Format(repo.DateLayout))
	if inv.DueDate != "" {
		p.line("Due: " + inv.DueDate)
	}
	p.gap()
	p.clinic(inv.Clinic)
	p.person("Billed to", inv.Patient)

	pdf := p.pdf
	widths := []float64{84, 20, 35, 35}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Description", "Qty", "Unit price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range inv.Items {
		pdf.CellFormat(widths[0], 7, p.tr(it.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprint(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, r.money(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, r.money(it.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	total := func(label string, v float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, r.money(v), "", 1, "R", false, 0, "")
	}
	total("Subtotal", inv.Subtotal, false)
	total("Tax", inv.Tax, false)
	total("Discount", -inv.Discount, false)
	total("Total", inv.Total, true)
	total("Paid", inv.AmountPaid, false)
	total("Balance due", inv.Total-inv.AmountPaid, true)

	if len(inv.Payments) > 0 {
		p.gap()
		p.heading("Payments")
		for _, pm := range inv.Payments {
			p.line(fmt.Sprintf("%s  %s  %s", pm.PaidAt.UTC().Format(repo.DateLayout), pm.Method, r.money(pm.Amount)))
		}
	}
	if inv.Notes != "" {
		p.gap()
		p.heading("Notes")
		p.line(inv.Notes)
	}
	return p.bytes()
}
