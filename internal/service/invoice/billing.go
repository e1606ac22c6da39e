package invoice

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
)

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Totals is the computed money side of an invoice.
type Totals struct {
	Items    []repo.InvoiceItem
	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64
}

// Compute validates the items and derives every line total, the subtotal
// and total = subtotal + tax - discount.
func Compute(items []repo.InvoiceItem, tax, discount float64) (*Totals, error) {
	if len(items) == 0 {
		return nil, ErrRequired
	}
	if tax < 0 || discount < 0 {
		return nil, ErrNegativeAdjust
	}

	out := &Totals{Items: make([]repo.InvoiceItem, len(items)), Tax: Round2(tax), Discount: Round2(discount)}
	var f apperr.Fields
	for i, it := range items {
		it.Description = strings.TrimSpace(it.Description)
		f.Length("Item description", it.Description, 3, 0)
		f.Check(it.Quantity >= 1, "Item quantity must be at least 1")
		f.Check(it.UnitPrice >= 0, "Item unit price cannot be negative")

		it.UnitPrice = Round2(it.UnitPrice)
		it.Total = Round2(float64(it.Quantity) * it.UnitPrice)
		out.Items[i] = it
		out.Subtotal += it.Total
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	out.Subtotal = Round2(out.Subtotal)
	out.Total = Round2(out.Subtotal + out.Tax - out.Discount)
	if out.Total < 0 {
		return nil, ErrNegativeTotal
	}
	return out, nil
}

// DeriveStatus returns the status implied by the amount paid. Cancelled is
// explicit and never left.
func DeriveStatus(current repo.InvoiceStatus, total, paid float64) repo.InvoiceStatus {
	switch {
	case current == repo.InvoiceCancelled:
		return repo.InvoiceCancelled
	case paid >= total:
		return repo.InvoicePaid
	case paid > 0:
		return repo.InvoicePartiallyPaid
	}
	return repo.InvoicePending
}

// Number formats INV-YYYY-MMDD-NNNN from the issue date and a sequence value.
func Number(at time.Time, seq int64) string {
	return fmt.Sprintf("INV-%04d-%02d%02d-%04d", at.Year(), int(at.Month()), at.Day(), seq)
}

func validMethod(m repo.PaymentMethod) bool {
	for _, v := range repo.PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

func validStatus(s repo.InvoiceStatus) bool {
	switch s {
	case repo.InvoicePending, repo.InvoicePartiallyPaid, repo.InvoicePaid, repo.InvoiceCancelled:
		return true
	}
	return false
}
