package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
)

func TestComputeTotals(t *testing.T) {
	got, err := Compute([]repo.InvoiceItem{
		{Description: "Consultation", Quantity: 2, UnitPrice: 50},
		{Description: "Blood test", Quantity: 1, UnitPrice: 30},
	}, 10, 5)
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.Items[0].Total)
	assert.Equal(t, 30.0, got.Items[1].Total)
	assert.Equal(t, 130.0, got.Subtotal)
	assert.Equal(t, 135.0, got.Total)
}

func TestComputeRounds(t *testing.T) {
	got, err := Compute([]repo.InvoiceItem{{Description: "Syringes", Quantity: 3, UnitPrice: 0.1}}, 0.333, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got.Items[0].Total)
	assert.Equal(t, 0.63, got.Total)
}

func TestComputeRejects(t *testing.T) {
	item := repo.InvoiceItem{Description: "Consultation", Quantity: 1, UnitPrice: 20}

	tests := []struct {
		name     string
		items    []repo.InvoiceItem
		tax, dis float64
		want     error
	}{
		{"no items", nil, 0, 0, ErrRequired},
		{"negative total", []repo.InvoiceItem{item}, 0, 50, ErrNegativeTotal},
		{"negative tax", []repo.InvoiceItem{item}, -1, 0, ErrNegativeAdjust},
		{"zero quantity", []repo.InvoiceItem{{Description: "Consultation", UnitPrice: 20}}, 0, 0, nil},
		{"short description", []repo.InvoiceItem{{Description: "X", Quantity: 1}}, 0, 0, nil},
		{"negative price", []repo.InvoiceItem{{Description: "Refund", Quantity: 1, UnitPrice: -5}}, 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.items, tt.tax, tt.dis)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, repo.InvoicePending, DeriveStatus(repo.InvoicePending, 135, 0))
	assert.Equal(t, repo.InvoicePartiallyPaid, DeriveStatus(repo.InvoicePending, 135, 35))
	assert.Equal(t, repo.InvoicePaid, DeriveStatus(repo.InvoicePartiallyPaid, 135, 135))
	assert.Equal(t, repo.InvoicePaid, DeriveStatus(repo.InvoicePending, 135, 200))
	assert.Equal(t, repo.InvoiceCancelled, DeriveStatus(repo.InvoiceCancelled, 135, 135))
	assert.Equal(t, repo.InvoicePaid, DeriveStatus(repo.InvoicePending, 0, 0))
}

func TestNumber(t *testing.T) {
	at := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-2024-0307-0042", Number(at, 42))
	assert.Equal(t, "INV-2024-0307-12345", Number(at, 12345))
}
