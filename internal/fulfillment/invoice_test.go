package fulfillment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFRenderer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")

	receipt := &Receipt{
		Customer: "rahul",
		Email:    "rahul@example.com",
		Lines: []ReceiptLine{
			{Name: "Widget", Quantity: 2, PriceCents: 2000},
			{Name: "Gizmo", Quantity: 1, PriceCents: 550},
		},
		TotalCents: 2550,
	}

	require.NoError(t, NewPDFRenderer().Render(receipt, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRenderer_EmptyReceipt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")

	receipt := &Receipt{Customer: "rahul", Email: "rahul@example.com"}
	require.NoError(t, NewPDFRenderer().Render(receipt, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
