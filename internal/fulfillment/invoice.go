package fulfillment

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

// ReceiptLine is one invoice row, resolved from the cart at fulfillment
// time.
type ReceiptLine struct {
	Name       string
	Quantity   int64
	PriceCents domain.Cents
}

// Receipt is the transient order summary an invoice is rendered from. It
// exists only for the duration of render-and-email.
type Receipt struct {
	Customer   string
	Email      string
	Lines      []ReceiptLine
	TotalCents domain.Cents
}

// Renderer writes a receipt to a document file at path.
type Renderer interface {
	Render(receipt *Receipt, path string) error
}

// PDFRenderer lays out the invoice: centered header, customer block, one
// row per line item, grand total footer.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

func (r *PDFRenderer) Render(receipt *Receipt, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Customer: "+receipt.Customer, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Email: "+receipt.Email, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(100, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Quantity", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Price", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range receipt.Lines {
		pdf.CellFormat(100, 8, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, FormatUSD(line.PriceCents), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(130, 9, "Total:", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, FormatUSD(receipt.TotalCents), "T", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write invoice pdf: %w", err)
	}
	return nil
}

// FormatUSD renders cents as a dollar string, e.g. 1250 -> "$12.50".
func FormatUSD(cents domain.Cents) string {
	d := decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100))
	return "$" + d.StringFixed(2)
}
