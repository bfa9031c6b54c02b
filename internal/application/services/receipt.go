package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type ReceiptService struct {
	invoiceRepo *postgres.InvoiceRepository
	logger      *slog.Logger
}

func NewReceiptService(invoiceRepo *postgres.InvoiceRepository, logger *slog.Logger) *ReceiptService {
	return &ReceiptService{invoiceRepo: invoiceRepo, logger: logger}
}

// Render produces a PDF receipt for the invoice and its tickets.
func (s *ReceiptService) Render(ctx context.Context, invoiceID string) ([]byte, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "METRO TICKET RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice   : "+invoice.ID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date      : "+invoice.PurchasedAt.Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued to : "+invoice.Email)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Tickets:")
	pdf.Ln(8)

	now := time.Now()
	pdf.SetFont("Helvetica", "", 11)
	for i, item := range invoice.Items {
		desc := fmt.Sprintf("%d) %s  %s -> %s  (%s)",
			i+1, item.TicketTypeCode, item.StartStation, item.EndStation,
			string(item.EffectiveStatus(now)))
		pdf.MultiCell(0, 6, desc, "", "", false)
		pdf.Cell(0, 6, "    Price: "+formatAmount(item.Price))
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatAmount(invoice.TotalPrice))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Each ticket admits one passenger. Activate a ticket before boarding; its validity window starts at activation.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// formatAmount prints a minor-unit amount with thousands separators.
func formatAmount(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	return string(out)
}
