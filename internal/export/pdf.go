package export

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/kopibot/kopi/internal/core"
)

// PDFExporter exports conversations to PDF format.
type PDFExporter struct{}

// Export writes the conversation as PDF.
func (e *PDFExporter) Export(conv *core.Conversation, messages []*core.Message, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, conv.Topic, "", "C", false)
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Conversation Information")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	shortID := conv.ID
	if len(shortID) > 8 {
		shortID = shortID[:8] + "..."
	}
	e.addMetadataRow(pdf, "ID:", shortID)
	e.addMetadataRow(pdf, "Topic:", conv.Topic)
	e.addMetadataRow(pdf, "Stance:", string(conv.Stance))
	e.addMetadataRow(pdf, "Created:", conv.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	pdf.Ln(5)

	// Transcript
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Transcript")
	pdf.Ln(8)

	if len(messages) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No messages recorded.")
		pdf.Ln(6)
	} else {
		for _, msg := range messages {
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}

			// Message header with colored background
			if msg.Role == core.RoleBot {
				pdf.SetFillColor(200, 255, 200) // Light green
			} else {
				pdf.SetFillColor(200, 230, 255) // Light blue
			}

			pdf.SetFont("Arial", "B", 10)
			header := roleLabel(msg.Role) + " (" + msg.CreatedAt.Format("3:04 PM") + ")"
			pdf.CellFormat(0, 7, header, "", 1, "", true, 0, "")

			pdf.SetFont("Arial", "", 9)
			pdf.SetFillColor(255, 255, 255)
			pdf.MultiCell(0, 5, e.sanitizeText(msg.Content), "", "", false)
			pdf.Ln(5)
		}
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from kopi", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

// Helper to add a metadata row
func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}

// Sanitize text for PDF (remove problematic characters)
func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf uses Windows-1252 encoding by default
	replacer := strings.NewReplacer(
		"‘", "'",
		"’", "'",
		"“", "\"",
		"”", "\"",
		"–", "-",
		"—", "--",
		"…", "...",
		"•", "*",
		" ", " ",
	)
	return replacer.Replace(text)
}
