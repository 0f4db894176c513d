package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SubmissionDocument holds the fields rendered into a review PDF.
type SubmissionDocument struct {
	ID             int64
	TeacherID      string
	Problem        string
	Language       string
	Infrastructure string
	Status         string
	DietOfficer    string
	Feedback       string
	RawMessage     string
	Strategy       string
	CreatedAt      string
}

// PDFExporter renders submission records for officer review archives.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces a single-submission PDF document.
func (e *PDFExporter) Render(doc SubmissionDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("SUBMISSION #%d", doc.ID), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	fields := []struct {
		label string
		value string
	}{
		{"Teacher", doc.TeacherID},
		{"Problem", doc.Problem},
		{"Language", doc.Language},
		{"Infrastructure", doc.Infrastructure},
		{"Status", doc.Status},
		{"Officer", doc.DietOfficer},
		{"Feedback", doc.Feedback},
		{"Submitted", doc.CreatedAt},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 7, field.label, "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(146, 7, field.value, "1", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	writeSection(pdf, "ORIGINAL MESSAGE", doc.RawMessage)
	writeSection(pdf, "GENERATED STRATEGY", doc.Strategy)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render submission pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, title, "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, body, "", "", false)
	pdf.Ln(4)
}
