package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"quick-quote/config"
	"quick-quote/logger"
	"quick-quote/models"
	"quick-quote/utils"
)

// QuoteFileName is the file name used for downloads and email attachments
const QuoteFileName = "carpet-cleaning-quote.pdf"

// PDFRenderer turns a quote document into PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, doc models.QuoteDocument) ([]byte, error)
}

// NewPDFRenderer picks the renderer named by cfg.PDFRenderer
func NewPDFRenderer(cfg *config.Config, logo *LogoSource) PDFRenderer {
	if cfg.PDFRenderer == config.RendererChrome {
		return NewChromePDFRenderer(cfg.ChromePath, logo)
	}
	return NewBasicPDFRenderer(logo)
}

// BasicPDFRenderer draws the quote with gofpdf tables. It needs no browser.
type BasicPDFRenderer struct {
	logo *LogoSource
}

var _ PDFRenderer = (*BasicPDFRenderer)(nil)

// NewBasicPDFRenderer creates a gofpdf renderer. logo may be nil.
func NewBasicPDFRenderer(logo *LogoSource) *BasicPDFRenderer {
	return &BasicPDFRenderer{logo: logo}
}

func (r *BasicPDFRenderer) Render(ctx context.Context, doc models.QuoteDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header band
	top := pdf.GetY()
	logo, err := r.logo.Bytes()
	if err != nil {
		logger.GetLogger().Warnw("⚠️  Render: logo unavailable, continuing without it", "error", err)
		logo = nil
	}
	textX := 10.0
	if logo != nil {
		opts := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo))
		pdf.ImageOptions("logo", 10, top, 25, 0, false, opts, 0, "")
		textX = 40
	}
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(textX, top, 200-textX, 15, "F")
	pdf.SetXY(textX+2, top+2)
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(150, 10, tr(doc.BusinessName))
	pdf.Ln(14)
	pdf.SetX(textX + 2)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(150, 6, "Quote generated "+doc.GeneratedAt.Format("January 2, 2006 3:04 PM"))
	pdf.SetY(top + 32)

	// Job summary
	sectionBand(pdf, "Job Details")
	pdf.SetFont("Arial", "", 10)
	for _, kv := range jobSummary(doc.Job) {
		pdf.Cell(60, 6, kv[0])
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(130, 6, tr(kv[1]))
		pdf.SetFont("Arial", "", 10)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Breakdown table
	sectionBand(pdf, "Cost Breakdown")
	tableHeader(pdf, "Item", "Cost")
	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Result.Breakdown {
		pdf.CellFormat(150, 7, tr(line.Item), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, utils.FormatUSD(line.Cost), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(150, 7, "Subtotal", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, utils.FormatUSD(doc.Result.Subtotal), "1", 1, "R", true, 0, "")
	pdf.Ln(4)

	if len(doc.Result.DiscountSummary) > 0 {
		sectionBand(pdf, "Discounts")
		tableHeader(pdf, "Discount", "Saving")
		pdf.SetFont("Arial", "", 10)
		for _, d := range doc.Result.DiscountSummary {
			pdf.CellFormat(150, 7, tr(d.Item), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, "-"+utils.FormatUSD(d.Saving), "1", 1, "R", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(150, 7, "Total Discount", "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 7, "-"+utils.FormatUSD(doc.Result.TotalDiscount), "1", 1, "R", true, 0, "")
		pdf.Ln(4)
	}

	// Final total band
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(220, 235, 250)
	pdf.CellFormat(150, 10, "Final Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 10, utils.FormatUSD(doc.Result.FinalTotal), "1", 1, "R", true, 0, "")
	pdf.Ln(6)

	if len(doc.Upsells) > 0 {
		sectionBand(pdf, "Offers")
		pdf.SetFont("Arial", "", 10)
		for _, u := range doc.Upsells {
			status := "Declined"
			if u.Accepted {
				status = "Accepted"
			}
			pdf.CellFormat(150, 7, tr(u.Title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, status, "1", 1, "C", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(doc.Notes) > 0 {
		sectionBand(pdf, "Notes")
		for _, n := range doc.Notes {
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(190, 6, tr(n.Title))
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 5, tr(n.Detail), "", "L", false)
			pdf.Ln(2)
		}
	}

	if len(doc.Tips) > 0 {
		sectionBand(pdf, "Care Tips")
		for _, t := range doc.Tips {
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(190, 6, tr(t.Title))
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 5, tr(t.Description), "", "L", false)
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	logger.GetLogger().Infow("✅ Render: basic PDF generated", "bytes", buf.Len())
	return buf.Bytes(), nil
}

func sectionBand(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(190, 8, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

func tableHeader(pdf *gofpdf.Fpdf, left, right string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(150, 8, left, "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, right, "1", 1, "R", true, 0, "")
	pdf.SetFillColor(245, 245, 245)
}

// jobSummary lists the job fields worth printing, skipping zero quantities
func jobSummary(job models.JobDetails) [][2]string {
	rows := [][2]string{
		{"Carpet area", fmt.Sprintf("%s sq ft", num(job.Sqft))},
		{"Client", strings.ReplaceAll(string(job.ClientType), "-", " ")},
		{"Floors", fmt.Sprintf("%d", job.Floors)},
	}
	add := func(label string, n float64, unit string) {
		if n > 0 {
			rows = append(rows, [2]string{label, strings.TrimSpace(num(n) + " " + unit)})
		}
	}
	add("Distance", job.Distance, "miles")
	add("Pet treatment", float64(job.PetTreatmentRooms), "rooms")
	add("Pet stain spots", float64(job.PetStainSpots), "")
	add("Stain guard", float64(job.StainGuardRooms), "rooms")
	add("Large items moved", float64(job.LargeItems), "")
	add("Small items moved", float64(job.SmallItems), "")
	add("Sofas", float64(job.Sofas), "")
	add("Love seats", float64(job.LoveSeats), "")
	add("Armchairs", float64(job.Armchairs), "")
	if len(job.AreaRugs) > 0 {
		total := 0.0
		for _, r := range job.AreaRugs {
			total += r.Sqft
		}
		rows = append(rows, [2]string{"Area rugs", fmt.Sprintf("%d (%s sq ft)", len(job.AreaRugs), num(total))})
	}
	if job.Membership != "" && job.Membership != models.MembershipNone {
		rows = append(rows, [2]string{"Membership", string(job.Membership)})
	}
	return rows
}
