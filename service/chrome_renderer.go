package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"quick-quote/logger"
	"quick-quote/models"
	"quick-quote/utils"
)

//go:embed templates/quote.html
var templateFS embed.FS

var quoteTemplate = template.Must(template.New("quote.html").
	Funcs(template.FuncMap{"usd": utils.FormatUSD}).
	ParseFS(templateFS, "templates/quote.html"))

// renderTimeout bounds one browser print
const renderTimeout = 30 * time.Second

// detectChromePath detects the path to Chrome/Chromium executable
// Checks the configured path first, then common installation paths
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ChromePDFRenderer prints the HTML quote through headless Chrome
type ChromePDFRenderer struct {
	chromePath string
	logo       *LogoSource
}

var _ PDFRenderer = (*ChromePDFRenderer)(nil)

// NewChromePDFRenderer creates a chromedp renderer. logo may be nil.
func NewChromePDFRenderer(chromePath string, logo *LogoSource) *ChromePDFRenderer {
	return &ChromePDFRenderer{chromePath: chromePath, logo: logo}
}

// RenderQuoteHTML renders the quote page. Document text is HTML-escaped.
func RenderQuoteHTML(doc models.QuoteDocument, logoURL string) (string, error) {
	data := struct {
		models.QuoteDocument
		LogoURL    template.URL
		JobSummary [][2]string
	}{
		QuoteDocument: doc,
		LogoURL:       template.URL(logoURL),
		JobSummary:    jobSummary(doc.Job),
	}

	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (r *ChromePDFRenderer) Render(ctx context.Context, doc models.QuoteDocument) ([]byte, error) {
	logoURL, err := r.logo.DataURL()
	if err != nil {
		logger.GetLogger().Warnw("⚠️  Render: logo unavailable, continuing without it", "error", err)
		logoURL = ""
	}
	html, err := RenderQuoteHTML(doc, logoURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(r.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 = 8.27" x 11.69"
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	logger.GetLogger().Infow("✅ Render: chrome PDF generated", "bytes", len(pdfBuf))
	return pdfBuf, nil
}
