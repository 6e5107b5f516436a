package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second

	// A4 with 12mm margins, in inches as Chrome expects.
	a4Width  = 210 / 25.4
	a4Height = 297 / 25.4
	margin   = 12 / 25.4
)

// ChromedpRenderer renders HTML to PDF using Chrome DevTools Protocol. One
// browser process is shared; every render gets its own tab.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer prepares the browser allocator. Chrome itself starts
// lazily on the first render.
func NewChromedpRenderer(cfg config.PDFConfig, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromedpRenderer{
		timeout:     timeout,
		logger:      logger.Named("pdf"),
		allocCtx:    allocCtx,
		allocCancel: cancel,
	}
}

// Render prints doc in a fresh tab, bounded by doc.Timeout or the
// renderer default.
func (r *ChromedpRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if strings.TrimSpace(doc.HTML) == "" {
		return nil, fail(FailureInput, "empty document", nil)
	}

	start := time.Now()
	timeout := doc.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	// Abort the tab when the request goes away.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	document := completeHTML(doc)
	params := printParams(doc)

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(tabCtx.Err(), context.DeadlineExceeded) {
			return nil, fail(FailureTimeout, fmt.Sprintf("print timed out after %v", timeout), err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, fail(FailureBrowser, "print", err)
	}
	if len(pdf) == 0 {
		return nil, fail(FailureBrowser, "browser returned an empty PDF", nil)
	}

	r.logger.Info("PDF rendered", zap.String("title", doc.Title), zap.Int("bytes", len(pdf)), zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

func printParams(doc Document) *page.PrintToPDFParams {
	p := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(a4Width).
		WithPaperHeight(a4Height).
		WithMarginTop(margin).
		WithMarginRight(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithLandscape(doc.Landscape)
	if doc.Footer != "" {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(doc.Footer)
	}
	return p
}

// completeHTML wraps fragments in a document; full documents pass through.
func completeHTML(doc Document) string {
	lower := strings.ToLower(doc.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return doc.HTML
	}

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if doc.Title != "" {
		buf.WriteString("<title>")
		buf.WriteString(html.EscapeString(doc.Title))
		buf.WriteString("</title>")
	}
	buf.WriteString("</head><body>")
	buf.WriteString(doc.HTML)
	buf.WriteString("</body></html>")
	return buf.String()
}

// Close shuts the browser down.
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
