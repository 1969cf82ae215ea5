package export

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const pdfTimeout = 30 * time.Second

// dataURL wraps html in a data URL. PathEscape keeps spaces as %20.
func dataURL(html string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(html)
}

// chromeBinaries are tried in order when looking for a browser to print with.
var chromeBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// pdfFooter numbers the pages; chrome substitutes the pageNumber and
// totalPages spans.
const pdfFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#666">` +
	`Pagina <span class="pageNumber"></span> din <span class="totalPages"></span></div>`

func findChrome() (string, error) {
	for _, name := range chromeBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no chromium or chrome binary on PATH", ErrPDFDependencyMissing)
}

// convertPDF prints the rendered list on A4 with headless chrome.
func convertPDF(ctx context.Context, html string) ([]byte, error) {
	browser, err := findChrome()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pdfTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browser),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var out []byte
	printPDF := chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			WithMarginTop(0.6).
			WithMarginBottom(0.8).
			WithMarginLeft(0.6).
			WithMarginRight(0.6).
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(pdfFooter).
			Do(ctx)
		out = data
		return err
	})
	if err := chromedp.Run(taskCtx, chromedp.Navigate(dataURL(html)), chromedp.WaitReady("body"), printPDF); err != nil {
		return nil, fmt.Errorf("print plant list: %w", err)
	}
	return out, nil
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitizeFilename creates a safe ASCII filename from a title, folding
// diacritics first so "Plante ușoare" becomes "plante-usoare".
func sanitizeFilename(title string) string {
	folded, _, err := transform.String(stripMarks, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}

	result := b.String()
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "plante"
	}
	return result
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
