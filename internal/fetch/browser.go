package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/coverscan/coverscan/internal/config"
)

// Browser renders pages in headless Chrome for sources that serve an empty
// shell to plain HTTP clients and hydrate the listing with JavaScript.
type Browser struct {
	timeout   time.Duration
	userAgent string
}

// NewBrowser builds a Browser from configuration.
func NewBrowser(cfg config.FetchConfig) *Browser {
	timeout := time.Duration(cfg.BrowserTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Browser{timeout: timeout, userAgent: defaultUserAgent}
}

// RenderedHTML navigates to url, waits for waitSelector to become visible,
// and returns the fully rendered document. Each call launches a fresh browser
// so a wedged page cannot poison later fetches; the scrape cadence is hours,
// not seconds, so the launch cost is irrelevant.
func (b *Browser) RenderedHTML(ctx context.Context, url, waitSelector string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.userAgent),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}
	// Give late XHR-driven rows a moment to land after the anchor renders.
	actions = append(actions, chromedp.Sleep(2*time.Second))

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", NewTransientError(eris.Wrapf(err, "fetch: browser timeout rendering %s", url), 0)
		}
		return "", eris.Wrapf(err, "fetch: render %s", url)
	}
	return html, nil
}
