// Package browser owns the Playwright browser lifecycle and the per-cycle
// session setup: each refresh cycle gets a fresh isolated context and page so
// proxy and user-agent rotation take effect per cycle, not per process.
package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Browser wraps a launched Chromium instance.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts Playwright and a Chromium browser.
func Launch(headless bool) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &Browser{pw: pw, browser: b}, nil
}

// Close shuts the browser and the Playwright driver down.
func (b *Browser) Close() error {
	if err := b.browser.Close(); err != nil {
		_ = b.pw.Stop()
		return fmt.Errorf("close browser: %w", err)
	}
	return b.pw.Stop()
}

// Session is one refresh cycle's isolated browsing context and page.
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page
}

// NewSession opens a fresh context and page with the given user agent,
// optional proxy, and viewport.
func (b *Browser) NewSession(userAgent string, proxy *playwright.Proxy, viewport playwright.Size) (*Session, error) {
	ctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Proxy:     proxy,
		Viewport:  &viewport,
	})
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return &Session{Context: ctx, Page: page}, nil
}

// Goto navigates the session's page and waits for basic document readiness.
// The returned response may be nil when navigation produced no HTTP response.
func (s *Session) Goto(url string) (playwright.Response, error) {
	return s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	})
}

// Close tears down the cycle's page and context.
func (s *Session) Close() {
	_ = s.Page.Close()
	_ = s.Context.Close()
}

// Viewports is the fixed set rotated across cycles.
var Viewports = []playwright.Size{
	{Width: 1920, Height: 1080},
	{Width: 1536, Height: 864},
	{Width: 1366, Height: 768},
}
