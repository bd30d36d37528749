package captcha

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"avito_bot/internal/browser"
)

// Handler runs the full challenge sequence: dismissal, solve delegation,
// verification, and page reload. Expected failures (poll timeout, rejected
// verification) surface as errors for the caller to log; the next refresh
// cycle retries from scratch.
type Handler struct {
	solver   *Solver
	verifier *Verifier
	log      *slog.Logger
}

// NewHandler creates a Handler from its solver and verifier collaborators.
func NewHandler(solver *Solver, verifier *Verifier, log *slog.Logger) *Handler {
	return &Handler{solver: solver, verifier: verifier, log: log}
}

// Resolve attempts to clear a detected challenge. It returns true when the
// page ended up unblocked (either the dismissal alone cleared it, or the
// solved token verified and the page was reloaded).
func (h *Handler) Resolve(ctx context.Context, sess *browser.Session, userAgent string) (bool, error) {
	if DismissContinue(sess.Page) {
		if !Detect(sess.Page) {
			h.log.Info("challenge cleared by dismissal")
			return true, nil
		}
		h.log.Info("puzzle challenge remains after dismissal, requesting solve")
	}

	html, err := sess.Page.Content()
	if err != nil {
		return false, fmt.Errorf("read page content: %w", err)
	}

	captchaID, err := ExtractCaptchaID(html)
	if err != nil {
		return false, err
	}

	pageURL := sess.Page.URL()
	sol, err := h.solver.Solve(ctx, pageURL, captchaID)
	if err != nil {
		return false, fmt.Errorf("solve: %w", err)
	}

	vr := VerifyRequest{
		PageURL:     pageURL,
		UserAgent:   userAgent,
		ResultToken: resultToken(sess.Page),
		Cookies:     cookieHeader(sess.Context, pageURL),
	}
	if err := h.verifier.Verify(ctx, vr, sol); err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}

	// Brief randomized delay before reloading the now-unblocked page.
	time.Sleep(time.Duration(2000+rand.Intn(3000)) * time.Millisecond)

	if _, err := sess.Page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return false, fmt.Errorf("reload: %w", err)
	}

	h.log.Info("challenge verified, page reloaded")
	return true, nil
}

// resultToken reads the challenge widget's embedded result element; absence
// is not an error, the verification request just omits the header.
func resultToken(page playwright.Page) string {
	loc := page.Locator("#captcha-result").First()
	if visible, err := loc.IsVisible(); err != nil || !visible {
		return ""
	}
	text, err := loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(3000),
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func cookieHeader(ctx playwright.BrowserContext, pageURL string) string {
	cookies, err := ctx.Cookies(pageURL)
	if err != nil {
		return ""
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}
