// Package captcha handles the site's anti-bot challenge pages: detection,
// delegation to an external solving service, and replaying the solved token
// against the site's verification endpoint.
package captcha

import (
	"math/rand"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Known "IP restricted" page titles, checked in both languages the site serves.
var challengeTitles = []string{
	"Доступ ограничен: проблема с IP",
	"Access Denied: IP problem",
}

// Challenge widget selectors, checked in order; any visible match means a
// challenge is present.
var challengeSelectors = []string{
	".firewall-container",
	"#h-captcha",
	"#inner-captcha",
	"#geetest_captcha",
	".captcha",
}

// Detect reports whether the loaded page is a challenge page. Checks are
// independent and short-circuit on the first hit.
func Detect(page playwright.Page) bool {
	if title, err := page.Title(); err == nil {
		for _, t := range challengeTitles {
			if strings.Contains(title, t) {
				return true
			}
		}
	}

	for _, sel := range challengeSelectors {
		if visible, err := page.Locator(sel).First().IsVisible(); err == nil && visible {
			return true
		}
	}
	return false
}

// DismissContinue clicks the intermediate "Продолжить" control when present
// and pauses briefly. Clicking may clear the challenge entirely or reveal an
// interactive puzzle underneath, so callers must re-run Detect afterwards.
func DismissContinue(page playwright.Page) bool {
	btn := page.Locator("button", playwright.PageLocatorOptions{
		HasText: "Продолжить",
	}).First()

	if visible, err := btn.IsVisible(); err != nil || !visible {
		return false
	}
	if err := btn.Click(); err != nil {
		return false
	}

	time.Sleep(time.Duration(3000+rand.Intn(2000)) * time.Millisecond)
	return true
}
