// Package watcher drives the refresh loop: each cycle opens a fresh browser
// session with rotated proxy, user agent, URL, and viewport, loads the search
// page, clears a challenge if one is shown, and hands the HTML to the
// extractor.
package watcher

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"avito_bot/internal/browser"
	"avito_bot/internal/captcha"
	"avito_bot/internal/extract"
	"avito_bot/internal/storage"
)

// Watcher periodically reloads the configured search pages and pushes new
// listings to subscribers.
type Watcher struct {
	browser   *browser.Browser
	handler   *captcha.Handler
	extractor *extract.Extractor
	store     storage.Storage
	log       *slog.Logger

	urls       []string
	proxies    []string
	userAgents []string

	urlCursor      *browser.Cursor
	proxyCursor    *browser.Cursor
	uaCursor       *browser.Cursor
	viewportCursor *browser.Cursor

	tick time.Duration
}

// New creates a Watcher. The slices must be non-empty; rotation wraps around
// each of them independently.
func New(b *browser.Browser, handler *captcha.Handler, extractor *extract.Extractor, store storage.Storage, urls, proxies, userAgents []string, tick time.Duration, log *slog.Logger) *Watcher {
	return &Watcher{
		browser:        b,
		handler:        handler,
		extractor:      extractor,
		store:          store,
		log:            log,
		urls:           urls,
		proxies:        proxies,
		userAgents:     userAgents,
		urlCursor:      browser.NewCursor(len(urls)),
		proxyCursor:    browser.NewCursor(len(proxies)),
		uaCursor:       browser.NewCursor(len(userAgents)),
		viewportCursor: browser.NewCursor(len(browser.Viewports)),
		tick:           tick,
	}
}

// Run starts the refresh loop, blocking until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.cycle(ctx)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle performs one refresh. Whatever goes wrong inside a cycle is logged
// and abandoned; the loop itself must survive every cycle.
func (w *Watcher) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("refresh cycle panicked", "panic", r)
		}
	}()

	// Cursors advance every cycle, even when the cycle fails afterwards.
	url := w.urls[w.urlCursor.Next()]
	userAgent := w.userAgents[w.uaCursor.Next()]
	proxy := browser.ParseProxy(w.proxies[w.proxyCursor.Next()])
	viewport := browser.Viewports[w.viewportCursor.Next()]

	sess, err := w.browser.NewSession(userAgent, proxy, viewport)
	if err != nil {
		w.log.Error("open session", "error", err)
		return
	}
	defer sess.Close()

	w.log.Debug("loading search page", "url", url, "user_agent", userAgent)

	resp, err := sess.Goto(url)
	if err != nil {
		w.log.Error("load page", "url", url, "error", err)
		return
	}

	if captcha.Detect(sess.Page) {
		w.log.Warn("access challenge detected", "url", url)
		cleared, err := w.handler.Resolve(ctx, sess, userAgent)
		if err != nil {
			w.log.Error("resolve challenge", "url", url, "error", err)
			return
		}
		if !cleared {
			return
		}
	} else if resp == nil {
		w.log.Warn("navigation returned no response", "url", url)
		return
	} else if resp.Status() != http.StatusOK {
		w.log.Warn("unexpected page status", "url", url, "status", resp.Status())
		return
	}

	html, err := sess.Page.Content()
	if err != nil {
		w.log.Error("read page content", "url", url, "error", err)
		return
	}

	// The subscriber list is re-read each cycle so chats joining mid-run
	// start receiving notifications without a restart.
	subscribers, err := w.store.ListSubscribers(ctx)
	if err != nil {
		w.log.Error("list subscribers", "error", err)
		return
	}

	listings, err := w.extractor.Extract(html, subscribers)
	if err != nil {
		w.log.Error("extract listings", "url", url, "error", err)
		return
	}

	w.log.Info("refresh cycle done", "url", url, "passed", len(listings), "subscribers", len(subscribers))
}
