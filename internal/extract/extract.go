// Package extract parses listing candidates out of a loaded search results
// page and runs them through the relevance pipeline: recency gate, geo check,
// price floor, keyword filter, dedup, and notification fan-out.
package extract

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"avito_bot/internal/filter"
	"avito_bot/internal/model"
	"avito_bot/internal/storage"
)

// Selectors the target site renders its search results with. These must
// match the live markup and are not ours to redesign.
const (
	itemSelector        = `div[data-marker="item"]`
	dateSelector        = `p[data-marker="item-date"]`
	titleLinkSelector   = `a[itemprop="url"][data-marker="item-title"]`
	nameSelector        = `h3[itemprop="name"]`
	priceSelector       = `meta[itemprop="price"]`
	descriptionSelector = `meta[itemprop="description"]`

	itemIDAttr = "data-item-id"

	unknownAge = "unknown age"
)

// Notifier delivers a new-listing message to one chat.
type Notifier interface {
	SendListing(chatID int64, l model.Listing)
}

// Rules are the configured relevance criteria applied to every candidate.
type Rules struct {
	Keywords         []string
	NegativeKeywords []string
	PriceFloor       int
	GeoSlug          string
	FreshLabel       string
	BaseURL          string
}

// Extractor turns search-page HTML into filtered, deduplicated listings.
type Extractor struct {
	window   *storage.Window
	notifier Notifier
	rules    Rules
	log      *slog.Logger
}

// New creates an Extractor.
func New(window *storage.Window, notifier Notifier, rules Rules, log *slog.Logger) *Extractor {
	return &Extractor{window: window, notifier: notifier, rules: rules, log: log}
}

// Extract enumerates listing candidates in the page HTML, returns those that
// passed every filter, and notifies each subscriber once per newly seen
// listing. A malformed candidate is logged and skipped; it never aborts the
// cycle.
func (e *Extractor) Extract(html string, subscribers []int64) ([]model.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	candidates := doc.Find(itemSelector)
	e.log.Info("listing candidates found", "count", candidates.Length())

	var passed []model.Listing
	candidates.Each(func(_ int, s *goquery.Selection) {
		l, ok := e.processCandidate(s)
		if !ok {
			return
		}

		if e.window.Add(l) {
			e.log.Info("new listing", "id", l.ID, "name", l.Name, "price", l.Price)
			for _, chatID := range subscribers {
				e.notifier.SendListing(chatID, l)
			}
		} else {
			e.log.Debug("listing already seen", "id", l.ID)
		}
		passed = append(passed, l)
	})

	return passed, nil
}

// processCandidate extracts one candidate's fields and applies the filters in
// order. Every step can independently reject the candidate.
func (e *Extractor) processCandidate(s *goquery.Selection) (model.Listing, bool) {
	age := strings.TrimSpace(s.Find(dateSelector).First().Text())
	if age == "" {
		age = unknownAge
	}

	// Recency gate: only candidates posted within the configured window,
	// identified by the site's exact age phrase, go any further.
	if age != e.rules.FreshLabel {
		return model.Listing{}, false
	}

	href, ok := s.Find(titleLinkSelector).First().Attr("href")
	if !ok {
		e.log.Warn("candidate without title link, skipping")
		return model.Listing{}, false
	}
	url := e.rules.BaseURL + href

	if !filter.CheckGeo(url, e.rules.GeoSlug) {
		return model.Listing{}, false
	}

	id := strings.TrimSpace(s.AttrOr(itemIDAttr, ""))
	if id == "" {
		e.log.Warn("candidate without item id, skipping", "url", url)
		return model.Listing{}, false
	}

	name := strings.TrimSpace(s.Find(nameSelector).First().Text())

	priceRaw, ok := s.Find(priceSelector).First().Attr("content")
	if !ok {
		e.log.Warn("candidate without price, skipping", "id", id)
		return model.Listing{}, false
	}
	price, err := strconv.Atoi(strings.TrimSpace(priceRaw))
	if err != nil {
		e.log.Warn("unparseable price, skipping", "id", id, "price", priceRaw)
		return model.Listing{}, false
	}
	if price < e.rules.PriceFloor {
		return model.Listing{}, false
	}

	description, _ := s.Find(descriptionSelector).First().Attr("content")

	if !filter.Matches(name, description, e.rules.Keywords, e.rules.NegativeKeywords) {
		e.log.Debug("listing filtered out", "id", id, "name", name)
		return model.Listing{}, false
	}

	return model.Listing{
		ID:          id,
		Name:        name,
		Price:       price,
		Description: description,
		URL:         url,
		Age:         age,
	}, true
}
