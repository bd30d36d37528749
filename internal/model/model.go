// Package model defines the domain types used across the application.
package model

// Listing represents one classified-ad posting scraped from a search results page.
// A Listing is built fresh each refresh cycle and never mutated afterwards.
type Listing struct {
	ID          string
	Name        string
	Price       int
	Description string
	URL         string
	Age         string
}
