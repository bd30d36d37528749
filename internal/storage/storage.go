// Package storage defines the persistence interface and its implementations,
// plus the in-memory dedup window for seen listings.
package storage

import "context"

// Storage is the interface for durable subscriber persistence.
type Storage interface {
	// AddSubscriber registers a chat for notifications. Registering an
	// already known chat is a no-op, not an error.
	AddSubscriber(ctx context.Context, chatID int64) error

	// ListSubscribers returns all registered chat IDs in no particular order.
	ListSubscribers(ctx context.Context) ([]int64, error)

	Close() error
}
