// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/kaicatering/kai/internal/model"
)

// CatalogReader provides point-in-time snapshots of the caterer catalog.
// A snapshot is read fresh per request and never cached by this core.
type CatalogReader interface {
	ListCaterers(ctx context.Context) ([]model.Caterer, error)
}

// CatalogWriter seeds and maintains catalog records. Only administrative
// tooling writes to the catalog; the request path is read-only.
type CatalogWriter interface {
	SaveCaterers(ctx context.Context, caterers []model.Caterer) error
}

// OrderStore persists orders. CreateOrder assigns the order's identifier and
// creation timestamp and returns the stored record.
type OrderStore interface {
	CreateOrder(ctx context.Context, order model.Order) (*model.Order, error)
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
}

// Notifier sends a single outbound confirmation message. Implementations make
// at most one delivery attempt per call; retry policy belongs to the caller.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// Storage is the full persistence contract implemented by the sqlite store.
type Storage interface {
	CatalogReader
	CatalogWriter
	OrderStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
