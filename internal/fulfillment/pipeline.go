// Package fulfillment persists an order for a chosen caterer and triggers a
// confirmation notification. Persistence and notification form a two-phase
// contract with a non-transactional second phase: a persisted order is never
// rolled back because its confirmation message failed to send.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaicatering/kai/internal/model"
	"github.com/kaicatering/kai/internal/service"
)

// State is the terminal state of one order attempt.
type State string

// Order attempt states. Requested and Persisted are transient; the rest are
// terminal.
const (
	StateRequested     State = "requested"
	StatePersisted     State = "persisted"
	StateNotified      State = "notified"
	StateNotifyFailed  State = "notify_failed"
	StatePersistFailed State = "persist_failed"
)

// PlaceRequest carries everything needed to place one order.
type PlaceRequest struct {
	EventDetails map[string]any
	UserID       string
	CatererID    string
	PhoneNumber  string
}

// Outcome reports how an order attempt ended. Order is set whenever
// persistence succeeded, including the notify-failed case, so callers always
// learn the identifier of a committed order.
type Outcome struct {
	Order        *model.Order
	Notification model.NotificationAttempt
	State        State
}

// confirmationBody is the templated confirmation message, parameterized by
// the event name.
func confirmationBody(eventName string) string {
	return fmt.Sprintf("Sharp sharp! Your catering order for %s is confirmed with Kai. We’ll keep you posted! 🍖", eventName)
}

// Pipeline runs order attempts. It trusts that the caterer id was validated
// against the catalog upstream; membership is deliberately not re-checked
// here (see DESIGN.md).
type Pipeline struct {
	orders   service.OrderStore
	notifier service.Notifier
	logger   *slog.Logger
}

// NewPipeline creates an order fulfillment pipeline.
func NewPipeline(orders service.OrderStore, notifier service.Notifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{orders: orders, notifier: notifier, logger: logger}
}

// Place persists the order, then makes exactly one notification attempt.
//
// Persistence failure ends the attempt in StatePersistFailed with no
// notification side effect. Notification failure after successful persistence
// ends in StateNotifyFailed with the persisted order retained and returned:
// re-sending a confirmation is idempotent from the user's perspective,
// whereas re-writing the order would risk duplicates. Neither phase is
// retried internally.
func (p *Pipeline) Place(ctx context.Context, req PlaceRequest) (Outcome, error) {
	order := model.Order{
		UserID:       req.UserID,
		CatererID:    req.CatererID,
		EventDetails: req.EventDetails,
	}

	persisted, err := p.orders.CreateOrder(ctx, order)
	if err != nil {
		p.logger.Error("order persistence failed",
			"user_id", req.UserID,
			"caterer_id", req.CatererID,
			"error", err)
		return Outcome{State: StatePersistFailed}, fmt.Errorf("failed to persist order: %w", err)
	}

	attempt := model.NotificationAttempt{
		To:   req.PhoneNumber,
		Body: confirmationBody(persisted.EventName()),
	}

	if err := p.notifier.Send(ctx, attempt.To, attempt.Body); err != nil {
		attempt.Err = err
		p.logger.Warn("order persisted but confirmation failed",
			"order_id", persisted.ID,
			"error", err)
		return Outcome{State: StateNotifyFailed, Order: persisted, Notification: attempt},
			fmt.Errorf("order %s persisted but notification failed: %w", persisted.ID, err)
	}

	attempt.Sent = true
	p.logger.Info("order placed",
		"order_id", persisted.ID,
		"caterer_id", persisted.CatererID)
	return Outcome{State: StateNotified, Order: persisted, Notification: attempt}, nil
}
