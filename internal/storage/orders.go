package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/model"
)

// CreateOrder persists an order, assigning its identifier and creation
// timestamp, and returns the stored record. Orders are write-once.
func (s *SQLiteStorage) CreateOrder(ctx context.Context, order model.Order) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.ID = uuid.NewString()
	order.CreatedAt = s.now()

	details, err := json.Marshal(order.EventDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event details: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, caterer_id, event_details, created_at) VALUES (?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.CatererID, string(details), order.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	return &order, nil
}

// GetOrderByID fetches a persisted order.
func (s *SQLiteStorage) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var order model.Order
	var details, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, caterer_id, event_details, created_at FROM orders WHERE id = ?`, id).
		Scan(&order.ID, &order.UserID, &order.CatererID, &details, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := json.Unmarshal([]byte(details), &order.EventDetails); err != nil {
		return nil, fmt.Errorf("order %s has corrupt event details: %w", id, err)
	}
	order.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("order %s has corrupt timestamp: %w", id, err)
	}

	return &order, nil
}
