package model

import (
	"fmt"
	"strings"
	"time"
)

// Order is a persisted catering order. The store assigns ID and CreatedAt;
// orders are never mutated after creation.
type Order struct {
	CreatedAt    time.Time      `json:"createdAt"`
	EventDetails map[string]any `json:"eventDetails"`
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	CatererID    string         `json:"catererId"`
}

// EventName returns the event_name entry from the order's event details.
func (o *Order) EventName() string {
	if o.EventDetails == nil {
		return ""
	}
	name, _ := o.EventDetails["event_name"].(string)
	return name
}

// Validate checks the fields a caller must supply before persistence.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("order user id is required")
	}
	if strings.TrimSpace(o.CatererID) == "" {
		return fmt.Errorf("order caterer id is required")
	}
	if strings.TrimSpace(o.EventName()) == "" {
		return fmt.Errorf("order event_name is required")
	}
	return nil
}

// NotificationAttempt records the outcome of one outbound confirmation
// message. It is transient; only its outcome feeds into the fulfillment
// result.
type NotificationAttempt struct {
	Err  error
	To   string
	Body string
	Sent bool
}
