package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatererValidate(t *testing.T) {
	tests := []struct {
		name    string
		caterer Caterer
		wantErr bool
	}{
		{
			name:    "valid",
			caterer: Caterer{ID: "c1", Name: "Braai Bros", Location: "Soweto"},
		},
		{
			name:    "valid with menu",
			caterer: Caterer{ID: "c1", Name: "Braai Bros", Menu: Menu{Items: []MenuItem{{Name: "Chop", Price: 50}}}},
		},
		{
			name:    "missing id",
			caterer: Caterer{Name: "Braai Bros"},
			wantErr: true,
		},
		{
			name:    "missing name",
			caterer: Caterer{ID: "c1", Name: "  "},
			wantErr: true,
		},
		{
			name:    "negative price",
			caterer: Caterer{ID: "c1", Name: "Braai Bros", Menu: Menu{Items: []MenuItem{{Name: "Chop", Price: -1}}}},
			wantErr: true,
		},
		{
			name:    "non-finite price",
			caterer: Caterer{ID: "c1", Name: "Braai Bros", Menu: Menu{Items: []MenuItem{{Name: "Chop", Price: math.Inf(1)}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.caterer.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{
			name:  "valid",
			order: Order{UserID: "u1", CatererID: "c1", EventDetails: map[string]any{"event_name": "Party"}},
		},
		{
			name:    "missing user id",
			order:   Order{CatererID: "c1", EventDetails: map[string]any{"event_name": "Party"}},
			wantErr: true,
		},
		{
			name:    "missing caterer id",
			order:   Order{UserID: "u1", EventDetails: map[string]any{"event_name": "Party"}},
			wantErr: true,
		},
		{
			name:    "nil event details",
			order:   Order{UserID: "u1", CatererID: "c1"},
			wantErr: true,
		},
		{
			name:    "event name wrong type",
			order:   Order{UserID: "u1", CatererID: "c1", EventDetails: map[string]any{"event_name": 42}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderEventName(t *testing.T) {
	order := Order{EventDetails: map[string]any{"event_name": "Thandi's 30th"}}
	assert.Equal(t, "Thandi's 30th", order.EventName())

	assert.Empty(t, (&Order{}).EventName())
	assert.Empty(t, (&Order{EventDetails: map[string]any{"event_name": 7}}).EventName())
}
