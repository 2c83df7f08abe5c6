package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestNewSQLiteStorageValidation(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestCaterersRoundtrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rating := 4.5
	caterers := []model.Caterer{
		{
			ID:       "c2",
			Name:     "Curry Corner",
			Location: "Johannesburg",
			Cuisines: []string{"indian"},
			Menu:     model.Menu{Items: []model.MenuItem{{Name: "Lamb Curry", Price: 95}}},
			Rating:   &rating,
		},
		{
			ID:       "c1",
			Name:     "Braai Bros",
			Location: "Soweto",
			Cuisines: []string{},
			Menu:     model.Menu{Items: []model.MenuItem{}},
		},
	}
	require.NoError(t, s.SaveCaterers(ctx, caterers))

	got, err := s.ListCaterers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Listing sorts by name.
	assert.Equal(t, "Braai Bros", got[0].Name)
	assert.Nil(t, got[0].Rating)
	assert.Empty(t, got[0].Cuisines)
	assert.Empty(t, got[0].Menu.Items)

	assert.Equal(t, "Curry Corner", got[1].Name)
	require.NotNil(t, got[1].Rating)
	assert.InDelta(t, 4.5, *got[1].Rating, 0.001)
	assert.Equal(t, []string{"indian"}, got[1].Cuisines)
	require.Len(t, got[1].Menu.Items, 1)
	assert.InDelta(t, 95.0, got[1].Menu.Items[0].Price, 0.001)
}

func TestSaveCaterersUpserts(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	caterer := model.Caterer{ID: "c1", Name: "Braai Bros", Location: "Soweto"}
	require.NoError(t, s.SaveCaterers(ctx, []model.Caterer{caterer}))

	caterer.Location = "Orlando West, Soweto"
	require.NoError(t, s.SaveCaterers(ctx, []model.Caterer{caterer}))

	got, err := s.ListCaterers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Orlando West, Soweto", got[0].Location)
}

func TestSaveCaterersRejectsInvalid(t *testing.T) {
	s := newTestStorage(t)

	err := s.SaveCaterers(context.Background(), []model.Caterer{{ID: "c1", Name: "", Location: "Soweto"}})
	assert.Error(t, err)
}

func TestListCaterersEmptyCatalog(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.ListCaterers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreateOrderAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStorage(t)
	fixed := time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	order := model.Order{
		UserID:    "u1",
		CatererID: "c1",
		EventDetails: map[string]any{
			"event_name": "Thandi's 30th",
			"guests":     float64(30),
		},
	}
	stored, err := s.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, fixed, stored.CreatedAt)

	got, err := s.GetOrderByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "c1", got.CatererID)
	assert.Equal(t, "Thandi's 30th", got.EventName())
	assert.True(t, got.CreatedAt.Equal(fixed))
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestStorage(t)

	tests := []struct {
		order model.Order
		name  string
	}{
		{
			name:  "missing user id",
			order: model.Order{CatererID: "c1", EventDetails: map[string]any{"event_name": "Party"}},
		},
		{
			name:  "missing caterer id",
			order: model.Order{UserID: "u1", EventDetails: map[string]any{"event_name": "Party"}},
		},
		{
			name:  "missing event name",
			order: model.Order{UserID: "u1", CatererID: "c1", EventDetails: map[string]any{"guests": 12}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateOrder(context.Background(), tt.order)
			assert.Error(t, err)
		})
	}
}

// Orders deliberately accept caterer ids that are not in the catalog; the
// catalog table is a snapshot source, not a foreign-key authority.
func TestCreateOrderWithUnknownCaterer(t *testing.T) {
	s := newTestStorage(t)

	stored, err := s.CreateOrder(context.Background(), model.Order{
		UserID:       "u1",
		CatererID:    "never-imported",
		EventDetails: map[string]any{"event_name": "Year-end function"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetOrderByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
