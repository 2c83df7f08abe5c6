package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kaicatering/kai/internal/model"
)

// ListCaterers returns the full current catalog snapshot, ordered by name.
func (s *SQLiteStorage) ListCaterers(ctx context.Context) ([]model.Caterer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, cuisines, menu, rating FROM caterers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query caterers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	caterers := make([]model.Caterer, 0)
	for rows.Next() {
		var c model.Caterer
		var cuisines, menu string
		var rating sql.NullFloat64

		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &cuisines, &menu, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan caterer: %w", err)
		}
		if err := json.Unmarshal([]byte(cuisines), &c.Cuisines); err != nil {
			return nil, fmt.Errorf("caterer %s has corrupt cuisines: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(menu), &c.Menu); err != nil {
			return nil, fmt.Errorf("caterer %s has corrupt menu: %w", c.ID, err)
		}
		if rating.Valid {
			r := rating.Float64
			c.Rating = &r
		}
		caterers = append(caterers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate caterers: %w", err)
	}

	return caterers, nil
}

// SaveCaterers upserts catalog records in a single transaction.
func (s *SQLiteStorage) SaveCaterers(ctx context.Context, caterers []model.Caterer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range caterers {
		if err := caterers[i].Validate(); err != nil {
			return fmt.Errorf("caterer %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO caterers (id, name, location, cuisines, menu, rating)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			cuisines = excluded.cuisines,
			menu = excluded.menu,
			rating = excluded.rating`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range caterers {
		cuisines, err := json.Marshal(c.Cuisines)
		if err != nil {
			return fmt.Errorf("failed to serialize cuisines for %s: %w", c.ID, err)
		}
		menu, err := json.Marshal(c.Menu)
		if err != nil {
			return fmt.Errorf("failed to serialize menu for %s: %w", c.ID, err)
		}

		var rating any
		if c.Rating != nil {
			rating = *c.Rating
		}

		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Location, string(cuisines), string(menu), rating); err != nil {
			return fmt.Errorf("failed to save caterer %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit caterers: %w", err)
	}
	return nil
}
