// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Caterer represents a single caterer record from the catalog.
// The catalog is the source of truth; this core only ever reads it.
type Caterer struct {
	Rating   *float64 `json:"rating,omitempty"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Cuisines []string `json:"cuisines"`
	Menu     Menu     `json:"menu"`
}

// Menu holds a caterer's ordered list of offerings.
type Menu struct {
	Items []MenuItem `json:"items"`
}

// MenuItem is a single named offering with a non-negative price.
type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Validate checks the structural invariants of a catalog record.
func (c *Caterer) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("caterer id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("caterer %s: name is required", c.ID)
	}
	for i, item := range c.Menu.Items {
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return fmt.Errorf("caterer %s: menu item %d has invalid price", c.ID, i)
		}
	}
	return nil
}

// Recommendation is a caterer surfaced by the generation backend for one
// request, together with the generated reason it was considered a match.
// Until it has passed the catalog validator it must be treated as untrusted:
// the backend may invent ids, rewrite prices or fabricate whole caterers.
type Recommendation struct {
	Rating      *float64 `json:"rating,omitempty"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	MatchReason string   `json:"matchReason"`
	Cuisines    []string `json:"cuisines"`
	Menu        Menu     `json:"menu"`
}

// RecommendationSet is the ordered per-request result. It may be empty and is
// never persisted.
type RecommendationSet struct {
	Caterers []Recommendation `json:"caterers"`
}
