// Package recommend turns a free-text request into a validated, catalog-
// consistent set of caterer recommendations.
package recommend

import (
	"log/slog"
	"math"
	"strings"

	"github.com/kaicatering/kai/internal/model"
)

// Validator enforces catalog-faithfulness on generation output. The backend
// is probabilistic and can fabricate ids, prices or whole caterers, so the
// trust boundary sits here: everything upstream is untrusted, everything
// downstream is catalog-safe.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a Validator.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// ValidateSet filters a recommendation set against the catalog snapshot used
// for this request. Candidates failing any check are dropped, never failing
// the whole request; relative order of survivors is preserved. Returns the
// filtered set and the number of dropped candidates.
func (v *Validator) ValidateSet(set model.RecommendationSet, snapshot []model.Caterer) (model.RecommendationSet, int) {
	ids := make(map[string]struct{}, len(snapshot))
	for _, c := range snapshot {
		ids[c.ID] = struct{}{}
	}

	kept := make([]model.Recommendation, 0, len(set.Caterers))
	dropped := 0

	for _, rec := range set.Caterers {
		if _, ok := ids[rec.ID]; rec.ID == "" || !ok {
			v.logger.Warn("catalog mismatch: dropping hallucinated candidate",
				"id", rec.ID,
				"name", rec.Name)
			dropped++
			continue
		}
		if !v.shapeOK(rec) {
			v.logger.Warn("dropping malformed candidate",
				"id", rec.ID,
				"name", rec.Name)
			dropped++
			continue
		}
		kept = append(kept, normalize(rec))
	}

	return model.RecommendationSet{Caterers: kept}, dropped
}

// shapeOK applies the per-candidate shape checks. An empty cuisines list is
// legal; empty required strings and negative or non-finite prices are not.
func (v *Validator) shapeOK(rec model.Recommendation) bool {
	if strings.TrimSpace(rec.Name) == "" ||
		strings.TrimSpace(rec.Location) == "" ||
		strings.TrimSpace(rec.MatchReason) == "" {
		return false
	}
	for _, item := range rec.Menu.Items {
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return false
		}
	}
	return true
}

// normalize repairs tolerated irregularities: a non-finite rating becomes
// absent, nil slices become empty, blank cuisine entries are removed.
func normalize(rec model.Recommendation) model.Recommendation {
	if rec.Rating != nil && (math.IsNaN(*rec.Rating) || math.IsInf(*rec.Rating, 0)) {
		rec.Rating = nil
	}

	cuisines := make([]string, 0, len(rec.Cuisines))
	for _, cuisine := range rec.Cuisines {
		if strings.TrimSpace(cuisine) != "" {
			cuisines = append(cuisines, cuisine)
		}
	}
	rec.Cuisines = cuisines

	if rec.Menu.Items == nil {
		rec.Menu.Items = []model.MenuItem{}
	}
	return rec
}
