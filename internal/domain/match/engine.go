package match

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"ecobuild/internal/catalog"
	"ecobuild/internal/domain/material"
	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

// ScoreThreshold is the minimum catalog confidence an automatic match
// needs to be recorded.
const ScoreThreshold = 0.9

// Engine reconciles project materials against the external material
// database. Only an exact case-sensitive name hit at or above the score
// threshold is accepted; everything else leaves the material unmatched.
type Engine struct {
	materials material.Repository
	search    catalog.Searcher
	log       *logger.Logger
}

func NewEngine(materials material.Repository, search catalog.Searcher, log *logger.Logger) *Engine {
	return &Engine{materials: materials, search: search, log: log}
}

// ApplyAutomaticMatches attempts a match for every still-unmatched
// material among materialIDs and applies all accepted ones in one bulk
// write. A catalog failure aborts with a typed external-service error so
// an enclosing ingestion transaction rolls back.
func (e *Engine) ApplyAutomaticMatches(ctx context.Context, tx *gorm.DB, projectID int64, materialIDs []int64) (int, error) {
	const op = "match.ApplyAutomaticMatches"

	if len(materialIDs) == 0 {
		return 0, nil
	}

	candidates, err := e.materials.FindUnmatchedByIDs(ctx, tx, projectID, materialIDs)
	if err != nil {
		return 0, apperrors.Database(op, "material", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	now := time.Now()
	updated := make([]*material.Material, 0, len(candidates))
	matches := make([]*material.Match, 0, len(candidates))

	for _, m := range candidates {
		entries, err := e.search.Search(ctx, m.Name)
		if err != nil {
			return 0, err
		}

		entry, found := exactMatch(m.Name, entries)
		if !found {
			continue
		}
		if entry.Score < ScoreThreshold {
			e.log.Warn("discarding low-confidence catalog match",
				"project_id", projectID, "name", m.Name,
				"external_id", entry.ID, "score", entry.Score)
			continue
		}

		m.GWP = &entry.ImpactFactors.GWP
		m.UBP = &entry.ImpactFactors.UBP
		m.PENRE = &entry.ImpactFactors.PENRE
		if entry.DeclaredUnit != "" {
			unit := entry.DeclaredUnit
			m.DeclaredUnit = &unit
		}
		if entry.Density != nil {
			m.Density = entry.Density
		}
		m.UpdatedAt = now
		updated = append(updated, m)

		matches = append(matches, &material.Match{
			MaterialID: m.ID,
			ExternalID: entry.ID,
			Score:      entry.Score,
			Auto:       true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if len(updated) == 0 {
		return 0, nil
	}

	if err := e.materials.BulkApplyMatches(ctx, tx, updated, matches); err != nil {
		if errors.Is(err, material.ErrPartialBulkUpdate) {
			return 0, apperrors.BusinessRule(op, "material", err)
		}
		return 0, apperrors.Database(op, "material", err)
	}

	e.log.Info("automatic matches applied",
		"project_id", projectID, "candidates", len(candidates), "matched", len(updated))
	return len(updated), nil
}

// exactMatch picks the first entry whose name equals the material name,
// case sensitively. No fuzzy fallback: a near-miss is no match.
func exactMatch(name string, entries []catalog.Entry) (catalog.Entry, bool) {
	for _, entry := range entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return catalog.Entry{}, false
}
