package material

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ecobuild/internal/catalog"
	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

// Service owns material reconciliation and the user-facing material
// operations (listing, explicit delete, manual matching).
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ReconcileNames maps every distinct material name in an ingestion to a
// persisted material, creating missing ones through a single batched
// upsert. The map is built from a re-read issued inside the same unit of
// work, so it reflects the upsert's writes.
//
// A name that fails to materialize (a race against a concurrent delete)
// is logged and left out of the map; downstream the element writer drops
// that layer rather than failing the batch.
func (s *Service) ReconcileNames(ctx context.Context, tx *gorm.DB, projectID int64, uploadID string, names map[string]struct{}) (map[string]*Material, error) {
	const op = "material.ReconcileNames"

	if len(names) == 0 {
		return map[string]*Material{}, nil
	}

	distinct := make([]string, 0, len(names))
	for name := range names {
		distinct = append(distinct, name)
	}

	if err := s.repo.UpsertNames(ctx, tx, projectID, uploadID, distinct); err != nil {
		return nil, apperrors.Database(op, "material", err)
	}

	rows, err := s.repo.FindByNames(ctx, tx, projectID, distinct)
	if err != nil {
		return nil, apperrors.Database(op, "material", err)
	}

	byName := make(map[string]*Material, len(rows))
	for _, m := range rows {
		byName[m.Name] = m
	}

	if len(byName) < len(distinct) {
		for _, name := range distinct {
			if _, ok := byName[name]; !ok {
				s.log.Warn("material did not materialize after upsert",
					"project_id", projectID, "name", name)
			}
		}
	}

	return byName, nil
}

func (s *Service) List(ctx context.Context, projectID int64) ([]*Material, error) {
	rows, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database("material.List", "material", err)
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, projectID, id int64) (*Material, error) {
	m, err := s.repo.GetByID(ctx, projectID, id)
	if err == ErrMaterialNotFound {
		return nil, apperrors.NotFound("material.Get", "material", err)
	}
	if err != nil {
		return nil, apperrors.Database("material.Get", "material", err)
	}
	return m, nil
}

// Delete is the explicit user action; it also writes the deletion audit
// entry. Ingestion never reaches this path.
func (s *Service) Delete(ctx context.Context, projectID, id, deletedBy int64) error {
	const op = "material.Delete"
	err := s.repo.Delete(ctx, projectID, id, deletedBy)
	if err == ErrMaterialNotFound {
		return apperrors.NotFound(op, "material", err)
	}
	if err != nil {
		return apperrors.Database(op, "material", err)
	}
	s.log.Info("material deleted", "project_id", projectID, "material_id", id, "deleted_by", deletedBy)
	return nil
}

// ManualMatchRequest carries the catalog entry a user picked from search
// results. No threshold applies: a human choice is accepted as-is.
type ManualMatchRequest struct {
	ExternalID   string                `json:"external_id" binding:"required"`
	Score        float64               `json:"score"`
	DeclaredUnit string                `json:"declared_unit"`
	Density      *float64              `json:"density,omitempty"`
	Factors      catalog.ImpactFactors `json:"impact_factors"`
}

func (s *Service) ApplyManualMatch(ctx context.Context, projectID, materialID int64, req ManualMatchRequest) (*Match, error) {
	const op = "material.ApplyManualMatch"

	if req.Score < 0 || req.Score > 1 {
		return nil, apperrors.Validation(op, "material_match", ErrScoreOutOfRange)
	}

	m, err := s.repo.GetByID(ctx, projectID, materialID)
	if err == ErrMaterialNotFound {
		return nil, apperrors.NotFound(op, "material", err)
	}
	if err != nil {
		return nil, apperrors.Database(op, "material", err)
	}
	if m.Match != nil {
		return nil, apperrors.BusinessRule(op, "material", ErrAlreadyMatched)
	}

	now := time.Now()
	match := &Match{
		MaterialID: materialID,
		ExternalID: req.ExternalID,
		Score:      req.Score,
		Auto:       false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateMatch(ctx, nil, match); err != nil {
		if err == ErrAlreadyMatched {
			return nil, apperrors.BusinessRule(op, "material", err)
		}
		return nil, apperrors.Database(op, "material_match", err)
	}

	m.GWP = &req.Factors.GWP
	m.UBP = &req.Factors.UBP
	m.PENRE = &req.Factors.PENRE
	if req.DeclaredUnit != "" {
		m.DeclaredUnit = &req.DeclaredUnit
	}
	if req.Density != nil {
		m.Density = req.Density
	}
	m.UpdatedAt = now
	m.Match = nil // avoid re-saving the association
	if err := s.repo.BulkApplyMatches(ctx, nil, []*Material{m}, []*Match{}); err != nil {
		return nil, apperrors.Database(op, "material", err)
	}
	m.Match = match

	return match, nil
}
