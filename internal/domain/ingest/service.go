package ingest

import (
	"context"

	"gorm.io/gorm"

	"ecobuild/internal/database"
	"ecobuild/internal/domain/element"
	"ecobuild/internal/domain/impact"
	"ecobuild/internal/domain/match"
	"ecobuild/internal/domain/material"
	"ecobuild/internal/domain/upload"
	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

// Result is the summary an ingestion reports back to the caller and onto
// the upload record.
type Result struct {
	ElementCount  int `json:"element_count"`
	MaterialCount int `json:"material_count"`
}

// Service coordinates the ingestion pipeline: reconcile materials, write
// elements, auto-match, then recompute layer indicator bundles, all
// inside one unit of work. Either every persisted side effect of an
// ingestion is visible or none is.
type Service struct {
	db        *gorm.DB
	materials *material.Service
	writer    *element.Writer
	matcher   *match.Engine
	impact    *impact.Aggregator
	uploads   *upload.Service
	log       *logger.Logger
}

func NewService(
	db *gorm.DB,
	materials *material.Service,
	writer *element.Writer,
	matcher *match.Engine,
	aggregator *impact.Aggregator,
	uploads *upload.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		db:        db,
		materials: materials,
		writer:    writer,
		matcher:   matcher,
		impact:    aggregator,
		uploads:   uploads,
		log:       log,
	}
}

// Ingest runs one full ingestion attempt: creates the upload record,
// processes the element list transactionally, and writes the terminal
// status. The terminal write happens outside the transaction so a failed
// attempt still surfaces as Failed after the rollback.
func (s *Service) Ingest(ctx context.Context, projectID int64, filename string, elements []element.ParsedElement) (*upload.Upload, error) {
	u, err := s.uploads.Start(ctx, projectID, filename)
	if err != nil {
		return nil, err
	}

	res, err := s.ProcessIngestion(ctx, nil, projectID, u.ID, elements)
	if err != nil {
		s.log.Error("ingestion failed",
			"project_id", projectID, "upload_id", u.ID, "error", err)
		if failed, ferr := s.uploads.MarkFailed(ctx, u.ID, err); ferr == nil {
			u = failed
		}
		return u, err
	}

	return s.uploads.MarkCompleted(ctx, u.ID, res.ElementCount, res.MaterialCount)
}

// ProcessIngestion runs the pipeline steps. tx == nil opens a new
// transaction; a non-nil tx joins the caller's, so the whole method can
// run as a sub-step of a larger unit of work without double-wrapping.
func (s *Service) ProcessIngestion(ctx context.Context, tx *gorm.DB, projectID int64, uploadID string, elements []element.ParsedElement) (Result, error) {
	const op = "ingest.ProcessIngestion"

	if len(elements) == 0 {
		return Result{}, apperrors.Validation(op, "element", ErrNoElements)
	}
	for i := range elements {
		if elements[i].ExternalID == "" {
			return Result{}, apperrors.Validation(op, "element", element.ErrEmptyGUID)
		}
	}

	var result Result
	err := database.WithinTransaction(ctx, s.db, tx, func(utx *gorm.DB) error {
		names := collectNames(elements)

		byName, err := s.materials.ReconcileNames(ctx, utx, projectID, uploadID, names)
		if err != nil {
			return err
		}

		elementCount, err := s.writer.WriteElements(ctx, utx, projectID, uploadID, elements, byName)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(byName))
		for _, m := range byName {
			ids = append(ids, m.ID)
		}
		if _, err := s.matcher.ApplyAutomaticMatches(ctx, utx, projectID, ids); err != nil {
			return err
		}

		if err := s.impact.RecomputeLayerBundles(ctx, utx, projectID); err != nil {
			return err
		}

		result = Result{ElementCount: elementCount, MaterialCount: len(byName)}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("ingestion processed",
		"project_id", projectID, "upload_id", uploadID,
		"elements", result.ElementCount, "materials", result.MaterialCount)
	return result, nil
}

// ApplyAutomaticMatches exposes the match phase standalone, in its own
// unit of work, for re-running matching without a new model upload.
func (s *Service) ApplyAutomaticMatches(ctx context.Context, projectID int64, materialIDs []int64) (int, error) {
	matched := 0
	err := database.WithinTransaction(ctx, s.db, nil, func(utx *gorm.DB) error {
		n, err := s.matcher.ApplyAutomaticMatches(ctx, utx, projectID, materialIDs)
		if err != nil {
			return err
		}
		matched = n
		return s.impact.RecomputeLayerBundles(ctx, utx, projectID)
	})
	return matched, err
}

// collectNames builds the distinct name set once, across both direct
// references and layered assemblies, so the reconciler writes each name
// at most once.
func collectNames(elements []element.ParsedElement) map[string]struct{} {
	names := make(map[string]struct{})
	for i := range elements {
		for _, name := range elements[i].MaterialNames() {
			names[name] = struct{}{}
		}
	}
	return names
}
