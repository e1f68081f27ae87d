package upload

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

// Service tracks the lifecycle of ingestion attempts. Terminal writes run
// on the base connection on purpose: a rolled-back ingestion must still
// leave a Failed upload behind for visibility.
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Start records a new ingestion attempt in Processing state.
func (s *Service) Start(ctx context.Context, projectID int64, filename string) (*Upload, error) {
	const op = "upload.Start"

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, apperrors.Validation(op, "upload", ErrEmptyFilename)
	}

	now := time.Now()
	u := &Upload{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Filename:  filename,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperrors.Database(op, "upload", err)
	}
	return u, nil
}

// MarkCompleted attaches the summary counts and closes the record.
func (s *Service) MarkCompleted(ctx context.Context, id string, elementCount, materialCount int) (*Upload, error) {
	return s.finish(ctx, "upload.MarkCompleted", id, func(u *Upload) {
		u.Status = StatusCompleted
		u.ElementCount = elementCount
		u.MaterialCount = materialCount
	})
}

// MarkFailed closes the record with the failure message; counts stay at
// zero because nothing from the attempt was committed.
func (s *Service) MarkFailed(ctx context.Context, id string, cause error) (*Upload, error) {
	return s.finish(ctx, "upload.MarkFailed", id, func(u *Upload) {
		u.Status = StatusFailed
		if cause != nil {
			u.Error = cause.Error()
		}
	})
}

func (s *Service) finish(ctx context.Context, op, id string, mutate func(*Upload)) (*Upload, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err == ErrUploadNotFound {
		return nil, apperrors.NotFound(op, "upload", err)
	}
	if err != nil {
		return nil, apperrors.Database(op, "upload", err)
	}
	if u.Status.Terminal() {
		return nil, apperrors.BusinessRule(op, "upload", ErrTerminalState)
	}

	mutate(u)
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperrors.Database(op, "upload", err)
	}

	s.log.Info("upload finished",
		"upload_id", u.ID, "project_id", u.ProjectID, "status", u.Status,
		"elements", u.ElementCount, "materials", u.MaterialCount)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Upload, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err == ErrUploadNotFound {
		return nil, apperrors.NotFound("upload.Get", "upload", err)
	}
	if err != nil {
		return nil, apperrors.Database("upload.Get", "upload", err)
	}
	return u, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]*Upload, error) {
	rows, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database("upload.ListByProject", "upload", err)
	}
	return rows, nil
}
