package project

import (
	"context"
	"strings"
	"time"

	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, name, description string) (*Project, error) {
	const op = "project.Create"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation(op, "project", ErrEmptyName)
	}

	now := time.Now()
	p := &Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Database(op, "project", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err == ErrProjectNotFound {
		return nil, apperrors.NotFound("project.Get", "project", err)
	}
	if err != nil {
		return nil, apperrors.Database("project.Get", "project", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Database("project.List", "project", err)
	}
	return rows, nil
}

// Delete cascades to everything the project owns.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "project.Delete"
	err := s.repo.Delete(ctx, id)
	if err == ErrProjectNotFound {
		return apperrors.NotFound(op, "project", err)
	}
	if err != nil {
		return apperrors.Database(op, "project", err)
	}
	s.log.Info("project deleted", "project_id", id)
	return nil
}
