package project

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ecobuild/internal/domain/element"
	"ecobuild/internal/domain/material"
	"ecobuild/internal/domain/upload"
)

type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	return &p, err
}

func (r *repository) List(ctx context.Context) ([]*Project, error) {
	var out []*Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

// Delete removes the project and everything it owns. Match rows go first
// since they hang off materials.
func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProjectNotFound
		}

		matIDs := tx.Model(&material.Material{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("material_id IN (?)", matIDs).Delete(&material.Match{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&material.Material{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&element.Element{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&upload.Upload{}).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ?", id).Delete(&material.DeletionLog{}).Error
	})
}
