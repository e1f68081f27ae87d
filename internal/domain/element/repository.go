package element

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecobuild/internal/database"
)

type Repository interface {
	UpsertBatch(ctx context.Context, tx *gorm.DB, elements []*Element) (int64, error)
	UpdateLayers(ctx context.Context, tx *gorm.DB, id int64, layers []MaterialLayer) error
	ListByProject(ctx context.Context, tx *gorm.DB, projectID int64) ([]*Element, error)
	GetByID(ctx context.Context, projectID, id int64) (*Element, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// UpsertBatch writes one batch keyed on (project_id, guid). First
// sighting keeps creation metadata and provenance; every sighting
// overwrites the model-derived columns, so a corrected re-ingestion is
// self-correcting rather than additive.
func (r *repository) UpsertBatch(ctx context.Context, tx *gorm.DB, elements []*Element) (int64, error) {
	if len(elements) == 0 {
		return 0, nil
	}
	res := database.Conn(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "guid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type_tag", "volume", "load_bearing", "is_external", "layers", "updated_at",
			}),
		}).
		Create(&elements)
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateLayers(ctx context.Context, tx *gorm.DB, id int64, layers []MaterialLayer) error {
	return database.Conn(ctx, r.db, tx).
		Model(&Element{}).
		Where("id = ?", id).
		Update("layers", layers).Error
}

func (r *repository) ListByProject(ctx context.Context, tx *gorm.DB, projectID int64) ([]*Element, error) {
	var out []*Element
	err := database.Conn(ctx, r.db, tx).
		Where("project_id = ?", projectID).
		Order("guid ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) GetByID(ctx context.Context, projectID, id int64) (*Element, error) {
	var e Element
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrElementNotFound
	}
	return &e, err
}
