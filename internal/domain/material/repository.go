package material

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecobuild/internal/database"
)

// Repository persists materials, their match records and deletion audit
// rows. Every method takes an optional unit of work: tx == nil runs on the
// base connection, tx != nil participates in the caller's transaction.
type Repository interface {
	UpsertNames(ctx context.Context, tx *gorm.DB, projectID int64, uploadID string, names []string) error
	FindByNames(ctx context.Context, tx *gorm.DB, projectID int64, names []string) ([]*Material, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, projectID int64, ids []int64) ([]*Material, error)
	FindUnmatchedByIDs(ctx context.Context, tx *gorm.DB, projectID int64, ids []int64) ([]*Material, error)
	ListByProject(ctx context.Context, projectID int64) ([]*Material, error)
	GetByID(ctx context.Context, projectID, id int64) (*Material, error)
	BulkApplyMatches(ctx context.Context, tx *gorm.DB, updated []*Material, matches []*Match) error
	CreateMatch(ctx context.Context, tx *gorm.DB, m *Match) error
	Delete(ctx context.Context, projectID, id, deletedBy int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// UpsertNames issues one batched upsert over the distinct name set.
// Set-on-insert: project, name, provenance, created_at. Always-set:
// updated_at. Re-ingesting an unchanged material is a timestamp refresh
// and nothing else.
func (r *repository) UpsertNames(ctx context.Context, tx *gorm.DB, projectID int64, uploadID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]*Material, 0, len(names))
	for _, name := range names {
		uid := uploadID
		rows = append(rows, &Material{
			ProjectID: projectID,
			Name:      name,
			UploadID:  &uid,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return database.Conn(ctx, r.db, tx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": now}),
		}).
		Create(&rows).Error
}

func (r *repository) FindByNames(ctx context.Context, tx *gorm.DB, projectID int64, names []string) ([]*Material, error) {
	var out []*Material
	err := database.Conn(ctx, r.db, tx).
		Where("project_id = ? AND name IN ?", projectID, names).
		Find(&out).Error
	return out, err
}

func (r *repository) FindByIDs(ctx context.Context, tx *gorm.DB, projectID int64, ids []int64) ([]*Material, error) {
	var out []*Material
	err := database.Conn(ctx, r.db, tx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Find(&out).Error
	return out, err
}

// FindUnmatchedByIDs returns only the materials among ids that carry no
// active match record. Keeps re-ingestion from re-matching.
func (r *repository) FindUnmatchedByIDs(ctx context.Context, tx *gorm.DB, projectID int64, ids []int64) ([]*Material, error) {
	var out []*Material
	err := database.Conn(ctx, r.db, tx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Where("id NOT IN (?)", database.Conn(ctx, r.db, tx).Model(&Match{}).Select("material_id")).
		Find(&out).Error
	return out, err
}

func (r *repository) ListByProject(ctx context.Context, projectID int64) ([]*Material, error) {
	var out []*Material
	err := r.db.WithContext(ctx).
		Preload("Match").
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) GetByID(ctx context.Context, projectID, id int64) (*Material, error) {
	var m Material
	err := r.db.WithContext(ctx).
		Preload("Match").
		Where("project_id = ? AND id = ?", projectID, id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMaterialNotFound
	}
	return &m, err
}

// BulkApplyMatches writes all accepted matches in two statements: one
// upsert carrying the updated impact columns for every material, one
// insert for the match rows. Write amplification stays O(1) in the batch
// size. Returns ErrMaterialNotFound via rows-affected when the update
// touched fewer materials than requested.
func (r *repository) BulkApplyMatches(ctx context.Context, tx *gorm.DB, updated []*Material, matches []*Match) error {
	if len(updated) == 0 {
		return nil
	}
	conn := database.Conn(ctx, r.db, tx)

	res := conn.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gwp", "ubp", "penre", "declared_unit", "density", "updated_at",
		}),
	}).Create(&updated)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < int64(len(updated)) {
		return ErrPartialBulkUpdate
	}

	if len(matches) == 0 {
		return nil
	}

	// Concurrent ingestions of the same project can race here; DoNothing
	// lets the first writer win, matching the last-write-wins policy
	// everywhere else in the pipeline.
	return conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "material_id"}},
		DoNothing: true,
	}).Create(&matches).Error
}

func (r *repository) CreateMatch(ctx context.Context, tx *gorm.DB, m *Match) error {
	err := database.Conn(ctx, r.db, tx).Create(m).Error
	if isUniqueViolation(err) {
		return ErrAlreadyMatched
	}
	return err
}

// Delete removes the material, its match record and writes the audit row,
// all in one transaction.
func (r *repository) Delete(ctx context.Context, projectID, id, deletedBy int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Material
		if err := tx.Where("project_id = ? AND id = ?", projectID, id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMaterialNotFound
			}
			return err
		}
		if err := tx.Where("material_id = ?", id).Delete(&Match{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}
		return tx.Create(&DeletionLog{
			ProjectID:    projectID,
			MaterialName: m.Name,
			DeletedBy:    deletedBy,
			DeletedAt:    time.Now(),
		}).Error
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
