package material

import "time"

// Material is a project-scoped material identified by (project_id, name).
// The unique index is the concurrency-safety mechanism: two ingestions
// racing on the same name converge to one row through the upsert path.
type Material struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectID    int64     `gorm:"column:project_id;not null;uniqueIndex:idx_materials_project_name" json:"project_id"`
	Name         string    `gorm:"column:name;not null;uniqueIndex:idx_materials_project_name" json:"name"`
	Manufacturer *string   `gorm:"column:manufacturer" json:"manufacturer,omitempty"`
	Category     *string   `gorm:"column:category" json:"category,omitempty"`
	Description  *string   `gorm:"column:description" json:"description,omitempty"`
	Density      *float64  `gorm:"column:density" json:"density,omitempty"` // kg/m3
	DeclaredUnit *string   `gorm:"column:declared_unit" json:"declared_unit,omitempty"`
	GWP          *float64  `gorm:"column:gwp" json:"gwp,omitempty"`
	UBP          *float64  `gorm:"column:ubp" json:"ubp,omitempty"`
	PENRE        *float64  `gorm:"column:penre" json:"penre,omitempty"`
	UploadID     *string   `gorm:"column:upload_id" json:"upload_id,omitempty"`
	Match        *Match    `gorm:"foreignKey:MaterialID" json:"match,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Material) TableName() string { return "materials" }

// Match links a material to one external-catalog entry. The unique index
// on material_id keeps it to at most one active match per material.
type Match struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MaterialID int64     `gorm:"column:material_id;not null;uniqueIndex:idx_matches_material" json:"material_id"`
	ExternalID string    `gorm:"column:external_id;not null" json:"external_id"`
	Score      float64   `gorm:"column:score;not null" json:"score"`
	Auto       bool      `gorm:"column:auto;not null" json:"auto"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Match) TableName() string { return "material_matches" }

// DeletionLog is the audit entry written when a user explicitly removes a
// material. Ingestion never deletes materials.
type DeletionLog struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectID    int64     `gorm:"column:project_id;not null" json:"project_id"`
	MaterialName string    `gorm:"column:material_name;not null" json:"material_name"`
	DeletedBy    int64     `gorm:"column:deleted_by" json:"deleted_by"`
	DeletedAt    time.Time `gorm:"column:deleted_at" json:"deleted_at"`
}

func (DeletionLog) TableName() string { return "material_deletions" }
