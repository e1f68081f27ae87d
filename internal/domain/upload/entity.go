package upload

import "time"

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

// Upload is the audit trail of one ingestion attempt. It is created as
// Processing before the pipeline starts and moved to exactly one terminal
// state; a retry is a new Upload, never a reused one.
type Upload struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	ProjectID     int64     `gorm:"column:project_id;not null;index" json:"project_id"`
	Filename      string    `gorm:"column:filename" json:"filename"`
	Status        Status    `gorm:"column:status;not null" json:"status"`
	ElementCount  int       `gorm:"column:element_count" json:"element_count"`
	MaterialCount int       `gorm:"column:material_count" json:"material_count"`
	Error         string    `gorm:"column:error" json:"error,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Upload) TableName() string { return "uploads" }

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
