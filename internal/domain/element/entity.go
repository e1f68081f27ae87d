package element

import "time"

// IndicatorSet is the environmental indicator triple computed for one
// layer: GWP (kg CO2-eq), UBP eco-points and PENRE (MJ).
type IndicatorSet struct {
	GWP   float64 `json:"gwp"`
	UBP   float64 `json:"ubp"`
	PENRE float64 `json:"penre"`
}

// MaterialLayer is an embedded value inside an element, not an entity of
// its own. MaterialName is denormalized so the layer stays readable if
// the material row is deleted later.
type MaterialLayer struct {
	MaterialID   *int64        `json:"material_id,omitempty"`
	MaterialName string        `json:"material_name"`
	Volume       float64       `json:"volume"`
	Fraction     *float64      `json:"fraction,omitempty"`
	Thickness    *float64      `json:"thickness,omitempty"`
	Indicators   *IndicatorSet `json:"indicators,omitempty"`
}

// Element is one structural component of a building model. (project_id,
// guid) is unique: re-ingesting the same model updates in place instead
// of duplicating.
type Element struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectID   int64           `gorm:"column:project_id;not null;uniqueIndex:idx_elements_project_guid" json:"project_id"`
	GUID        string          `gorm:"column:guid;not null;uniqueIndex:idx_elements_project_guid" json:"guid"`
	Name        string          `gorm:"column:name" json:"name"`
	TypeTag     string          `gorm:"column:type_tag" json:"type_tag"`
	Volume      float64         `gorm:"column:volume" json:"volume"`
	LoadBearing bool            `gorm:"column:load_bearing" json:"load_bearing"`
	IsExternal  bool            `gorm:"column:is_external" json:"is_external"`
	Layers      []MaterialLayer `gorm:"column:layers;serializer:json" json:"layers"`
	UploadID    *string         `gorm:"column:upload_id" json:"upload_id,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Element) TableName() string { return "elements" }
