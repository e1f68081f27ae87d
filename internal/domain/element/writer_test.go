package element

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"ecobuild/internal/domain/material"
	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

func setupTestWriter(t *testing.T) (*Writer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:element_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Element{}))
	return NewWriter(NewRepository(db), logger.NewNop()), db
}

func materialMap(names ...string) map[string]*material.Material {
	out := make(map[string]*material.Material, len(names))
	for i, n := range names {
		out[n] = &material.Material{ID: int64(i + 1), ProjectID: 1, Name: n}
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func TestWriteElementsResolvesDirectMaterials(t *testing.T) {
	w, db := setupTestWriter(t)
	ctx := context.Background()

	parsed := []ParsedElement{{
		ExternalID: "E1",
		Name:       "Wall",
		Type:       "Wall",
		Volume:     10,
		Materials:  []ParsedMaterialRef{{Name: "Concrete C30", Volume: 10}},
	}}

	count, err := w.WriteElements(ctx, nil, 1, "u1", parsed, materialMap("Concrete C30"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var e Element
	require.NoError(t, db.Where("project_id = ? AND guid = ?", 1, "E1").First(&e).Error)
	require.Len(t, e.Layers, 1)
	assert.Equal(t, "Concrete C30", e.Layers[0].MaterialName)
	assert.InDelta(t, 10, e.Layers[0].Volume, 1e-9)
	require.NotNil(t, e.Layers[0].MaterialID)
}

func TestWriteElementsEvenSplitForLayerGroups(t *testing.T) {
	w, db := setupTestWriter(t)

	parsed := []ParsedElement{{
		ExternalID: "E1",
		Volume:     30,
		LayerSets: []ParsedLayerGroup{{
			Layers: []ParsedLayer{
				{MaterialName: "Concrete C30"},
				{MaterialName: "Mineral wool"},
				{MaterialName: "Gypsum board", Volume: floatPtr(3)},
			},
		}},
	}}

	_, err := w.WriteElements(context.Background(), nil, 1, "u1", parsed,
		materialMap("Concrete C30", "Mineral wool", "Gypsum board"))
	require.NoError(t, err)

	var e Element
	require.NoError(t, db.Where("guid = ?", "E1").First(&e).Error)
	require.Len(t, e.Layers, 3)
	assert.InDelta(t, 10, e.Layers[0].Volume, 1e-9) // 30 / 3 layers
	assert.InDelta(t, 10, e.Layers[1].Volume, 1e-9)
	assert.InDelta(t, 3, e.Layers[2].Volume, 1e-9) // explicit volume wins
}

func TestWriteElementsDropsUnreconciledMaterial(t *testing.T) {
	w, db := setupTestWriter(t)

	parsed := []ParsedElement{{
		ExternalID: "E1",
		Volume:     10,
		Materials: []ParsedMaterialRef{
			{Name: "Concrete C30", Volume: 8},
			{Name: "Unknown material", Volume: 2},
		},
	}}

	count, err := w.WriteElements(context.Background(), nil, 1, "u1", parsed, materialMap("Concrete C30"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var e Element
	require.NoError(t, db.Where("guid = ?", "E1").First(&e).Error)
	require.Len(t, e.Layers, 1)
	assert.Equal(t, "Concrete C30", e.Layers[0].MaterialName)
}

func TestWriteElementsRejectsBadFractionSum(t *testing.T) {
	w, _ := setupTestWriter(t)

	parsed := []ParsedElement{{
		ExternalID: "E1",
		Volume:     10,
		LayerSets: []ParsedLayerGroup{{
			Layers: []ParsedLayer{
				{MaterialName: "Concrete C30", Fraction: floatPtr(0.6)},
				{MaterialName: "Mineral wool", Fraction: floatPtr(0.3)},
			},
		}},
	}}

	_, err := w.WriteElements(context.Background(), nil, 1, "u1", parsed,
		materialMap("Concrete C30", "Mineral wool"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.ErrorIs(t, err, ErrFractionSum)
}

func TestWriteElementsAcceptsFractionSumWithinTolerance(t *testing.T) {
	w, _ := setupTestWriter(t)

	parsed := []ParsedElement{{
		ExternalID: "E1",
		Volume:     10,
		LayerSets: []ParsedLayerGroup{{
			Layers: []ParsedLayer{
				{MaterialName: "Concrete C30", Fraction: floatPtr(0.60004)},
				{MaterialName: "Mineral wool", Fraction: floatPtr(0.4)},
			},
		}},
	}}

	_, err := w.WriteElements(context.Background(), nil, 1, "u1", parsed,
		materialMap("Concrete C30", "Mineral wool"))
	require.NoError(t, err)
}

func TestWriteElementsRejectsEmptyGUID(t *testing.T) {
	w, _ := setupTestWriter(t)

	_, err := w.WriteElements(context.Background(), nil, 1, "u1",
		[]ParsedElement{{ExternalID: ""}}, materialMap())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyGUID)
}

func TestWriteElementsIdempotentReingestion(t *testing.T) {
	w, db := setupTestWriter(t)
	ctx := context.Background()

	parsed := []ParsedElement{{
		ExternalID: "E1",
		Name:       "Wall v1",
		Volume:     10,
		Materials:  []ParsedMaterialRef{{Name: "Concrete C30", Volume: 10}},
	}}
	mats := materialMap("Concrete C30")

	_, err := w.WriteElements(ctx, nil, 1, "u1", parsed, mats)
	require.NoError(t, err)

	parsed[0].Name = "Wall v2"
	parsed[0].Volume = 12
	_, err = w.WriteElements(ctx, nil, 1, "u2", parsed, mats)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&Element{}).Where("project_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var e Element
	require.NoError(t, db.Where("guid = ?", "E1").First(&e).Error)
	assert.Equal(t, "Wall v2", e.Name)
	assert.InDelta(t, 12, e.Volume, 1e-9)
}

func TestWriteElementsBatchesLargeInput(t *testing.T) {
	w, db := setupTestWriter(t)

	parsed := make([]ParsedElement, 0, BatchSize+25)
	for i := 0; i < BatchSize+25; i++ {
		parsed = append(parsed, ParsedElement{
			ExternalID: fmt.Sprintf("E%03d", i),
			Volume:     1,
			Materials:  []ParsedMaterialRef{{Name: "Concrete C30", Volume: 1}},
		})
	}

	count, err := w.WriteElements(context.Background(), nil, 1, "u1", parsed, materialMap("Concrete C30"))
	require.NoError(t, err)
	assert.Equal(t, BatchSize+25, count)

	var stored int64
	require.NoError(t, db.Model(&Element{}).Count(&stored).Error)
	assert.Equal(t, int64(BatchSize+25), stored)
}
