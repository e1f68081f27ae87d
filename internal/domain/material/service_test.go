package material

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

	"ecobuild/internal/catalog"
	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:material_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Material{}, &Match{}, &DeletionLog{}))
	return NewService(NewRepository(db), logger.NewNop()), db
}

func nameSet(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestReconcileNamesCreatesMissingMaterials(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	byName, err := svc.ReconcileNames(ctx, nil, 1, "upload-1", nameSet("Concrete C30", "Steel S235"))
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Concrete C30", byName["Concrete C30"].Name)
	assert.NotZero(t, byName["Concrete C30"].ID)
	assert.Equal(t, int64(1), byName["Steel S235"].ProjectID)
}

func TestReconcileNamesIsIdempotent(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	first, err := svc.ReconcileNames(ctx, nil, 1, "upload-1", nameSet("Concrete C30"))
	require.NoError(t, err)
	second, err := svc.ReconcileNames(ctx, nil, 1, "upload-2", nameSet("Concrete C30"))
	require.NoError(t, err)

	assert.Equal(t, first["Concrete C30"].ID, second["Concrete C30"].ID)

	var count int64
	require.NoError(t, db.Model(&Material{}).Where("project_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReconcileNamesScopedByProject(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	a, err := svc.ReconcileNames(ctx, nil, 1, "u", nameSet("Concrete C30"))
	require.NoError(t, err)
	b, err := svc.ReconcileNames(ctx, nil, 2, "u", nameSet("Concrete C30"))
	require.NoError(t, err)

	assert.NotEqual(t, a["Concrete C30"].ID, b["Concrete C30"].ID)
}

func TestReconcileNamesEmptySet(t *testing.T) {
	svc, _ := setupTestService(t)

	byName, err := svc.ReconcileNames(context.Background(), nil, 1, "u", nil)
	require.NoError(t, err)
	assert.Empty(t, byName)
}

func TestDeleteWritesAuditEntry(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	byName, err := svc.ReconcileNames(ctx, nil, 1, "u", nameSet("Mineral wool"))
	require.NoError(t, err)
	id := byName["Mineral wool"].ID

	require.NoError(t, svc.Delete(ctx, 1, id, 42))

	_, err = svc.Get(ctx, 1, id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	var logs []DeletionLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "Mineral wool", logs[0].MaterialName)
	assert.Equal(t, int64(42), logs[0].DeletedBy)
}

func TestDeleteMissingMaterial(t *testing.T) {
	svc, _ := setupTestService(t)

	err := svc.Delete(context.Background(), 1, 999, 42)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestApplyManualMatch(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	byName, err := svc.ReconcileNames(ctx, nil, 1, "u", nameSet("Concrete C30"))
	require.NoError(t, err)
	id := byName["Concrete C30"].ID

	match, err := svc.ApplyManualMatch(ctx, 1, id, ManualMatchRequest{
		ExternalID:   "KBOB-1.001",
		Score:        0.75,
		DeclaredUnit: "kg",
		Factors:      catalog.ImpactFactors{GWP: 0.1, UBP: 120, PENRE: 1.2},
	})
	require.NoError(t, err)
	assert.False(t, match.Auto)
	assert.Equal(t, "KBOB-1.001", match.ExternalID)

	var m Material
	require.NoError(t, db.Where("id = ?", id).First(&m).Error)
	require.NotNil(t, m.GWP)
	assert.InDelta(t, 0.1, *m.GWP, 1e-9)

	// Second manual match on the same material must be refused.
	_, err = svc.ApplyManualMatch(ctx, 1, id, ManualMatchRequest{ExternalID: "KBOB-1.002"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestApplyManualMatchRejectsScoreOutOfRange(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	byName, err := svc.ReconcileNames(ctx, nil, 1, "u", nameSet("Concrete C30"))
	require.NoError(t, err)
	id := byName["Concrete C30"].ID

	for _, score := range []float64{-0.1, 1.1} {
		_, err = svc.ApplyManualMatch(ctx, 1, id, ManualMatchRequest{
			ExternalID: "KBOB-1.001",
			Score:      score,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		assert.ErrorIs(t, err, ErrScoreOutOfRange)
	}

	var count int64
	require.NoError(t, db.Model(&Match{}).Count(&count).Error)
	assert.Zero(t, count)
}
