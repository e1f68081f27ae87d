package upload

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:upload_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Upload{}))
	return NewService(NewRepository(db), logger.NewNop())
}

func TestStartCreatesProcessingUpload(t *testing.T) {
	svc := setupTestService(t)

	u, err := svc.Start(context.Background(), 1, "model.json")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, StatusProcessing, u.Status)
	assert.Equal(t, "model.json", u.Filename)
	assert.Zero(t, u.ElementCount)
}

func TestStartRejectsEmptyFilename(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Start(context.Background(), 1, "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestMarkCompletedSetsCounts(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	u, err := svc.Start(ctx, 1, "model.json")
	require.NoError(t, err)

	done, err := svc.MarkCompleted(ctx, u.ID, 12, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 12, done.ElementCount)
	assert.Equal(t, 5, done.MaterialCount)

	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
}

func TestMarkFailedRecordsCause(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	u, err := svc.Start(ctx, 1, "model.json")
	require.NoError(t, err)

	failed, err := svc.MarkFailed(ctx, u.ID, errors.New("catalog unreachable"))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "catalog unreachable", failed.Error)
	assert.Zero(t, failed.ElementCount)
}

func TestTerminalStateIsFinal(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	u, err := svc.Start(ctx, 1, "model.json")
	require.NoError(t, err)
	_, err = svc.MarkCompleted(ctx, u.ID, 1, 1)
	require.NoError(t, err)

	_, err = svc.MarkFailed(ctx, u.ID, errors.New("too late"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))

	_, err = svc.MarkCompleted(ctx, u.ID, 9, 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))

	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, 1, stored.ElementCount)
}

func TestFinishUnknownUpload(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.MarkCompleted(context.Background(), "no-such-id", 1, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListByProjectNewestFirst(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, 1, "a.json")
	require.NoError(t, err)
	_, err = svc.Start(ctx, 2, "other-project.json")
	require.NoError(t, err)
	second, err := svc.Start(ctx, 1, "b.json")
	require.NoError(t, err)

	rows, err := svc.ListByProject(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	ids := []string{rows[0].ID, rows[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
