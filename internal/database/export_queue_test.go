package database

import (
	"context"
	"testing"
	"time"

	"washpoint/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportQueue_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.ExportTask{
		TaskType:  "snapshot",
		BookingID: "1754828000000-a1",
		Payload:   `{"booking_id":"1754828000000-a1"}`,
		Status:    "pending",
	}
	require.NoError(t, db.CreateExportTask(ctx, task))
	assert.NotZero(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "snapshot", pending[0].TaskType)

	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "completed", "", nil))

	pending, err = db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExportQueue_RetryScheduling(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.ExportTask{TaskType: "snapshot", Status: "pending"}
	require.NoError(t, db.CreateExportTask(ctx, task))

	// A retry scheduled in the future must not show up as pending yet.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "retry", "write failed", &future))

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "retry", "write failed", &past))

	pending, err = db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)
}

func TestExportQueue_FailedTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.ExportTask{TaskType: "snapshot", Status: "pending"}
	require.NoError(t, db.CreateExportTask(ctx, task))
	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "failed", "gave up", nil))

	failed, err := db.GetFailedExportTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "gave up", *failed[0].LastError)
	assert.NotNil(t, failed[0].ProcessedAt)
}
