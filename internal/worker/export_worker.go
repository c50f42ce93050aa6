package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"washpoint/internal/database"
	"washpoint/internal/domain"
	"washpoint/internal/metrics"
	"washpoint/internal/models"

	"github.com/rs/zerolog"
)

// TaskSnapshot is the only task type today: rewrite the whole report from
// the current store contents.
const TaskSnapshot = "snapshot"

// exportPayload is persisted in ExportTask.Payload as JSON.
type exportPayload struct {
	Reason    string `json:"reason"`
	BookingID string `json:"booking_id,omitempty"`
}

// SnapshotWriter renders the booking collection to the export target.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, bookings []models.Booking) error
}

// ExportWorker consumes sync_queue tasks and regenerates the spreadsheet
// report. Tasks survive restarts in the DB queue; the channel is only a
// wake-up for the happy path, the poll loop is the source of truth.
type ExportWorker struct {
	db           *database.DB
	store        domain.Store
	writer       SnapshotWriter
	retryPolicy  RetryPolicy
	queue        chan models.ExportTask
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger
}

func NewExportWorker(db *database.DB, store domain.Store, writer SnapshotWriter, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	return &ExportWorker{
		db:           db,
		store:        store,
		writer:       writer,
		retryPolicy:  retry.withDefaults(),
		queue:        make(chan models.ExportTask, models.ExportQueueSize),
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       logger,
	}
}

// EnqueueSnapshot persists a snapshot task and wakes the worker. Safe to
// call from request paths: it never blocks on the worker.
func (w *ExportWorker) EnqueueSnapshot(ctx context.Context, reason, bookingID string) error {
	if reason == "" {
		return errors.New("export reason is required")
	}

	payloadBytes, err := json.Marshal(exportPayload{Reason: reason, BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.ExportTask{
		TaskType:  TaskSnapshot,
		BookingID: bookingID,
		Payload:   string(payloadBytes),
		Status:    "pending",
	}

	if err := w.db.CreateExportTask(ctx, &task); err != nil {
		return fmt.Errorf("persist export task: %w", err)
	}

	select {
	case w.queue <- task:
	default:
		// Очередь заполнена, задачу подберёт poll-цикл
		w.logger.Warn().Int64("task_id", task.ID).Msg("export queue full, task left for polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingExportTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending export tasks")
			w.sleep(ctx)
			continue
		}
		if len(tasks) == 0 {
			w.sleep(ctx)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *ExportWorker) tryLocalQueue() (models.ExportTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.ExportTask{}, false
	}
}

func (w *ExportWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case t := <-w.queue:
		// A task arrived while idling, put it back in front.
		w.processTask(ctx, &t)
	case <-time.After(w.pollInterval):
	}
}

func (w *ExportWorker) processTask(ctx context.Context, task *models.ExportTask) {
	if task.TaskType != TaskSnapshot {
		w.failTask(ctx, task, fmt.Errorf("unknown task type: %s", task.TaskType))
		return
	}

	if err := w.writeSnapshot(ctx); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark export task completed")
	}
	metrics.IncExportTask("completed")
}

func (w *ExportWorker) writeSnapshot(ctx context.Context) error {
	bookings, err := w.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	return w.writer.WriteSnapshot(ctx, bookings)
}

func (w *ExportWorker) retryOrFail(ctx context.Context, task *models.ExportTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, cause)
		return
	}

	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark export task retry")
	}
	metrics.IncExportTask("retry")
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Msg("export task will retry")
}

func (w *ExportWorker) failTask(ctx context.Context, task *models.ExportTask, cause error) {
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark export task failed")
	}
	metrics.IncExportTask("failed")
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Msg("export task failed permanently")
}
