package service

import (
	"context"
	"testing"
	"time"

	"washpoint/internal/database"
	"washpoint/internal/events"
	"washpoint/internal/models"
	"washpoint/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackerServiceForTest(store *memStore) (*TrackerService, *recordingBus, *recordingNotifier) {
	logger := zerolog.Nop()
	bus := &recordingBus{}
	notifier := &recordingNotifier{}
	sessions := repository.NewMemorySessionRepository(time.Minute)
	return NewTrackerService(store, bus, notifier, sessions, &logger), bus, notifier
}

func TestTrackerService_ToggleStage(t *testing.T) {
	store := &memStore{bookings: []models.Booking{
		seedBooking("b-1", models.StatusConfirmed, time.Now()),
	}}
	svc, bus, _ := newTrackerServiceForTest(store)
	ctx := context.Background()

	updated, err := svc.ToggleStage(ctx, "b-1", models.StagePrewash)
	require.NoError(t, err)
	assert.True(t, updated.CleaningStages.Done(models.StagePrewash))
	assert.Equal(t, 17, svc.Progress(updated))

	// Toggling again flips it back off.
	updated, err = svc.ToggleStage(ctx, "b-1", models.StagePrewash)
	require.NoError(t, err)
	assert.False(t, updated.CleaningStages.Done(models.StagePrewash))
	assert.Equal(t, 0, svc.Progress(updated))

	// Order independence: a later stage before an earlier one.
	updated, err = svc.ToggleStage(ctx, "b-1", models.StageDrying)
	require.NoError(t, err)
	assert.True(t, updated.CleaningStages.Done(models.StageDrying))
	assert.False(t, updated.CleaningStages.Done(models.StageMainWash))

	assert.Equal(t, 3, bus.typed(events.EventStageToggled))
	assert.Equal(t, 3, store.saves)
}

func TestTrackerService_ToggleStage_CompletionFiresOnce(t *testing.T) {
	store := &memStore{bookings: []models.Booking{
		seedBooking("b-1", models.StatusConfirmed, time.Now()),
	}}
	svc, bus, notifier := newTrackerServiceForTest(store)
	ctx := context.Background()

	for i, stage := range models.CleaningStages {
		updated, err := svc.ToggleStage(ctx, "b-1", stage.ID)
		require.NoError(t, err)

		if i < len(models.CleaningStages)-1 {
			assert.False(t, updated.CleaningStages.AllComplete())
			assert.Equal(t, 0, notifier.titled("Cleaning Completed"))
		}
	}

	// Completion fires on the sixth toggle, exactly once.
	assert.Equal(t, 1, notifier.titled("Cleaning Completed"))
	assert.Equal(t, 1, bus.typed(events.EventCleaningCompleted))
	require.NotEmpty(t, notifier.notes)
	assert.Equal(t, "Your car is ready for pickup.", notifier.notes[len(notifier.notes)-1].description)

	// Untoggle and re-toggle a stage: the record transitions into complete
	// again, so the notification fires again. But a toggle that keeps the map
	// complete does not exist by construction, and no repeat while complete.
	_, err := svc.ToggleStage(ctx, "b-1", models.StageRinse)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.titled("Cleaning Completed"))

	_, err = svc.ToggleStage(ctx, "b-1", models.StageRinse)
	require.NoError(t, err)
	assert.Equal(t, 2, notifier.titled("Cleaning Completed"))
}

func TestTrackerService_ToggleStage_Errors(t *testing.T) {
	store := &memStore{bookings: []models.Booking{
		seedBooking("b-pending", models.StatusPending, time.Now()),
		seedBooking("b-rejected", models.StatusRejected, time.Now()),
	}}
	svc, bus, _ := newTrackerServiceForTest(store)
	ctx := context.Background()

	t.Run("UnknownStage", func(t *testing.T) {
		_, err := svc.ToggleStage(ctx, "b-pending", "polishing")
		assert.ErrorIs(t, err, database.ErrUnknownStage)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.ToggleStage(ctx, "missing", models.StagePrewash)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("PendingBooking", func(t *testing.T) {
		_, err := svc.ToggleStage(ctx, "b-pending", models.StagePrewash)
		assert.ErrorIs(t, err, database.ErrNotConfirmed)
	})

	t.Run("RejectedBooking", func(t *testing.T) {
		_, err := svc.ToggleStage(ctx, "b-rejected", models.StagePrewash)
		assert.ErrorIs(t, err, database.ErrNotConfirmed)
	})

	assert.Equal(t, 0, store.saves)
	assert.Equal(t, 0, bus.typed(events.EventStageToggled))
}

func TestTrackerService_Lookup(t *testing.T) {
	store := &memStore{bookings: []models.Booking{
		seedBooking("b-confirmed", models.StatusConfirmed, time.Now()),
		seedBooking("b-pending", models.StatusPending, time.Now()),
	}}
	svc, _, _ := newTrackerServiceForTest(store)
	ctx := context.Background()

	t.Run("ConfirmedHit", func(t *testing.T) {
		got, err := svc.Lookup(ctx, "b-confirmed")
		require.NoError(t, err)
		assert.Equal(t, "b-confirmed", got.ID)
	})

	t.Run("PendingIsMiss", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "b-pending")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("UnknownIDIsMiss", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "nope")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestTrackerService_Track(t *testing.T) {
	store := &memStore{bookings: []models.Booking{
		seedBooking("b-confirmed", models.StatusConfirmed, time.Now()),
	}}
	logger := zerolog.Nop()
	sessions := repository.NewMemorySessionRepository(time.Minute)
	svc := NewTrackerService(store, &recordingBus{}, &recordingNotifier{}, sessions, &logger)
	ctx := context.Background()

	t.Run("HitSwitchesToManual", func(t *testing.T) {
		got, err := svc.Track(ctx, "sess-1", "b-confirmed")
		require.NoError(t, err)
		assert.Equal(t, "b-confirmed", got.ID)

		session, err := sessions.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, models.ModeManual, session.Mode)
		assert.Equal(t, "b-confirmed", session.BookingID)
	})

	t.Run("MissStaysSimulated", func(t *testing.T) {
		_, err := svc.Track(ctx, "sess-2", "missing")
		assert.ErrorIs(t, err, database.ErrNotFound)

		session, err := sessions.GetSession(ctx, "sess-2")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, models.ModeSimulated, session.Mode)
		assert.Empty(t, session.BookingID)
	})

	t.Run("Release", func(t *testing.T) {
		require.NoError(t, svc.Release(ctx, "sess-1"))
		session, err := sessions.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

func TestTrackerService_Track_RateLimited(t *testing.T) {
	store := &memStore{}
	logger := zerolog.Nop()
	sessions := repository.NewMemorySessionRepository(time.Minute)
	svc := NewTrackerService(store, &recordingBus{}, &recordingNotifier{}, sessions, &logger)
	ctx := context.Background()

	for i := 0; i < models.RateLimitAttempts; i++ {
		_, err := svc.Track(ctx, "sess-hot", "missing")
		assert.ErrorIs(t, err, database.ErrNotFound)
	}

	_, err := svc.Track(ctx, "sess-hot", "missing")
	assert.ErrorIs(t, err, database.ErrRateLimited)

	// A different session is unaffected.
	_, err = svc.Track(ctx, "sess-cold", "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestTrackerService_Progress(t *testing.T) {
	svc, _, _ := newTrackerServiceForTest(&memStore{})

	assert.Equal(t, 0, svc.Progress(nil))
	assert.Equal(t, 0, svc.Progress(&models.Booking{}))

	b := seedBooking("b-1", models.StatusConfirmed, time.Now())
	b.CleaningStages = models.StageMap{
		models.StagePrewash:  true,
		models.StageMainWash: true,
		models.StageRinse:    true,
	}
	assert.Equal(t, 50, svc.Progress(&b))
}
