package service

import (
	"context"
	"time"

	"washpoint/internal/database"
	"washpoint/internal/domain"
	"washpoint/internal/events"
	"washpoint/internal/metrics"
	"washpoint/internal/models"

	"github.com/rs/zerolog"
)

// TrackerService owns manual-mode stage progress: an administrator flipping
// stage flags on a confirmed booking, and the public tracking page looking a
// booking up by id.
type TrackerService struct {
	store        domain.Store
	eventBus     domain.EventPublisher
	notifier     domain.Notifier
	sessions     domain.SessionRepository
	lookupLimit  int
	lookupWindow time.Duration
	logger       *zerolog.Logger
}

func NewTrackerService(store domain.Store, eventBus domain.EventPublisher, notifier domain.Notifier, sessions domain.SessionRepository, logger *zerolog.Logger) *TrackerService {
	return &TrackerService{
		store:        store,
		eventBus:     eventBus,
		notifier:     notifier,
		sessions:     sessions,
		lookupLimit:  models.RateLimitAttempts,
		lookupWindow: models.RateLimitWindow * time.Second,
		logger:       logger,
	}
}

// ToggleStage flips one stage flag on a confirmed booking and persists the
// whole collection back. Toggling is order-independent: a later stage may be
// marked done before an earlier one. When the flip moves the map into
// all-six-done the completion notification fires, exactly once per
// transition into that state.
func (s *TrackerService) ToggleStage(ctx context.Context, bookingID, stageID string) (*models.Booking, error) {
	if !models.ValidStageID(stageID) {
		return nil, database.ErrUnknownStage
	}

	bookings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range bookings {
		if bookings[i].ID == bookingID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, database.ErrNotFound
	}

	if bookings[idx].Status != models.StatusConfirmed {
		return nil, database.ErrNotConfirmed
	}

	if bookings[idx].CleaningStages == nil {
		bookings[idx].CleaningStages = models.StageMap{}
	}

	wasComplete := bookings[idx].CleaningStages.AllComplete()
	bookings[idx].CleaningStages[stageID] = !bookings[idx].CleaningStages[stageID]
	nowComplete := bookings[idx].CleaningStages.AllComplete()

	if err := s.store.SaveAll(ctx, bookings); err != nil {
		return nil, err
	}

	updated := bookings[idx].Clone()

	metrics.IncStageToggle(stageID)
	s.publishStageEvent(events.EventStageToggled, updated, stageID, nowComplete)

	if nowComplete && !wasComplete {
		metrics.IncCleaningCompleted()
		s.publishStageEvent(events.EventCleaningCompleted, updated, stageID, true)
		s.notifier.Notify("Cleaning Completed", "Your car is ready for pickup.")
		s.logger.Info().Str("booking_id", bookingID).Msg("cleaning completed")
	}

	return &updated, nil
}

// Lookup searches current confirmed bookings for a typed id. A miss returns
// ErrNotFound and the caller stays in simulated mode.
func (s *TrackerService) Lookup(ctx context.Context, bookingID string) (*models.Booking, error) {
	bookings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if bookings[i].ID == bookingID && bookings[i].Status == models.StatusConfirmed {
			b := bookings[i].Clone()
			return &b, nil
		}
	}

	return nil, database.ErrNotFound
}

// Track performs a lookup on behalf of a tracking session and records the
// outcome: a hit switches the session into manual read-view for that
// booking, a miss leaves it in simulated mode. Lookup attempts are rate
// limited per session.
func (s *TrackerService) Track(ctx context.Context, sessionID, bookingID string) (*models.Booking, error) {
	if s.sessions != nil {
		allowed, err := s.sessions.CheckRateLimit(ctx, "lookup:"+sessionID, s.lookupLimit, s.lookupWindow)
		if err != nil {
			s.logger.Warn().Err(err).Msg("lookup rate limit check failed")
		} else if !allowed {
			return nil, database.ErrRateLimited
		}
	}

	booking, err := s.Lookup(ctx, bookingID)
	if err != nil {
		s.saveSession(ctx, &models.TrackingSession{SessionID: sessionID, Mode: models.ModeSimulated})
		return nil, err
	}

	s.saveSession(ctx, &models.TrackingSession{
		SessionID: sessionID,
		Mode:      models.ModeManual,
		BookingID: booking.ID,
	})
	return booking, nil
}

// Release drops a session back into simulated mode, e.g. on view teardown.
func (s *TrackerService) Release(ctx context.Context, sessionID string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.ClearSession(ctx, sessionID)
}

// Progress derives the completion percentage from the stored stage flags.
func (s *TrackerService) Progress(booking *models.Booking) int {
	if booking == nil {
		return 0
	}
	return booking.CleaningStages.Progress()
}

func (s *TrackerService) saveSession(ctx context.Context, session *models.TrackingSession) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.SessionID).Msg("failed to save tracking session")
	}
}

func (s *TrackerService) publishStageEvent(eventType string, booking models.Booking, stageID string, completed bool) {
	if s.eventBus == nil {
		return
	}

	payload := events.StageEventPayload{
		BookingID: booking.ID,
		StageID:   stageID,
		Done:      booking.CleaningStages.Done(stageID),
		Progress:  booking.CleaningStages.Progress(),
		Completed: completed,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
