package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"washpoint/internal/database"
	"washpoint/internal/domain"
	"washpoint/internal/events"
	"washpoint/internal/metrics"
	"washpoint/internal/models"

	"github.com/rs/zerolog"
)

// ReviewService backs the admin dashboard: listing bookings and moving them
// out of pending.
type ReviewService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	notifier domain.Notifier
	exporter domain.ExportEnqueuer
	logger   *zerolog.Logger
}

func NewReviewService(store domain.Store, eventBus domain.EventPublisher, notifier domain.Notifier, exporter domain.ExportEnqueuer, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		store:    store,
		eventBus: eventBus,
		notifier: notifier,
		exporter: exporter,
		logger:   logger,
	}
}

// ListByStatus returns bookings for a filter tab, most recent first.
// Sorting happens once here at load time, not per filter switch.
func (s *ReviewService) ListByStatus(ctx context.Context, filter string) ([]models.Booking, error) {
	if !models.ValidStatusFilter(filter) {
		return nil, fmt.Errorf("unknown status filter %q", filter)
	}

	bookings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	if filter == models.FilterAll {
		return bookings, nil
	}

	filtered := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == filter {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// SetStatus transitions a pending booking to confirmed or rejected. The
// transition is monotonic: once a record leaves pending no further change is
// allowed, enforced here and not only by hiding the dashboard buttons.
func (s *ReviewService) SetStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	if status != models.StatusConfirmed && status != models.StatusRejected {
		return nil, database.ErrUnknownStatus
	}

	bookings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range bookings {
		if bookings[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, database.ErrNotFound
	}

	if bookings[idx].Status != models.StatusPending {
		return nil, database.ErrInvalidTransition
	}

	bookings[idx].Status = status
	if err := s.store.SaveAll(ctx, bookings); err != nil {
		return nil, err
	}

	updated := bookings[idx].Clone()

	metrics.IncStatusTransition(status)
	s.publishStatusEvent(updated)
	s.notifier.Notify(
		fmt.Sprintf("Booking %s", titleCase(status)),
		fmt.Sprintf("Booking #%s has been %s.", id, status),
	)
	s.enqueueExport(ctx, "status_changed", id)

	s.logger.Info().Str("booking_id", id).Str("status", status).Msg("booking status updated")

	return &updated, nil
}

func (s *ReviewService) publishStatusEvent(booking models.Booking) {
	if s.eventBus == nil {
		return
	}

	eventType := events.EventBookingConfirmed
	if booking.Status == models.StatusRejected {
		eventType = events.EventBookingRejected
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Name:        booking.Name,
		VehicleType: booking.VehicleType,
		ServiceType: booking.ServiceType,
		Status:      booking.Status,
		Price:       booking.Price.StringFixed(2),
		Date:        booking.Date,
		Time:        booking.Time,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *ReviewService) enqueueExport(ctx context.Context, reason, bookingID string) {
	if s.exporter == nil {
		return
	}
	if err := s.exporter.EnqueueSnapshot(ctx, reason, bookingID); err != nil {
		s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("export enqueue error")
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
