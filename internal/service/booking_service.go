package service

import (
	"context"
	"fmt"
	"time"

	"washpoint/internal/config"
	"washpoint/internal/database"
	"washpoint/internal/domain"
	"washpoint/internal/events"
	"washpoint/internal/metrics"
	"washpoint/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	store          domain.Store
	eventBus       domain.EventPublisher
	notifier       domain.Notifier
	exporter       domain.ExportEnqueuer
	limiter        *createLimiter
	maxAdvanceDays int
	logger         *zerolog.Logger
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, notifier domain.Notifier, exporter domain.ExportEnqueuer, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	maxAdvanceDays := cfg.MaxAdvanceDays
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = models.MaxAdvanceDays
	}

	var limiter *createLimiter
	if cfg.RateLimitEnabled {
		rps := cfg.RateLimitRPS
		if rps == 0 {
			rps = float64(cfg.RateLimitAttempts) / float64(cfg.RateLimitWindow)
		}
		limiter = newCreateLimiter(rps, cfg.RateLimitAttempts)
	}

	return &BookingService{
		store:          store,
		eventBus:       eventBus,
		notifier:       notifier,
		exporter:       exporter,
		limiter:        limiter,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// Create validates a submitted intent and appends a new pending record.
// Price is snapshotted from the tariff at this moment and never recomputed.
// Resubmitting the same form creates a second record with a new id; there is
// no deduplication key, only the optional rate limiter.
func (s *BookingService) Create(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	if !s.limiter.allow(req.Email) {
		return nil, database.ErrRateLimited
	}

	if verr := validateCreate(req, s.maxAdvanceDays, time.Now()); verr != nil {
		for _, f := range verr.Fields {
			metrics.IncValidationFailure(f.Field)
		}
		return nil, verr
	}

	service, _ := models.ServiceByType(req.ServiceType)
	now := time.Now()

	booking := models.Booking{
		ID:             newBookingID(now),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		VehicleType:    req.VehicleType,
		ServiceType:    req.ServiceType,
		Date:           req.Date,
		Time:           req.Time,
		Status:         models.StatusPending,
		Price:          service.Price,
		CreatedAt:      now,
		CleaningStages: models.StageMap{},
	}

	bookings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	bookings = append(bookings, booking)
	if err := s.store.SaveAll(ctx, bookings); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking)
	s.notifier.Notify("Booking Successful",
		fmt.Sprintf("Your booking ID is %s. We'll confirm your booking soon.", booking.ID))
	s.enqueueExport(ctx, "booking_created", booking.ID)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("service", booking.ServiceType).
		Str("vehicle", booking.VehicleType).
		Msg("booking created")

	return &booking, nil
}

// newBookingID keeps the time-based shape of the ids the old site generated
// while guaranteeing uniqueness for submissions landing on the same
// millisecond.
func newBookingID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking) {
	if s.eventBus == nil {
		return
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

func (s *BookingService) enqueueExport(ctx context.Context, reason, bookingID string) {
	if s.exporter == nil {
		return
	}
	if err := s.exporter.EnqueueSnapshot(ctx, reason, bookingID); err != nil {
		s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("export enqueue error")
	}
}
