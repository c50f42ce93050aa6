package domain

import (
	"context"
	"time"

	"washpoint/internal/models"
)

// Store is the booking record store. There is deliberately no partial-update
// API: every mutation loads the whole collection, transforms the target
// record and saves the whole collection back.
type Store interface {
	LoadAll(ctx context.Context) ([]models.Booking, error)
	SaveAll(ctx context.Context, bookings []models.Booking) error
}

// Notifier delivers a user-visible notification. Fire and forget: no return
// value is consumed by callers.
type Notifier interface {
	Notify(title, description string)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SessionRepository keeps the ephemeral tracking-view state.
type SessionRepository interface {
	GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error)
	SetSession(ctx context.Context, session *models.TrackingSession) error
	ClearSession(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ExportEnqueuer schedules report-export work without blocking the caller.
type ExportEnqueuer interface {
	EnqueueSnapshot(ctx context.Context, reason string, bookingID string) error
}

type BookingService interface {
	Create(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
}

type ReviewService interface {
	ListByStatus(ctx context.Context, filter string) ([]models.Booking, error)
	SetStatus(ctx context.Context, id, status string) (*models.Booking, error)
}

type TrackerService interface {
	ToggleStage(ctx context.Context, bookingID, stageID string) (*models.Booking, error)
	Lookup(ctx context.Context, bookingID string) (*models.Booking, error)
	Track(ctx context.Context, sessionID, bookingID string) (*models.Booking, error)
	Release(ctx context.Context, sessionID string) error
	Progress(booking *models.Booking) int
}
