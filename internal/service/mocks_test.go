package service

import (
	"context"
	"encoding/json"
	"sync"

	"washpoint/internal/models"
)

// memStore mimics the load-all/save-all contract of the real store.
type memStore struct {
	mu       sync.Mutex
	bookings []models.Booking
	loadErr  error
	saveErr  error
	saves    int
}

func (m *memStore) LoadAll(_ context.Context) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]models.Booking, len(m.bookings))
	for i, b := range m.bookings {
		out[i] = b.Clone()
	}
	return out, nil
}

func (m *memStore) SaveAll(_ context.Context, bookings []models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.bookings = make([]models.Booking, len(bookings))
	for i, b := range bookings {
		m.bookings[i] = b.Clone()
	}
	return nil
}

type notification struct {
	title       string
	description string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notification
}

func (r *recordingNotifier) Notify(title, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notification{title: title, description: description})
}

func (r *recordingNotifier) titled(title string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notes {
		if n.title == title {
			count++
		}
	}
	return count
}

type publishedEvent struct {
	eventType string
	payload   json.RawMessage
}

type recordingBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingBus) PublishJSON(eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{eventType: eventType, payload: raw})
	return nil
}

func (r *recordingBus) typed(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.eventType == eventType {
			count++
		}
	}
	return count
}

type recordingExporter struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingExporter) EnqueueSnapshot(_ context.Context, reason, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return nil
}
