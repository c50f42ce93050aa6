package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is one customer's scheduled cleaning request and its lifecycle state.
// JSON tags match the persisted storage layout, so records written by older
// builds keep reading back cleanly.
type Booking struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	VehicleType    string          `json:"vehicleType"`
	ServiceType    string          `json:"serviceType"`
	Date           time.Time       `json:"date"`
	Time           string          `json:"time"`
	Status         string          `json:"status"` // pending, confirmed, rejected
	Price          decimal.Decimal `json:"price"`
	CreatedAt      time.Time       `json:"createdAt"`
	CleaningStages StageMap        `json:"cleaningStages,omitempty"`
}

// StageMap keeps the done/not-done flag per cleaning stage. Keys are stage
// ids from the fixed vocabulary; a missing key reads as false.
type StageMap map[string]bool

// Done reports whether the stage is marked complete.
func (m StageMap) Done(stageID string) bool {
	if m == nil {
		return false
	}
	return m[stageID]
}

// CompletedCount counts stages flagged true among the known vocabulary.
func (m StageMap) CompletedCount() int {
	count := 0
	for _, stage := range CleaningStages {
		if m.Done(stage.ID) {
			count++
		}
	}
	return count
}

// AllComplete reports whether every stage in the vocabulary is flagged true.
func (m StageMap) AllComplete() bool {
	return m.CompletedCount() == len(CleaningStages)
}

// Progress returns the completion percentage, rounded and clamped to [0,100].
func (m StageMap) Progress() int {
	return ProgressPercent(m.CompletedCount(), len(CleaningStages))
}

// ProgressPercent computes round(100*done/total) clamped to [0,100].
func ProgressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := (done*100 + total/2) / total
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Clone returns a deep copy so callers can mutate stage flags without
// aliasing the stored record.
func (b Booking) Clone() Booking {
	out := b
	if b.CleaningStages != nil {
		out.CleaningStages = make(StageMap, len(b.CleaningStages))
		for k, v := range b.CleaningStages {
			out.CleaningStages[k] = v
		}
	}
	return out
}
