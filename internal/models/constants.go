package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

const (
	VehicleCar        = "car"
	VehicleMotorcycle = "motorcycle"
	VehicleVan        = "van"
	VehicleTruck      = "truck"
)

const (
	ServiceBasic    = "basic"
	ServiceFull     = "full"
	ServiceInterior = "interior"
	ServicePremium  = "premium"
)

// StatusFilter values accepted by the review listing.
const (
	FilterAll       = "all"
	FilterPending   = StatusPending
	FilterConfirmed = StatusConfirmed
	FilterRejected  = StatusRejected
)

const (
	// MaxAdvanceDays окно бронирования вперед от сегодняшнего дня
	MaxAdvanceDays = 30

	// DefaultSessionTTL время жизни состояния трекинга в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// ExportQueueSize размер очереди воркера экспорта
	ExportQueueSize = 128

	// RateLimitAttempts попыток создания заявки в окне
	RateLimitAttempts = 5

	// RateLimitWindow окно ограничения в секундах
	RateLimitWindow = 60
)

// TimeSlots is the fixed set of bookable times, on the hour 09:00 through 18:00.
var TimeSlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// ValidTimeSlot reports whether the slot is one of the bookable times.
func ValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ValidVehicleType reports whether the value is a known vehicle type.
func ValidVehicleType(v string) bool {
	switch v {
	case VehicleCar, VehicleMotorcycle, VehicleVan, VehicleTruck:
		return true
	}
	return false
}

// ValidServiceType reports whether the value is a known service type.
func ValidServiceType(v string) bool {
	switch v {
	case ServiceBasic, ServiceFull, ServiceInterior, ServicePremium:
		return true
	}
	return false
}

// ValidStatusFilter reports whether the value is a known review filter.
func ValidStatusFilter(v string) bool {
	switch v {
	case FilterAll, FilterPending, FilterConfirmed, FilterRejected:
		return true
	}
	return false
}
