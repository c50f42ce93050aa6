package models

import "time"

// CreateBookingRequest is a candidate record as submitted by the booking
// form: everything except the fields the core owns (id, status, price,
// createdAt).
type CreateBookingRequest struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	VehicleType string    `json:"vehicleType"`
	ServiceType string    `json:"serviceType"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
}
