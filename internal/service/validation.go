package service

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"washpoint/internal/models"
)

// FieldError names the offending form field and the message shown next to it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is the normal negative outcome of a booking submission.
// It is not a fault: the caller surfaces the field messages and the user
// retries.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the message for a field, empty when the field passed.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// validateCreate checks a candidate record against the form contract plus the
// business rule the core owns: the booking date must fall inside the forward
// window.
func validateCreate(req models.CreateBookingRequest, maxAdvanceDays int, now time.Time) *ValidationError {
	verr := &ValidationError{}

	if len(strings.TrimSpace(req.Name)) < 2 {
		verr.add("name", "Name must be at least 2 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		verr.add("email", "Invalid email address")
	}
	if len(strings.TrimSpace(req.Phone)) < 6 {
		verr.add("phone", "Phone number is required")
	}
	if !models.ValidVehicleType(req.VehicleType) {
		verr.add("vehicleType", "Select a vehicle type")
	}
	if !models.ValidServiceType(req.ServiceType) {
		verr.add("serviceType", "Select a service type")
	}

	if req.Date.IsZero() {
		verr.add("date", "Please select a date")
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
		if day.Before(today) {
			verr.add("date", "Date cannot be in the past")
		} else if day.After(today.AddDate(0, 0, maxAdvanceDays)) {
			verr.add("date", fmt.Sprintf("Date must be within the next %d days", maxAdvanceDays))
		}
	}

	if req.Time == "" {
		verr.add("time", "Please select a time")
	} else if !models.ValidTimeSlot(req.Time) {
		verr.add("time", "Select one of the offered time slots")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}
