package models

// Tracking view modes.
const (
	ModeSimulated = "simulated"
	ModeManual    = "manual"
)

// TrackingSession is the ephemeral state of one public tracking view: which
// mode it is in and, in manual mode, which booking it follows. It never
// touches the booking store.
type TrackingSession struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	BookingID string `json:"booking_id,omitempty"`
}

// Tracked reports whether the session follows a real booking.
func (s *TrackingSession) Tracked() bool {
	return s != nil && s.Mode == ModeManual && s.BookingID != ""
}
