package model

import "time"

// Reservation records an attendee's seat in a workshop. Reservations are
// never deleted: cancelling flips Active to false and the record stays for
// history.
//
// Fields:
//  ID          – sequential identifier.
//  AttendeeID  – attendee who reserved the seat.
//  WorkshopID  – workshop being attended.
//  Active      – false once cancelled.
//  CreatedAt   – when the seat was taken.
//  CancelledAt – when the reservation was cancelled (nil while active).
type Reservation struct {
	ID          uint64     `cbor:"id" json:"reservation_id"`
	AttendeeID  string     `cbor:"attendee_id" json:"attendee_id"`
	WorkshopID  string     `cbor:"workshop_id" json:"workshop_id"`
	Active      bool       `cbor:"active" json:"active"`
	CreatedAt   time.Time  `cbor:"created_at" json:"created_at"`
	CancelledAt *time.Time `cbor:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

// Cancel marks the reservation cancelled. Cancelling twice keeps the first
// timestamp.
func (r *Reservation) Cancel(at time.Time) {
	if !r.Active {
		return
	}
	r.Active = false
	r.CancelledAt = &at
}
