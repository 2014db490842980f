package model

// DefaultWorkshopCapacity is the number of seats a seeded workshop offers.
const DefaultWorkshopCapacity = 30

// Workshop is a single session held under an exhibition on a given date.
// Seats are tracked as the ordered list of attendee IDs that currently
// hold an active reservation.
//
// Fields:
//  ID             – deterministic identifier built from topic and date.
//  Topic          – title of the session.
//  Date           – calendar date label (e.g. "April 15, 2026").
//  StartTime      – start label (e.g. "10:30 AM").
//  EndTime        – end label.
//  ExhibitionName – name of the exhibition the workshop belongs to.
//  Capacity       – maximum number of seats.
//  AttendeeIDs    – attendees holding a seat, in booking order.
type Workshop struct {
	ID             string   `cbor:"id" json:"workshop_id"`
	Topic          string   `cbor:"topic" json:"topic"`
	Date           string   `cbor:"date" json:"date"`
	StartTime      string   `cbor:"start_time" json:"start_time"`
	EndTime        string   `cbor:"end_time" json:"end_time"`
	ExhibitionName string   `cbor:"exhibition" json:"exhibition_name"`
	Capacity       int      `cbor:"capacity" json:"capacity"`
	AttendeeIDs    []string `cbor:"attendees" json:"-"`
}

// IsFull reports whether every seat is taken.
func (w *Workshop) IsFull() bool {
	return len(w.AttendeeIDs) >= w.Capacity
}

// HasAttendee reports whether the attendee already holds a seat.
func (w *Workshop) HasAttendee(attendeeID string) bool {
	for _, id := range w.AttendeeIDs {
		if id == attendeeID {
			return true
		}
	}
	return false
}

// AddAttendee takes a seat for the attendee. It returns false without
// changing anything when the workshop is full or the attendee is already
// seated.
func (w *Workshop) AddAttendee(attendeeID string) bool {
	if w.IsFull() || w.HasAttendee(attendeeID) {
		return false
	}
	w.AttendeeIDs = append(w.AttendeeIDs, attendeeID)
	return true
}

// RemoveAttendee frees the attendee's seat, keeping the order of the
// remaining seats. It returns false when the attendee was not seated.
func (w *Workshop) RemoveAttendee(attendeeID string) bool {
	for i, id := range w.AttendeeIDs {
		if id == attendeeID {
			w.AttendeeIDs = append(w.AttendeeIDs[:i], w.AttendeeIDs[i+1:]...)
			return true
		}
	}
	return false
}

// SeatsRemaining returns the number of free seats.
func (w *Workshop) SeatsRemaining() int {
	return w.Capacity - len(w.AttendeeIDs)
}

// Booked returns the number of occupied seats.
func (w *Workshop) Booked() int { return len(w.AttendeeIDs) }
