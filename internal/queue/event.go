// Package queue carries booking events over RabbitMQ: a publisher used by
// the booking engine and a background consumer that keeps an audit log.
package queue

import "time"

// Event types published after a successful mutation.
const (
    TypeAttendeeRegistered   = "attendee.registered"
    TypeAttendeeDeleted      = "attendee.deleted"
    TypeTicketPurchased      = "ticket.purchased"
    TypeTicketUpgraded       = "ticket.upgraded"
    TypeTicketRefunded       = "ticket.refunded"
    TypeReservationCreated   = "reservation.created"
    TypeReservationCancelled = "reservation.cancelled"
)

// Event is the payload of every message on the events queue. Fields that
// do not apply to the event type are left empty.  It contains enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the store.
type Event struct {
    Type          string    `json:"type"`
    AttendeeID    string    `json:"attendee_id"`
    TicketID      uint64    `json:"ticket_id,omitempty"`
    TicketType    string    `json:"ticket_type,omitempty"`
    ReservationID uint64    `json:"reservation_id,omitempty"`
    WorkshopID    string    `json:"workshop_id,omitempty"`
    Amount        float64   `json:"amount,omitempty"`
    OccurredAt    time.Time `json:"occurred_at"`
}
