package model

// Role names carried in sessions and tokens.
const (
	RoleAttendee = "ATTENDEE"
	RoleAdmin    = "ADMIN"
)

// Attendee is a registered conference visitor. Email is the unique lookup
// key of the repository and may change through a profile update. Tickets
// and Reservations hold IDs into the repository's global collections; the
// attendee does not own those records.
//
// Fields:
//  ID           – sequential identifier of the form "U<n>".
//  Name         – display name.
//  Email        – unique email address.
//  Phone        – ten digits starting with 0.
//  PasswordHash – bcrypt hash of the credential.
//  Role         – ATTENDEE or ADMIN.
//  TicketIDs    – owned ticket IDs in purchase order.
//  ReservationIDs – reservation IDs in booking order, cancelled ones included.
type Attendee struct {
	ID             string   `cbor:"id"`
	Name           string   `cbor:"name"`
	Email          string   `cbor:"email"`
	Phone          string   `cbor:"phone"`
	PasswordHash   string   `cbor:"password_hash"`
	Role           string   `cbor:"role"`
	TicketIDs      []uint64 `cbor:"tickets"`
	ReservationIDs []uint64 `cbor:"reservations"`
}

// IsAdmin reports whether the account carries the administrative role.
func (a *Attendee) IsAdmin() bool { return a.Role == RoleAdmin }

// RemoveTicket drops a ticket ID from the owned list.
func (a *Attendee) RemoveTicket(id uint64) bool {
	for i, t := range a.TicketIDs {
		if t == id {
			a.TicketIDs = append(a.TicketIDs[:i], a.TicketIDs[i+1:]...)
			return true
		}
	}
	return false
}

// OwnsTicket reports whether the ticket ID is in the owned list.
func (a *Attendee) OwnsTicket(id uint64) bool {
	for _, t := range a.TicketIDs {
		if t == id {
			return true
		}
	}
	return false
}
