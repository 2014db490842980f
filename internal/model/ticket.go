package model

import (
	"fmt"
	"strings"
	"time"
)

// TicketType discriminates the two pass variants.
type TicketType string

const (
	ExhibitionPass TicketType = "ExhibitionPass"
	AllAccessPass  TicketType = "AllAccessPass"
)

// AllAccessPrice is the fixed price of an all-access pass, including
// passes produced by upgrading.
const AllAccessPrice = 500.0

// ParseTicketType accepts the variant name case-insensitively.
func ParseTicketType(s string) (TicketType, error) {
	switch {
	case strings.EqualFold(s, string(ExhibitionPass)):
		return ExhibitionPass, nil
	case strings.EqualFold(s, string(AllAccessPass)):
		return AllAccessPass, nil
	}
	return "", fmt.Errorf("unknown ticket type %q", s)
}

// Label is the human-facing name of the variant.
func (t TicketType) Label() string {
	if t == AllAccessPass {
		return "All Access"
	}
	return "Exhibition"
}

// Ticket is a pass owned by an attendee. It is a tagged union over Type:
// an ExhibitionPass carries the exhibitions it unlocks, an AllAccessPass
// carries nothing extra and unlocks everything.
type Ticket struct {
	ID          uint64     `cbor:"id" json:"ticket_id"`
	AttendeeID  string     `cbor:"attendee_id" json:"attendee_id"`
	Price       float64    `cbor:"price" json:"price"`
	Type        TicketType `cbor:"type" json:"ticket_type"`
	PurchasedAt time.Time  `cbor:"purchased_at" json:"purchased_at"`
	Exhibitions []string   `cbor:"exhibitions,omitempty" json:"selected_exhibitions,omitempty"`
}

// NewExhibitionPass builds a pass scoped to the selected exhibitions.
func NewExhibitionPass(id uint64, attendeeID string, price float64, selected []string, at time.Time) Ticket {
	return Ticket{
		ID:          id,
		AttendeeID:  attendeeID,
		Price:       price,
		Type:        ExhibitionPass,
		PurchasedAt: at,
		Exhibitions: append([]string(nil), selected...),
	}
}

// NewAllAccessPass builds a pass granting access to every exhibition.
func NewAllAccessPass(id uint64, attendeeID string, price float64, at time.Time) Ticket {
	return Ticket{
		ID:          id,
		AttendeeID:  attendeeID,
		Price:       price,
		Type:        AllAccessPass,
		PurchasedAt: at,
	}
}

// GrantsAccess reports whether the pass admits its holder to the exhibition.
func (t Ticket) GrantsAccess(exhibition string) bool {
	if t.Type == AllAccessPass {
		return true
	}
	for _, name := range t.Exhibitions {
		if name == exhibition {
			return true
		}
	}
	return false
}

// AddExhibitions appends the names not already selected and returns how
// many were new.
func (t *Ticket) AddExhibitions(names []string) int {
	added := 0
	for _, n := range names {
		if !t.GrantsAccess(n) {
			t.Exhibitions = append(t.Exhibitions, n)
			added++
		}
	}
	return added
}

// AsAllAccess replaces the variant while keeping identity and owner. Any
// previous selection is discarded.
func (t Ticket) AsAllAccess(price float64, at time.Time) Ticket {
	return NewAllAccessPass(t.ID, t.AttendeeID, price, at)
}

// PurchaseDateLabel formats the purchase date the way passes print it.
func (t Ticket) PurchaseDateLabel() string {
	return t.PurchasedAt.Format("02 / January / 2006")
}
