package model

import (
	"fmt"
	"strings"
	"time"
)

// PaymentMethod is the instrument used to pay for a pass.
type PaymentMethod string

const (
	DebitCard  PaymentMethod = "DebitCard"
	CreditCard PaymentMethod = "CreditCard"
	Wallet     PaymentMethod = "Wallet"
)

// ParsePaymentMethod accepts the method name case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range []PaymentMethod{DebitCard, CreditCard, Wallet} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// IsCard reports whether the method is a debit or credit card.
func (m PaymentMethod) IsCard() bool {
	return m == DebitCard || m == CreditCard
}

// PaymentDetails carries the raw instrument data submitted with a
// purchase. Only the masked form is ever stored.
type PaymentDetails struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	WalletID   string `json:"wallet_id"`
}

// Payment is an append-only audit record of money taken (positive amount)
// or returned (negative amount).
type Payment struct {
	ID         uint64        `cbor:"id" json:"payment_id"`
	AttendeeID string        `cbor:"attendee_id" json:"attendee_id"`
	TicketID   uint64        `cbor:"ticket_id" json:"ticket_id,omitempty"`
	Amount     float64       `cbor:"amount" json:"amount"`
	Method     PaymentMethod `cbor:"method" json:"method"`
	Details    string        `cbor:"details" json:"details"`
	Timestamp  time.Time     `cbor:"ts" json:"timestamp"`
}
