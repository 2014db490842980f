package service

import (
	"regexp"
	"strings"

	"github.com/iliyamo/conference-booking/internal/model"
)

var (
	emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phoneRe = regexp.MustCompile(`^0\d{9}$`)
	cardRe  = regexp.MustCompile(`^\d{16}$`)
)

const minPasswordLen = 8

func checkEmail(email string) error {
	if !emailRe.MatchString(email) {
		return validationf("invalid email format")
	}
	return nil
}

func checkPhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return validationf("phone number must be 10 digits and start with 0")
	}
	return nil
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return validationf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// maskPayment validates the instrument and returns the only form of it
// that is stored.
func maskPayment(method model.PaymentMethod, d model.PaymentDetails) (string, error) {
	switch {
	case method.IsCard():
		card := strings.TrimSpace(d.CardNumber)
		if !cardRe.MatchString(card) {
			return "", ErrInvalidCardNumber
		}
		return "Card **" + card[len(card)-4:], nil
	case method == model.Wallet:
		id := strings.TrimSpace(d.WalletID)
		if id == "" {
			return "", ErrMissingWalletID
		}
		return "Wallet: " + id, nil
	}
	return "", validationf("unsupported payment method %q", method)
}
