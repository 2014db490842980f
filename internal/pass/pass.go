// Package pass renders printable conference passes: a one-page PDF with
// the holder, access list and reserved workshops, plus a signed QR code
// that door staff can verify.
package pass

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/service"
)

// ErrBadSignature is returned by Verify for tampered or foreign payloads.
var ErrBadSignature = errors.New("pass: bad signature")

// Renderer signs QR payloads with Secret.
type Renderer struct {
	Secret []byte
}

// Payload returns the QR content for a ticket: ticketID|attendeeID|type|signature.
func (r Renderer) Payload(v service.PassView) string {
	data := fmt.Sprintf("%d|%s|%s", v.Ticket.ID, v.HolderID, v.Ticket.Type)
	return data + "|" + r.sign(data)
}

func (r Renderer) sign(data string) string {
	h := hmac.New(sha256.New, r.Secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Scan is the verified content of a pass QR code.
type Scan struct {
	TicketID   uint64
	AttendeeID string
	Type       model.TicketType
}

// Verify checks a scanned payload's signature and decodes it.
func (r Renderer) Verify(payload string) (Scan, error) {
	i := strings.LastIndex(payload, "|")
	if i < 0 {
		return Scan{}, ErrBadSignature
	}
	data, sig := payload[:i], payload[i+1:]
	if !hmac.Equal([]byte(sig), []byte(r.sign(data))) {
		return Scan{}, ErrBadSignature
	}
	parts := strings.Split(data, "|")
	if len(parts) != 3 {
		return Scan{}, fmt.Errorf("pass: malformed payload %q", data)
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Scan{}, fmt.Errorf("pass: malformed ticket id %q", parts[0])
	}
	return Scan{TicketID: id, AttendeeID: parts[1], Type: model.TicketType(parts[2])}, nil
}

// Render builds the PDF for the pass.
func (r Renderer) Render(v service.PassView) ([]byte, error) {
	qrPNG, err := qrcode.Encode(r.Payload(v), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("GreenWave Conference Pass", false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "GreenWave Conference Pass")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	line := func(format string, args ...any) {
		pdf.Cell(0, 8, fmt.Sprintf(format, args...))
		pdf.Ln(8)
	}
	line("Pass type: %s", v.TypeLabel)
	line("Ticket ID: %d", v.Ticket.ID)
	line("Holder: %s (%s)", v.HolderName, v.HolderID)
	line("Purchased: %s", v.PurchaseDate)
	line("Price: %.2f AED", v.Ticket.Price)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	line("Access")
	pdf.SetFont("Arial", "", 12)
	for _, name := range v.Access {
		line("- %s", name)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	line("Workshops")
	pdf.SetFont("Arial", "", 11)
	if len(v.Workshops) == 0 {
		line("No active reservations")
	}
	for _, w := range v.Workshops {
		line("%s | %s %s-%s | %s", w.Topic, w.Date, w.StartTime, w.EndTime, w.Exhibition)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
