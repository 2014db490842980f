package pass

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/service"
)

func samplePass() service.PassView {
	tk := model.NewExhibitionPass(3, "U2", 200, []string{"Climate Tech Innovations"}, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	return service.PassView{
		Ticket:       tk,
		TypeLabel:    tk.Type.Label(),
		HolderID:     "U2",
		HolderName:   "Ana",
		PurchaseDate: tk.PurchaseDateLabel(),
		Access:       []string{"Climate Tech Innovations"},
		Workshops: []service.ScheduleItem{{
			ReservationID: 1, Topic: "Intro to Climate Data Tools", Date: "April 15, 2026",
			StartTime: "10:30 AM", EndTime: "11:30 AM", Exhibition: "Climate Tech Innovations",
		}},
	}
}

func TestRender(t *testing.T) {
	pdf, err := Renderer{Secret: []byte("k")}.Render(samplePass())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestPayloadVerify(t *testing.T) {
	r := Renderer{Secret: []byte("k")}
	p := r.Payload(samplePass())

	scan, err := r.Verify(p)
	require.NoError(t, err)
	assert.Equal(t, Scan{TicketID: 3, AttendeeID: "U2", Type: model.ExhibitionPass}, scan)

	_, err = Renderer{Secret: []byte("other")}.Verify(p)
	assert.ErrorIs(t, err, ErrBadSignature)
	_, err = r.Verify("3|U2|AllAccessPass|" + p[len("3|U2|ExhibitionPass|"):])
	assert.ErrorIs(t, err, ErrBadSignature)
	_, err = r.Verify("no separator")
	assert.ErrorIs(t, err, ErrBadSignature)
}
