package service

import (
	"time"

	"github.com/iliyamo/conference-booking/internal/model"
)

// AttendeeView is the public projection of an account; it never carries
// the credential.
type AttendeeView struct {
	ID             string   `json:"attendee_id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Role           string   `json:"role"`
	TicketIDs      []uint64 `json:"tickets"`
	ReservationIDs []uint64 `json:"reservations"`
}

func attendeeView(a *model.Attendee) AttendeeView {
	return AttendeeView{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		Role:           a.Role,
		TicketIDs:      append([]uint64{}, a.TicketIDs...),
		ReservationIDs: append([]uint64{}, a.ReservationIDs...),
	}
}

type ExhibitionView struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Workshops int      `json:"workshops"`
	Dates     []string `json:"dates"`
}

type WorkshopView struct {
	ID             string `json:"workshop_id"`
	Topic          string `json:"topic"`
	Exhibition     string `json:"exhibition"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Capacity       int    `json:"capacity"`
	Booked         int    `json:"booked"`
	SeatsRemaining int    `json:"seats_remaining"`
}

func workshopView(w *model.Workshop) WorkshopView {
	return WorkshopView{
		ID:             w.ID,
		Topic:          w.Topic,
		Exhibition:     w.ExhibitionName,
		Date:           w.Date,
		StartTime:      w.StartTime,
		EndTime:        w.EndTime,
		Capacity:       w.Capacity,
		Booked:         w.Booked(),
		SeatsRemaining: w.SeatsRemaining(),
	}
}

// ScheduleItem is an active reservation joined with its workshop.
type ScheduleItem struct {
	ReservationID uint64    `json:"reservation_id"`
	WorkshopID    string    `json:"workshop_id"`
	Topic         string    `json:"topic"`
	Exhibition    string    `json:"exhibition"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	ReservedAt    time.Time `json:"reserved_at"`
}

// PassView holds what a printed pass shows.
type PassView struct {
	Ticket       model.Ticket   `json:"ticket"`
	TypeLabel    string         `json:"type"`
	HolderID     string         `json:"holder_id"`
	HolderName   string         `json:"holder_name"`
	PurchaseDate string         `json:"purchase_date"`
	Access       []string       `json:"access"`
	Workshops    []ScheduleItem `json:"workshops"`
}

type OrderView struct {
	TicketID    uint64    `json:"ticket_id"`
	AttendeeID  string    `json:"attendee_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Type        string    `json:"type"`
	Price       float64   `json:"price"`
	PurchasedAt time.Time `json:"purchased_at"`
	Exhibitions []string  `json:"exhibitions,omitempty"`
}

type OrdersReport struct {
	Orders     []OrderView `json:"orders"`
	TotalSales float64     `json:"total_sales"`
}

// TypeStats aggregates sold tickets of one variant.
type TypeStats struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CapacityRow struct {
	WorkshopID string `json:"workshop_id"`
	Topic      string `json:"topic"`
	Exhibition string `json:"exhibition"`
	StartTime  string `json:"start_time"`
	Booked     int    `json:"booked"`
	Capacity   int    `json:"capacity"`
}
