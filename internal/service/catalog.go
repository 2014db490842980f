package service

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/conference-booking/internal/repository"
)

func (s *bookingService) Catalog(ctx context.Context) []ExhibitionView {
	var out []ExhibitionView
	_ = s.store.View(func(tx *repository.Tx) error {
		for _, ex := range tx.Exhibitions() {
			v := ExhibitionView{Name: ex.Name, Location: ex.Location, Workshops: len(ex.Workshops)}
			seen := map[string]bool{}
			for _, w := range ex.Workshops {
				if !seen[w.Date] {
					seen[w.Date] = true
					v.Dates = append(v.Dates, w.Date)
				}
			}
			sortDates(v.Dates)
			out = append(out, v)
		}
		return nil
	})
	return out
}

// Workshops lists an exhibition's workshops, optionally limited to one
// date.
func (s *bookingService) Workshops(ctx context.Context, exhibition, date string) ([]WorkshopView, error) {
	out := []WorkshopView{}
	err := s.store.View(func(tx *repository.Tx) error {
		ex, ok := tx.Exhibition(exhibition)
		if !ok {
			return ErrNotFound
		}
		for _, w := range ex.Workshops {
			if date == "" || w.Date == date {
				out = append(out, workshopView(w))
			}
		}
		return nil
	})
	return out, err
}

func (s *bookingService) Workshop(ctx context.Context, id string) (WorkshopView, error) {
	var out WorkshopView
	err := s.store.View(func(tx *repository.Tx) error {
		w, ok := tx.Workshop(id)
		if !ok {
			return ErrWorkshopNotFound
		}
		out = workshopView(w)
		return nil
	})
	return out, err
}

const dateLayout = "January 2, 2006"

// sortDates orders date labels chronologically; labels that do not parse
// sort after the ones that do, alphabetically.
func sortDates(dates []string) {
	sort.SliceStable(dates, func(i, j int) bool {
		a, errA := time.Parse(dateLayout, dates[i])
		b, errB := time.Parse(dateLayout, dates[j])
		switch {
		case errA == nil && errB == nil:
			return a.Before(b)
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return dates[i] < dates[j]
	})
}
