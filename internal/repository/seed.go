package repository

import (
	"strings"

	"github.com/iliyamo/conference-booking/internal/model"
)

// SeedDates are the conference days every workshop topic repeats on.
var SeedDates = []string{"April 15, 2026", "April 16, 2026", "April 17, 2026", "April 18, 2026"}

type seedSession struct {
	topic, start, end string
}

type seedExhibition struct {
	name, location string
	sessions       []seedSession
}

var seedCatalog = []seedExhibition{
	{
		name: "Climate Tech Innovations", location: "Hall A",
		sessions: []seedSession{
			{"Intro to Climate Data Tools", "10:30 AM", "11:30 AM"},
			{"Renewable Energy Systems", "12:30 PM", "01:30 PM"},
			{"Smart Agriculture Solutions", "02:30 PM", "03:30 PM"},
		},
	},
	{
		name: "Green Policy & Governance", location: "Hall B",
		sessions: []seedSession{
			{"Policy Simulation Lab", "09:30 AM", "10:30 AM"},
			{"Sustainability Reporting 101", "12:00 PM", "01:00 PM"},
			{"Corporate Environmental Strategy", "02:00 PM", "03:00 PM"},
		},
	},
	{
		name: "Community Action & Impact", location: "Hall C",
		sessions: []seedSession{
			{"Building Low-Carbon Communities", "12:30 PM", "01:30 PM"},
			{"Waste Reduction Projects", "02:00 PM", "03:00 PM"},
			{"Circular Economy in Practice", "03:30 PM", "04:30 PM"},
		},
	},
}

// WorkshopID derives the deterministic workshop identifier from its topic
// and date.
func WorkshopID(topic, date string) string {
	return strings.ReplaceAll(topic, " ", "_") + "_" + date
}

// SeedCatalog builds the fixed catalog: three exhibitions, three topics
// each, repeated on every seed date, thirty seats per workshop. Workshops
// are ordered by date, then by session slot.
func SeedCatalog() []*model.Exhibition {
	out := make([]*model.Exhibition, 0, len(seedCatalog))
	for _, se := range seedCatalog {
		ex := &model.Exhibition{Name: se.name, Location: se.location}
		for _, d := range SeedDates {
			for _, s := range se.sessions {
				ex.AddWorkshop(&model.Workshop{
					ID:        WorkshopID(s.topic, d),
					Topic:     s.topic,
					Date:      d,
					StartTime: s.start,
					EndTime:   s.end,
					Capacity:  model.DefaultWorkshopCapacity,
				})
			}
		}
		out = append(out, ex)
	}
	return out
}
