// Package catalog holds the authored activity list.
package catalog

import (
	"time"

	"github.com/noah-isme/gema-activity-export/internal/models"
)

const (
	// DefaultName labels records that do not override their name.
	DefaultName = "Cantus"
	// VenueBOJ is the BOJ hall.
	VenueBOJ = "BOJ Zaal"
	// VenueBSG is the BSG hall.
	VenueBSG = "BSG zaal"
)

// Activities returns the authored records in authoring order. Each call returns a fresh slice.
func Activities() []models.ActivityRecord {
	return []models.ActivityRecord{
		// lower-case "zaal" is authored as-is
		{Name: DefaultName, OccursAt: at(2025, time.October, 8, 20), Location: "BOJ zaal"},
		{Name: DefaultName, OccursAt: at(2025, time.October, 20, 20), Location: VenueBOJ},
		{Name: DefaultName, OccursAt: at(2025, time.November, 24, 20), Location: VenueBOJ},
		{Name: "Rouge-et-vert Cantus", OccursAt: at(2025, time.December, 11, 20), Location: VenueBSG},
		{Name: "Krambambouli cantus", OccursAt: at(2025, time.December, 19, 20), Location: VenueBSG},
	}
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
