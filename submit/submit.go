// Package submit flattens a finished draft and delivers it to the
// external release store.
package submit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"release-service/models"
)

// Sink persists a flattened report. Exactly one implementation is
// selected at startup.
type Sink interface {
	Save(ctx context.Context, rec models.SubmissionRecord) error
}

// Timestamp layout of the release store, dd/mm/yyyy local time.
const timestampLayout = "02/01/2006 15:04:05"

// BuildRecord flattens a draft into the row the release store expects.
// The timestamp is stamped here, never by the renderer.
func BuildRecord(d *models.ReportDraft, now time.Time) models.SubmissionRecord {
	team := make([]string, 0, len(d.Team))
	for _, m := range d.Team {
		team = append(team, fmt.Sprintf("%s %s (%s)", m.Rank, m.Callsign, m.ID))
	}

	vehicles := make([]string, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		if strings.TrimSpace(v) != "" {
			vehicles = append(vehicles, v)
		}
	}

	rec := models.SubmissionRecord{
		Timestamp:    now.Format(timestampLayout),
		Team:         strings.Join(team, "; "),
		Vehicles:     strings.Join(vehicles, ", "),
		Address:      d.Street + ", " + d.Number,
		Narrative:    d.Narrative,
		Productivity: d.Productivity,
		HasPhoto:     "NÃO",
	}
	if d.Neighborhood != nil {
		rec.Neighborhood = d.Neighborhood.Name
		rec.Sector = d.Neighborhood.Sector
		rec.Officer = d.Neighborhood.SectorOfficer
	}
	if d.Photo != nil {
		rec.HasPhoto = "SIM"
	}
	return rec
}
