package stubserver

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Catalogue the stub backend serves. The first dataset option is what a
// freshly bootstrapped pipeline should end up on.
var (
	datasetOptions = []datasetOption{
		{Label: "Total Bookings", Metric: "total_bookings"},
		{Label: "Quality Notes", Metric: "quality_notes"},
		{Label: "Opportunity Notes", Metric: "opportunity_notes"},
	}

	locationNames = []string{
		"Austin Domain", "Bee Cave", "Cedar Park", "Georgetown",
		"Lakeway", "Round Rock", "South Congress",
	}

	flexologistNames = []string{
		"Ada Fields", "Grace Torres", "Lin Howard", "Marcus Webb",
		"Nina Patel", "Omar Reyes", "Priya Shah", "Tomas Kline",
	}

	opportunityNames = []string{
		"missing goals", "no next step", "no pain scale",
		"missing consent", "vague progress",
	}
)

type datasetOption struct {
	Label  string `json:"label"`
	Metric string `json:"metric"`
}

// note is one generated booking note.
type note struct {
	ID            string
	Location      string
	Flexologist   string
	Date          time.Time
	Opportunities []string
	Quality       bool
}

// dataset is the full generated corpus the stub serves from.
type dataset struct {
	notes []note
}

// Chance, in percent, that a generated note has each defect class.
const (
	qualityChance     = 60
	opportunityChance = 45
	historyDays       = 90
)

// generate builds a deterministic dataset: the same seed always yields the
// same notes, so smoke runs are reproducible.
func generate(seed int64, n int) *dataset {
	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC().Truncate(24 * time.Hour)

	notes := make([]note, n)
	for i := range notes {
		nt := note{
			ID:          uuid.New().String(),
			Location:    locationNames[rng.Intn(len(locationNames))],
			Flexologist: flexologistNames[rng.Intn(len(flexologistNames))],
			Date:        now.AddDate(0, 0, -rng.Intn(historyDays)),
			Quality:     rng.Intn(100) < qualityChance,
		}
		for _, opp := range opportunityNames {
			if rng.Intn(100) < opportunityChance {
				nt.Opportunities = append(nt.Opportunities, opp)
			}
		}
		notes[i] = nt
	}
	return &dataset{notes: notes}
}

// filter narrows the corpus the way the backend's query parameters do.
// Empty location/flexologist means unfiltered; the service never sends the
// All sentinel.
func (d *dataset) filter(from, to time.Time, location, flexologist string) []note {
	out := make([]note, 0, len(d.notes))
	for _, nt := range d.notes {
		if nt.Date.Before(from) || nt.Date.After(to) {
			continue
		}
		if location != "" && nt.Location != location {
			continue
		}
		if flexologist != "" && nt.Flexologist != flexologist {
			continue
		}
		out = append(out, nt)
	}
	return out
}

func (n note) has(opportunity string) bool {
	for _, o := range n.Opportunities {
		if o == opportunity {
			return true
		}
	}
	return false
}
