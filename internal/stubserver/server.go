package stubserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchops/insight/pkg/logger"
)

// Server is a stub booking backend: it serves the five analytics endpoints
// the pipeline's gateway consumes, computed from a generated note corpus.
// Percentages go out as strings ("82.5%"), matching the real backend's
// loosely-typed JSON.
type Server struct {
	data   *dataset
	srv    *http.Server
	logger logger.Logger
}

// NewServer builds a stub backend over a generated dataset.
func NewServer(cfg *Config) *Server {
	s := &Server{
		data:   generate(cfg.Seed, cfg.Notes),
		logger: logger.Get().Named("stub-backend"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/analytics/filters", s.handleFilters)
	mux.HandleFunc("/analytics/audit", s.handleAudit)
	mux.HandleFunc("/analytics/audit/details", s.handleAuditDetails)
	mux.HandleFunc("/analytics/ranking", s.handleRanking)
	mux.HandleFunc("/analytics/locations/breakdown", s.handleBreakdown)

	s.srv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving the stub backend.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info(ctx, "stub backend listening",
		logger.String("addr", s.srv.Addr),
		logger.Int("notes", len(s.data.notes)),
	)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("stub backend: %w", err)
	}
	return nil
}

// Shutdown stops the stub backend.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("stub backend shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	respond(w, map[string]any{
		"dataset_options":     datasetOptions,
		"flexologist_options": append([]string{"All"}, flexologistNames...),
		"location_options":    append([]string{"All"}, locationNames...),
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	notes, ok := s.selectNotes(w, r)
	if !ok {
		return
	}

	withOpp, quality := 0, 0
	oppCounts := map[string]int{}
	for _, nt := range notes {
		if len(nt.Opportunities) > 0 {
			withOpp++
		}
		if nt.Quality {
			quality++
		}
		for _, o := range nt.Opportunities {
			oppCounts[o]++
		}
	}

	opportunities := make([]map[string]any, 0, len(opportunityNames))
	for _, o := range opportunityNames {
		opportunities = append(opportunities, map[string]any{
			"opportunity": o,
			"percentage":  percent(oppCounts[o], len(notes)),
		})
	}

	respond(w, map[string]any{
		"total_notes":              len(notes),
		"total_with_opportunities": withOpp,
		"total_quality_notes":      quality,
		"opportunities":            opportunities,
		"locations":                s.qualityShare(notes, locationNames, "location", func(n note) string { return n.Location }),
		"flexologists":             s.qualityShare(notes, flexologistNames, "flexologist", func(n note) string { return n.Flexologist }),
	})
}

func (s *Server) handleAuditDetails(w http.ResponseWriter, r *http.Request) {
	notes, ok := s.selectNotes(w, r)
	if !ok {
		return
	}
	opportunity := r.URL.Query().Get("opportunity")

	respond(w, map[string]any{
		"location":    detailRows(notes, opportunity, locationNames, "location", func(n note) string { return n.Location }),
		"flexologist": detailRows(notes, opportunity, flexologistNames, "flexologist", func(n note) string { return n.Flexologist }),
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	notes, ok := s.selectNotes(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	metric := q.Get("metric")

	names, keyOf := locationNames, func(n note) string { return n.Location }
	if q.Get("rank_by") == "flexologist" {
		names, keyOf = flexologistNames, func(n note) string { return n.Flexologist }
	}

	data := make([]map[string]any, 0, len(names))
	for _, name := range names {
		count := 0
		for _, nt := range notes {
			if keyOf(nt) != name {
				continue
			}
			switch metric {
			case "quality_notes":
				if nt.Quality {
					count++
				}
			case "opportunity_notes":
				if len(nt.Opportunities) > 0 {
					count++
				}
			default:
				count++
			}
		}
		data = append(data, map[string]any{"name": name, "count": count})
	}
	respond(w, map[string]any{"data": data})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	notes, ok := s.selectNotes(w, r)
	if !ok {
		return
	}

	rows := make([]map[string]any, 0, len(locationNames))
	for _, loc := range locationNames {
		total, quality := 0, 0
		for _, nt := range notes {
			if nt.Location != loc {
				continue
			}
			total++
			if nt.Quality {
				quality++
			}
		}
		rows = append(rows, map[string]any{
			"location":      loc,
			"total_notes":   total,
			"quality_notes": quality,
			"percentage":    percent(quality, total),
		})
	}
	respond(w, map[string]any{"rows": rows})
}

// selectNotes applies the duration and dimension query parameters. Writes a
// 400 and returns false on a malformed custom range.
func (s *Server) selectNotes(w http.ResponseWriter, r *http.Request) ([]note, bool) {
	q := r.URL.Query()
	now := time.Now().UTC()

	var from, to time.Time
	switch q.Get("duration") {
	case "last_7_days":
		from, to = now.AddDate(0, 0, -7), now
	case "last_90_days":
		from, to = now.AddDate(0, 0, -90), now
	case "custom":
		var err1, err2 error
		from, err1 = time.Parse("2006-01-02", q.Get("start"))
		to, err2 = time.Parse("2006-01-02", q.Get("end"))
		if err1 != nil || err2 != nil || to.Before(from) {
			http.Error(w, "invalid custom range", http.StatusBadRequest)
			return nil, false
		}
		to = to.AddDate(0, 0, 1)
	default:
		from, to = now.AddDate(0, 0, -30), now
	}

	return s.data.filter(from, to, q.Get("location"), q.Get("flexologist_name")), true
}

// qualityShare computes each dimension value's share of quality notes.
func (s *Server) qualityShare(notes []note, names []string, key string, keyOf func(note) string) []map[string]any {
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		total, quality := 0, 0
		for _, nt := range notes {
			if keyOf(nt) != name {
				continue
			}
			total++
			if nt.Quality {
				quality++
			}
		}
		out = append(out, map[string]any{
			key:          name,
			"percentage": percent(quality, total),
		})
	}
	return out
}

// detailRows computes per-dimension rows for one opportunity, carrying the
// numerator and denominator behind each percentage.
func detailRows(notes []note, opportunity string, names []string, key string, keyOf func(note) string) []map[string]any {
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		total, particular := 0, 0
		for _, nt := range notes {
			if keyOf(nt) != name {
				continue
			}
			total++
			if opportunity == "" || nt.has(opportunity) {
				particular++
			}
		}
		out = append(out, map[string]any{
			key:                       name,
			"percentage_note_quality": percent(particular, total),
			"particular_count":        particular,
			"total_count":             total,
		})
	}
	return out
}

// percent renders the backend's loosely-typed percentage string.
func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
