package score

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/riskworks/stability/dataset"
)

// IncidentScore is the per-asset incident row. Severity and impact are the
// means of the mapped per-ticket scores; Score is count * (severity + impact).
type IncidentScore struct {
	HardwareAssetID string  `json:"hardware_asset_id"`
	SeverityScore   float64 `json:"severity_score"`
	ImpactScore     float64 `json:"impact_score"`
	Count           int     `json:"incident_count"`
	Score           float64 `json:"incident_score"`
	Overall         float64 `json:"overall_incident_score"`
}

// ScoreIncidents maps categorical severity and impact through the supplied
// score tables and aggregates per asset. Categories are matched
// case-insensitively; unmapped categories score 0 and are logged once per
// label rather than rejected.
func ScoreIncidents(records []dataset.IncidentRecord, severity, impact map[string]float64, logger *slog.Logger) []IncidentScore {
	type agg struct {
		severity []float64
		impact   []float64
	}

	warned := make(map[string]bool)
	lookup := func(table map[string]float64, label, field string) float64 {
		key := strings.ToLower(strings.TrimSpace(label))
		if v, ok := table[key]; ok {
			return v
		}
		if key != "" && logger != nil && !warned[field+":"+key] {
			warned[field+":"+key] = true
			logger.Warn("unmapped incident category scored as 0", "field", field, "value", key)
		}
		return 0
	}

	groups := make(map[string]*agg)
	for _, r := range records {
		a := groups[r.HardwareAssetID]
		if a == nil {
			a = &agg{}
			groups[r.HardwareAssetID] = a
		}
		a.severity = append(a.severity, lookup(severity, r.Severity, "severity"))
		a.impact = append(a.impact, lookup(impact, r.Impact, "impact"))
	}

	scores := make([]IncidentScore, 0, len(groups))
	for id, a := range groups {
		s := IncidentScore{
			HardwareAssetID: id,
			SeverityScore:   mean(a.severity),
			ImpactScore:     mean(a.impact),
			Count:           len(a.severity),
		}
		s.Score = float64(s.Count) * (s.SeverityScore + s.ImpactScore)
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].HardwareAssetID < scores[j].HardwareAssetID
	})

	totals := make([]float64, len(scores))
	for i, s := range scores {
		totals[i] = s.Score
	}
	max := populationMax(totals)
	for i := range scores {
		scores[i].Overall = divByMax(scores[i].Score, max)
	}

	return scores
}
