package score

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/riskworks/stability/dataset"
)

// VulnerabilityMappings are the caller-supplied score tables for the
// categorical vulnerability attributes. Unmapped labels score 0.
type VulnerabilityMappings struct {
	Severity      map[string]float64
	Status        map[string]float64
	PatchReleased map[string]float64
}

// VulnerabilityScore is the per-asset vulnerability row with the per-attribute
// mean sub-scores, the finding count, the combined score, and its
// population-normalized form.
type VulnerabilityScore struct {
	HardwareAssetID    string  `json:"hardware_asset_id"`
	Count              int     `json:"vulnerability_count"`
	SeverityScore      float64 `json:"vulnerability_severity_score"`
	PatchReleasedScore float64 `json:"vulnerability_patch_released_score"`
	StatusScore        float64 `json:"vulnerability_status_score"`
	DetectedAgeScore   float64 `json:"vulnerability_detected_age_score"`
	DetectedTimesScore float64 `json:"vulnerability_detected_times_score"`
	Score              float64 `json:"vulnerability_score"`
	Overall            float64 `json:"overall_vulnerability_score"`
}

// ScoreVulnerabilities scores each finding on five attributes and aggregates
// per asset, following the same per-event -> per-asset -> population-max
// shape as the other domain scorers.
//
// The categorical attributes (severity, status, patch released) go through
// the supplied mappings. Detection age and detection count are min-max
// normalized over the whole input table and scaled to [0, 10] so they sit on
// the same scale as the mapped attributes; age is measured against the
// newest detection date in the population, which keeps runs over identical
// snapshots byte-identical.
func ScoreVulnerabilities(records []dataset.VulnerabilityRecord, maps VulnerabilityMappings, logger *slog.Logger) []VulnerabilityScore {
	warned := make(map[string]bool)
	lookup := func(table map[string]float64, label, field string) float64 {
		key := strings.ToLower(strings.TrimSpace(label))
		if v, ok := table[key]; ok {
			return v
		}
		if key != "" && logger != nil && !warned[field+":"+key] {
			warned[field+":"+key] = true
			logger.Warn("unmapped vulnerability category scored as 0", "field", field, "value", key)
		}
		return 0
	}

	// Population ranges for the numeric attributes.
	var newest, oldest *time.Time
	var times []float64
	for _, r := range records {
		if r.DetectedDate != nil {
			if newest == nil || r.DetectedDate.After(*newest) {
				newest = r.DetectedDate
			}
			if oldest == nil || r.DetectedDate.Before(*oldest) {
				oldest = r.DetectedDate
			}
		}
		times = append(times, r.DetectedTimes)
	}
	var ageRange float64
	if newest != nil && oldest != nil {
		ageRange = newest.Sub(*oldest).Hours() / 24
	}
	timesMin := populationMin(times)
	timesMax := populationMax(times)

	ageScore := func(detected *time.Time) float64 {
		if detected == nil || ageRange <= 0 {
			return 0
		}
		age := newest.Sub(*detected).Hours() / 24
		return age / ageRange * 10
	}

	type agg struct {
		severity, patch, status, age, times, score []float64
	}
	groups := make(map[string]*agg)
	for _, r := range records {
		a := groups[r.HardwareAssetID]
		if a == nil {
			a = &agg{}
			groups[r.HardwareAssetID] = a
		}

		severity := lookup(maps.Severity, r.Severity, "severity")
		patch := lookup(maps.PatchReleased, r.PatchReleased, "patch_released")
		status := lookup(maps.Status, r.Status, "status")
		age := ageScore(r.DetectedDate)
		count := normalize(r.DetectedTimes, timesMin, timesMax) / 10

		a.severity = append(a.severity, severity)
		a.patch = append(a.patch, patch)
		a.status = append(a.status, status)
		a.age = append(a.age, age)
		a.times = append(a.times, count)
		a.score = append(a.score, (severity+patch+status+age+count)/5)
	}

	scores := make([]VulnerabilityScore, 0, len(groups))
	for id, a := range groups {
		scores = append(scores, VulnerabilityScore{
			HardwareAssetID:    id,
			Count:              len(a.score),
			SeverityScore:      mean(a.severity),
			PatchReleasedScore: mean(a.patch),
			StatusScore:        mean(a.status),
			DetectedAgeScore:   mean(a.age),
			DetectedTimesScore: mean(a.times),
			Score:              mean(a.score),
		})
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
