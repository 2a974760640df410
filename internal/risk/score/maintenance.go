package score

import (
	"sort"

	"github.com/riskworks/stability/dataset"
)

// MaintenanceScore is the per-asset maintenance row: the mean raw score of
// the asset's patch events and the mean of their population-normalized form.
type MaintenanceScore struct {
	HardwareAssetID string  `json:"hardware_asset_id"`
	Score           float64 `json:"maintenance_score"`
	Overall         float64 `json:"overall_maintenance_score"`
}

// ScoreMaintenance normalizes every patch event against the population
// maximum maintenance score, then averages both the raw and normalized
// scores per asset. Required-column validation happens at the dataset layer
// before records reach this function.
func ScoreMaintenance(records []dataset.MaintenanceRecord) []MaintenanceScore {
	raw := make([]float64, len(records))
	for i, r := range records {
		raw[i] = r.MaintenanceScore
	}
	max := populationMax(raw)

	type agg struct {
		raw        []float64
		normalized []float64
	}
	groups := make(map[string]*agg)
	for _, r := range records {
		a := groups[r.HardwareAssetID]
		if a == nil {
			a = &agg{}
			groups[r.HardwareAssetID] = a
		}
		a.raw = append(a.raw, r.MaintenanceScore)
		a.normalized = append(a.normalized, divByMax(r.MaintenanceScore, max))
	}

	scores := make([]MaintenanceScore, 0, len(groups))
	for id, a := range groups {
		scores = append(scores, MaintenanceScore{
			HardwareAssetID: id,
			Score:           mean(a.raw),
			Overall:         mean(a.normalized),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].HardwareAssetID < scores[j].HardwareAssetID
	})
	return scores
}
