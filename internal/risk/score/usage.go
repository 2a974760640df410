package score

import (
	"sort"

	"github.com/riskworks/stability/dataset"
)

// Weights for the usage components. CPU, memory, and disk samples are
// normalized against fixed 0-100 bounds; network throughput is normalized
// against the min/max observed across the whole input table. The asymmetry
// is deliberate and matches the published scores.
const (
	WeightCPU     = 0.35
	WeightMemory  = 0.35
	WeightDisk    = 0.20
	WeightNetwork = 0.10
)

// UsageScore is the per-asset usage row: weighted component scores, the
// overall usage score, and its population-normalized form.
type UsageScore struct {
	HardwareAssetID string  `json:"hardware_asset_id"`
	CPU             float64 `json:"w_cpu_usage"`
	Memory          float64 `json:"w_memory_usage"`
	Disk            float64 `json:"w_disk_usage"`
	Network         float64 `json:"w_network_bandwidth"`
	Overall         float64 `json:"overall_usage_score"`
	Normalized      float64 `json:"n_usage_score"`
}

// ScoreUsage aggregates utilization samples into one usage score per asset.
// Rows come back sorted by asset ID.
func ScoreUsage(records []dataset.UsageRecord) []UsageScore {
	groups := make(map[string][]dataset.UsageRecord)
	var netSamples []float64
	for _, r := range records {
		groups[r.HardwareAssetID] = append(groups[r.HardwareAssetID], r)
		netSamples = append(netSamples, r.NetworkThroughput)
	}

	netMin := populationMin(netSamples)
	netMax := populationMax(netSamples)

	scores := make([]UsageScore, 0, len(groups))
	for id, group := range groups {
		var cpu, mem, disk, net []float64
		for _, r := range group {
			cpu = append(cpu, normalize(r.CPUPercent, 0, 100))
			mem = append(mem, normalize(r.MemoryPercent, 0, 100))
			disk = append(disk, normalize(r.DiskPercent, 0, 100))
			net = append(net, normalize(r.NetworkThroughput, netMin, netMax))
		}

		s := UsageScore{
			HardwareAssetID: id,
			CPU:             WeightCPU * mean(cpu),
			Memory:          WeightMemory * mean(mem),
			Disk:            WeightDisk * mean(disk),
			Network:         WeightNetwork * mean(net),
		}
		s.Overall = s.CPU + s.Memory + s.Disk + s.Network
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].HardwareAssetID < scores[j].HardwareAssetID
	})

	overalls := make([]float64, len(scores))
	for i, s := range scores {
		overalls[i] = s.Overall
	}
	max := populationMax(overalls)
	for i := range scores {
		scores[i].Normalized = divByMax(scores[i].Overall, max)
	}

	return scores
}
