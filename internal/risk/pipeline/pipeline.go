// Package pipeline runs one batch of the stability scoring flow: four
// domain scorers, the master-list merge, the missing-value fill, the
// composite score, and the risk categorization, in that fixed order.
//
// A run is a pure function of its snapshot and configuration apart from the
// run metadata (ID, timestamps): identical inputs produce identical output
// tables.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/riskworks/stability/dataset"
	"github.com/riskworks/stability/internal/risk/categorize"
	"github.com/riskworks/stability/internal/risk/config"
	"github.com/riskworks/stability/internal/risk/merge"
	"github.com/riskworks/stability/internal/risk/score"
	"github.com/riskworks/stability/internal/risk/summary"
)

// Runner executes one batch run end to end: load the snapshot, score it,
// write the reports. The trigger server and the scheduler both invoke the
// pipeline through this type.
type Runner func(ctx context.Context) (*Result, error)

// Result is the output of one batch run: the four per-domain score tables,
// the final scored asset table, the category counts, and run metadata.
type Result struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	UsageScores         []score.UsageScore         `json:"-"`
	IncidentScores      []score.IncidentScore      `json:"-"`
	MaintenanceScores   []score.MaintenanceScore   `json:"-"`
	VulnerabilityScores []score.VulnerabilityScore `json:"-"`
	Assets              []merge.ScoredAsset        `json:"-"`

	AssetCount     int                     `json:"asset_count"`
	CategoryCounts []summary.CategoryCount `json:"category_counts"`
}

// Run executes one batch over a complete snapshot. It never fails on data
// content: schema validation happens when the snapshot is loaded, and every
// degenerate numeric condition inside the pipeline resolves to 0 or Unknown.
func Run(snap *dataset.Snapshot, cfg *config.Config, logger *slog.Logger) *Result {
	started := time.Now()
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	logger.Info("scoring domains",
		"assets", len(snap.Assets),
		"usage_records", len(snap.Usage),
		"incident_records", len(snap.Incidents),
		"maintenance_records", len(snap.Maintenance),
		"vulnerability_records", len(snap.Vulnerabilities),
	)

	res.UsageScores = score.ScoreUsage(snap.Usage)
	res.IncidentScores = score.ScoreIncidents(snap.Incidents, cfg.SeverityScores, cfg.ImpactScores, logger)
	res.MaintenanceScores = score.ScoreMaintenance(snap.Maintenance)
	res.VulnerabilityScores = score.ScoreVulnerabilities(snap.Vulnerabilities, score.VulnerabilityMappings{
		Severity:      cfg.Vulnerability.SeverityScores,
		Status:        cfg.Vulnerability.StatusScores,
		PatchReleased: cfg.Vulnerability.PatchReleasedScores,
	}, logger)

	logger.Info("merging score tables")
	rows := merge.Merge(snap.Assets, res.UsageScores, res.IncidentScores,
		res.MaintenanceScores, snap.Warranty, res.VulnerabilityScores)
	merge.Fill(rows)

	composites := make([]float64, len(rows))
	for i := range rows {
		rows[i].Composite = cfg.Weights.Composite(
			rows[i].Usage.Normalized,
			rows[i].Incident.Overall,
			rows[i].Maintenance.Overall,
			rows[i].Vulnerability.Overall,
		)
		composites[i] = rows[i].Composite
	}

	logger.Info("categorizing asset risk")
	for i, r := range categorize.Categorize(composites) {
		rows[i].ZScore = r.ZScore
		rows[i].Category = r.Category
	}

	merge.AttachCompanies(rows, snap.Assets)

	res.Assets = rows
	res.AssetCount = len(rows)
	res.CategoryCounts = summary.CategoryCounts(rows)
	res.Duration = time.Since(started)

	logger.Info("run complete",
		"run_id", res.RunID,
		"assets", res.AssetCount,
		"duration", res.Duration,
	)
	return res
}
