package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskworks/stability/dataset"
	"github.com/riskworks/stability/internal/risk/categorize"
	"github.com/riskworks/stability/internal/risk/merge"
	"github.com/riskworks/stability/internal/risk/pipeline"
	"github.com/riskworks/stability/internal/risk/score"
	"github.com/riskworks/stability/internal/risk/summary"
)

func testResult() *pipeline.Result {
	eol := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assets := []merge.ScoredAsset{
		{
			HardwareAssetID: "srv-1",
			Company:         "Acme",
			Usage:           &score.UsageScore{HardwareAssetID: "srv-1", CPU: 26.25, Overall: 51.25, Normalized: 1},
			Incident:        &score.IncidentScore{HardwareAssetID: "srv-1", Count: 2, Score: 18.5, Overall: 1},
			Maintenance:     &score.MaintenanceScore{HardwareAssetID: "srv-1", Score: 90, Overall: 0.9},
			Vulnerability:   &score.VulnerabilityScore{HardwareAssetID: "srv-1", Count: 1, Score: 4.15, Overall: 1},
			Warranty:        &dataset.WarrantyRecord{HardwareAssetID: "srv-1", EndOfLifeDate: &eol},
			Composite:       1.47,
			ZScore:          1.2,
			Category:        categorize.HighRisk,
		},
		{
			HardwareAssetID: "srv-2",
			Company:         "Beta",
			Usage:           &score.UsageScore{HardwareAssetID: "srv-2"},
			Incident:        &score.IncidentScore{HardwareAssetID: "srv-2"},
			Maintenance:     &score.MaintenanceScore{HardwareAssetID: "srv-2"},
			Vulnerability:   &score.VulnerabilityScore{HardwareAssetID: "srv-2"},
			ZScore:          math.NaN(),
			Category:        categorize.Unknown,
		},
	}
	return &pipeline.Result{
		RunID:          "run-1",
		Assets:         assets,
		AssetCount:     len(assets),
		UsageScores:    []score.UsageScore{*assets[0].Usage},
		IncidentScores: []score.IncidentScore{*assets[0].Incident},
		CategoryCounts: summary.CategoryCounts(assets),
	}
}

func TestWriteAllAndReadBack(t *testing.T) {
	dir := t.TempDir()
	opts := summary.Options{Now: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}

	if err := WriteAll(dir, testResult(), opts); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	for _, name := range []string{
		UsageScoresFile, IncidentScoresFile, MaintenanceFile, VulnerabilityFile,
		ScoredAssetsFile, CategoryCountsFile, TopCompaniesFile, ExpiryDetailFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	rows, err := ReadScoredAssets(filepath.Join(dir, ScoredAssetsFile))
	if err != nil {
		t.Fatalf("ReadScoredAssets: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	r := rows[0]
	if r.HardwareAssetID != "srv-1" || r.Company != "Acme" {
		t.Errorf("row = %+v", r)
	}
	if r.Usage.Overall != 51.25 || r.Incident.Score != 18.5 {
		t.Errorf("scores did not round-trip: %+v", r)
	}
	if r.Category != categorize.HighRisk || r.ZScore != 1.2 {
		t.Errorf("categorization did not round-trip: %+v", r)
	}
	if r.Warranty == nil || r.Warranty.EndOfLifeDate == nil {
		t.Fatal("end-of-life date lost")
	}
	if !r.Warranty.EndOfLifeDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndOfLifeDate = %v", r.Warranty.EndOfLifeDate)
	}

	// Null z-scores render empty and come back as NaN.
	if !math.IsNaN(rows[1].ZScore) {
		t.Errorf("rows[1].ZScore = %v, want NaN", rows[1].ZScore)
	}
	if rows[1].Category != categorize.Unknown {
		t.Errorf("rows[1].Category = %q", rows[1].Category)
	}
}

func TestNum(t *testing.T) {
	if got := num(math.NaN()); got != "" {
		t.Errorf("num(NaN) = %q, want empty", got)
	}
	if got := num(18.5); got != "18.5" {
		t.Errorf("num(18.5) = %q", got)
	}
}
