package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskworks/stability/dataset"
	"github.com/riskworks/stability/internal/risk/categorize"
	"github.com/riskworks/stability/internal/risk/merge"
	"github.com/riskworks/stability/internal/risk/score"
)

// ReadScoredAssets loads a previously written scored asset table, so the
// summary views can be re-derived (with a different reference date) without
// re-running the pipeline.
func ReadScoredAssets(path string) ([]merge.ScoredAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(first))
	for i, name := range first {
		col[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, required := range []string{"hardware_asset_id", "risk_category"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	f64 := func(rec []string, name string) float64 {
		s := cell(rec, name)
		if s == "" {
			return math.NaN()
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	i64 := func(rec []string, name string) int {
		v := f64(rec, name)
		if math.IsNaN(v) {
			return 0
		}
		return int(v)
	}
	date := func(rec []string, name string) *time.Time {
		s := cell(rec, name)
		if s == "" {
			return nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
		return &t
	}

	var rows []merge.ScoredAsset
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		id := cell(rec, "hardware_asset_id")
		if id == "" {
			continue
		}

		rows = append(rows, merge.ScoredAsset{
			HardwareAssetID: id,
			Company:         cell(rec, "company"),
			Usage: &score.UsageScore{
				HardwareAssetID: id,
				CPU:             f64(rec, "w_cpu_usage"),
				Memory:          f64(rec, "w_memory_usage"),
				Disk:            f64(rec, "w_disk_usage"),
				Network:         f64(rec, "w_network_bandwidth"),
				Overall:         f64(rec, "overall_usage_score"),
				Normalized:      f64(rec, "n_usage_score"),
			},
			Incident: &score.IncidentScore{
				HardwareAssetID: id,
				SeverityScore:   f64(rec, "severity_score"),
				ImpactScore:     f64(rec, "impact_score"),
				Count:           i64(rec, "incident_count"),
				Score:           f64(rec, "incident_score"),
				Overall:         f64(rec, "overall_incident_score"),
			},
			Maintenance: &score.MaintenanceScore{
				HardwareAssetID: id,
				Score:           f64(rec, "maintenance_score"),
				Overall:         f64(rec, "overall_maintenance_score"),
			},
			Vulnerability: &score.VulnerabilityScore{
				HardwareAssetID:    id,
				Count:              i64(rec, "vulnerability_count"),
				SeverityScore:      f64(rec, "vulnerability_severity_score"),
				PatchReleasedScore: f64(rec, "vulnerability_patch_released_score"),
				StatusScore:        f64(rec, "vulnerability_status_score"),
				DetectedAgeScore:   f64(rec, "vulnerability_detected_age_score"),
				DetectedTimesScore: f64(rec, "vulnerability_detected_times_score"),
				Score:              f64(rec, "vulnerability_score"),
				Overall:            f64(rec, "overall_vulnerability_score"),
			},
			Warranty: &dataset.WarrantyRecord{
				HardwareAssetID:  id,
				WarrantyStart:    date(rec, "warranty_start_date"),
				WarrantyEnd:      date(rec, "warranty_end_date"),
				EndOfLifeDate:    date(rec, "end_of_life_date"),
				EndOfSaleDate:    date(rec, "end_of_sale_date"),
				EndOfSupportDate: date(rec, "end_of_support_date"),
			},
			Composite: f64(rec, "composite_stability_score"),
			ZScore:    f64(rec, "zscore_composite_stability"),
			Category:  categorize.Category(cell(rec, "risk_category")),
		})
	}
}
