// Package report writes the pipeline's output tables as CSV files: the
// four per-domain score tables, the final scored asset table, and the
// summary views. Rendering beyond CSV (PDF, HTML, email) is delegated to
// downstream consumers.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/riskworks/stability/internal/risk/merge"
	"github.com/riskworks/stability/internal/risk/pipeline"
	"github.com/riskworks/stability/internal/risk/summary"
)

// Output file names inside the report directory.
const (
	UsageScoresFile    = "hw_usage_score.csv"
	IncidentScoresFile = "hw_incidents_score.csv"
	MaintenanceFile    = "hw_maintenance_score.csv"
	VulnerabilityFile  = "hw_vulnerability_score.csv"
	ScoredAssetsFile   = "summarized_asset_scores_with_risk_category.csv"
	CategoryCountsFile = "risk_category_counts.csv"
	TopCompaniesFile   = "top_high_risk_companies.csv"
	ExpiryDetailFile   = "high_risk_expiring_and_expired_assets.csv"
)

// num renders a float cell. NaN marks a null and renders empty.
func num(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// day renders a nullable date cell.
func day(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteScoredAssets writes the final scored asset table.
func WriteScoredAssets(path string, rows []merge.ScoredAsset) error {
	header := []string{
		"hardware_asset_id", "company",
		"w_cpu_usage", "w_memory_usage", "w_disk_usage", "w_network_bandwidth",
		"overall_usage_score", "n_usage_score",
		"incident_count", "severity_score", "impact_score", "incident_score", "overall_incident_score",
		"maintenance_score", "overall_maintenance_score",
		"vulnerability_count", "vulnerability_severity_score", "vulnerability_patch_released_score",
		"vulnerability_status_score", "vulnerability_detected_age_score", "vulnerability_detected_times_score",
		"vulnerability_score", "overall_vulnerability_score",
		"warranty_start_date", "warranty_end_date", "end_of_life_date", "end_of_sale_date", "end_of_support_date",
		"composite_stability_score", "zscore_composite_stability", "risk_category",
	}

	records := make([][]string, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		var wStart, wEnd, eol, eos, eosup *time.Time
		if r.Warranty != nil {
			wStart = r.Warranty.WarrantyStart
			wEnd = r.Warranty.WarrantyEnd
			eol = r.Warranty.EndOfLifeDate
			eos = r.Warranty.EndOfSaleDate
			eosup = r.Warranty.EndOfSupportDate
		}
		records = append(records, []string{
			r.HardwareAssetID, r.Company,
			num(r.Usage.CPU), num(r.Usage.Memory), num(r.Usage.Disk), num(r.Usage.Network),
			num(r.Usage.Overall), num(r.Usage.Normalized),
			strconv.Itoa(r.Incident.Count), num(r.Incident.SeverityScore), num(r.Incident.ImpactScore),
			num(r.Incident.Score), num(r.Incident.Overall),
			num(r.Maintenance.Score), num(r.Maintenance.Overall),
			strconv.Itoa(r.Vulnerability.Count), num(r.Vulnerability.SeverityScore), num(r.Vulnerability.PatchReleasedScore),
			num(r.Vulnerability.StatusScore), num(r.Vulnerability.DetectedAgeScore), num(r.Vulnerability.DetectedTimesScore),
			num(r.Vulnerability.Score), num(r.Vulnerability.Overall),
			day(wStart), day(wEnd), day(eol), day(eos), day(eosup),
			num(r.Composite), num(r.ZScore), string(r.Category),
		})
	}
	return writeCSV(path, header, records)
}

// WriteAll writes every output table of a run into dir, plus the summary
// views derived with opts.
func WriteAll(dir string, res *pipeline.Result, opts summary.Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	usage := make([][]string, 0, len(res.UsageScores))
	for _, s := range res.UsageScores {
		usage = append(usage, []string{
			s.HardwareAssetID, num(s.CPU), num(s.Memory), num(s.Disk), num(s.Network), num(s.Overall), num(s.Normalized),
		})
	}
	if err := writeCSV(filepath.Join(dir, UsageScoresFile),
		[]string{"hardware_asset_id", "w_cpu_usage", "w_memory_usage", "w_disk_usage", "w_network_bandwidth", "overall_usage_score", "n_usage_score"},
		usage); err != nil {
		return err
	}

	incidents := make([][]string, 0, len(res.IncidentScores))
	for _, s := range res.IncidentScores {
		incidents = append(incidents, []string{
			s.HardwareAssetID, num(s.SeverityScore), num(s.ImpactScore), strconv.Itoa(s.Count), num(s.Score), num(s.Overall),
		})
	}
	if err := writeCSV(filepath.Join(dir, IncidentScoresFile),
		[]string{"hardware_asset_id", "severity_score", "impact_score", "incident_count", "incident_score", "overall_incident_score"},
		incidents); err != nil {
		return err
	}

	maintenance := make([][]string, 0, len(res.MaintenanceScores))
	for _, s := range res.MaintenanceScores {
		maintenance = append(maintenance, []string{s.HardwareAssetID, num(s.Score), num(s.Overall)})
	}
	if err := writeCSV(filepath.Join(dir, MaintenanceFile),
		[]string{"hardware_asset_id", "maintenance_score", "overall_maintenance_score"},
		maintenance); err != nil {
		return err
	}

	vulns := make([][]string, 0, len(res.VulnerabilityScores))
	for _, s := range res.VulnerabilityScores {
		vulns = append(vulns, []string{
			s.HardwareAssetID, strconv.Itoa(s.Count), num(s.SeverityScore), num(s.PatchReleasedScore),
			num(s.StatusScore), num(s.DetectedAgeScore), num(s.DetectedTimesScore), num(s.Score), num(s.Overall),
		})
	}
	if err := writeCSV(filepath.Join(dir, VulnerabilityFile),
		[]string{"hardware_asset_id", "vulnerability_count", "vulnerability_severity_score", "vulnerability_patch_released_score", "vulnerability_status_score", "vulnerability_detected_age_score", "vulnerability_detected_times_score", "vulnerability_score", "overall_vulnerability_score"},
		vulns); err != nil {
		return err
	}

	if err := WriteScoredAssets(filepath.Join(dir, ScoredAssetsFile), res.Assets); err != nil {
		return err
	}

	counts := make([][]string, 0, len(res.CategoryCounts))
	for _, c := range res.CategoryCounts {
		counts = append(counts, []string{string(c.Category), strconv.Itoa(c.Count)})
	}
	if err := writeCSV(filepath.Join(dir, CategoryCountsFile),
		[]string{"risk_category", "total_assets"}, counts); err != nil {
		return err
	}

	top := make([][]string, 0, 10)
	for _, c := range summary.TopCompanies(res.Assets, opts) {
		top = append(top, []string{
			c.Company, strconv.Itoa(c.Total), strconv.Itoa(c.Expired), strconv.Itoa(c.ExpiringSoon), strconv.Itoa(c.ExpiringLater),
		})
	}
	if err := writeCSV(filepath.Join(dir, TopCompaniesFile),
		[]string{"company", "total_asset_count", "expired", "expiring_soon", "expiring_later"}, top); err != nil {
		return err
	}

	detail := make([][]string, 0)
	for _, g := range summary.ExpiryDetail(res.Assets, opts) {
		detail = append(detail, []string{
			g.Company, g.EndOfLifeDate.Format("2006-01-02"), strings.Join(g.AssetIDs, ";"), g.Label,
		})
	}
	return writeCSV(filepath.Join(dir, ExpiryDetailFile),
		[]string{"company", "end_of_life_date", "asset_ids", "category"}, detail)
}
