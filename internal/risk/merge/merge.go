// Package merge assembles the per-domain score tables into one row per
// asset on the master list, applies the missing-value policy, and attaches
// company names.
package merge

import (
	"time"

	"github.com/riskworks/stability/dataset"
	"github.com/riskworks/stability/internal/risk/categorize"
	"github.com/riskworks/stability/internal/risk/score"
)

// ScoredAsset is the merged row for one master-list asset. Domain score
// blocks are nil until Fill runs when the asset had no rows in that domain
// table; Warranty stays nil when absent because lifecycle dates are outside
// the zero-fill policy.
type ScoredAsset struct {
	HardwareAssetID string
	Company         string

	Usage         *score.UsageScore
	Incident      *score.IncidentScore
	Maintenance   *score.MaintenanceScore
	Warranty      *dataset.WarrantyRecord
	Vulnerability *score.VulnerabilityScore

	Composite float64
	ZScore    float64
	Category  categorize.Category
}

// EndOfLifeDate returns the asset's end-of-life date, nil when no warranty
// row carried one.
func (a *ScoredAsset) EndOfLifeDate() *time.Time {
	if a.Warranty == nil {
		return nil
	}
	return a.Warranty.EndOfLifeDate
}

// Merge left-joins the domain score tables against the master list, in the
// fixed order usage, incident, maintenance, warranty, vulnerability.
//
// The master list is the authoritative key set: every distinct master-list
// asset produces exactly one row, and rows in domain tables for assets
// outside the list are silently dropped. A domain table missing an asset
// leaves that block nil; Fill resolves those afterwards.
func Merge(
	assets []dataset.Asset,
	usage []score.UsageScore,
	incidents []score.IncidentScore,
	maintenance []score.MaintenanceScore,
	warranty []dataset.WarrantyRecord,
	vulnerabilities []score.VulnerabilityScore,
) []ScoredAsset {
	usageByID := make(map[string]*score.UsageScore, len(usage))
	for i := range usage {
		if _, ok := usageByID[usage[i].HardwareAssetID]; !ok {
			usageByID[usage[i].HardwareAssetID] = &usage[i]
		}
	}
	incidentByID := make(map[string]*score.IncidentScore, len(incidents))
	for i := range incidents {
		if _, ok := incidentByID[incidents[i].HardwareAssetID]; !ok {
			incidentByID[incidents[i].HardwareAssetID] = &incidents[i]
		}
	}
	maintenanceByID := make(map[string]*score.MaintenanceScore, len(maintenance))
	for i := range maintenance {
		if _, ok := maintenanceByID[maintenance[i].HardwareAssetID]; !ok {
			maintenanceByID[maintenance[i].HardwareAssetID] = &maintenance[i]
		}
	}
	warrantyByID := make(map[string]*dataset.WarrantyRecord, len(warranty))
	for i := range warranty {
		if _, ok := warrantyByID[warranty[i].HardwareAssetID]; !ok {
			warrantyByID[warranty[i].HardwareAssetID] = &warranty[i]
		}
	}
	vulnerabilityByID := make(map[string]*score.VulnerabilityScore, len(vulnerabilities))
	for i := range vulnerabilities {
		if _, ok := vulnerabilityByID[vulnerabilities[i].HardwareAssetID]; !ok {
			vulnerabilityByID[vulnerabilities[i].HardwareAssetID] = &vulnerabilities[i]
		}
	}

	seen := make(map[string]bool, len(assets))
	rows := make([]ScoredAsset, 0, len(assets))
	for _, a := range assets {
		if seen[a.HardwareAssetID] {
			continue
		}
		seen[a.HardwareAssetID] = true

		rows = append(rows, ScoredAsset{
			HardwareAssetID: a.HardwareAssetID,
			Usage:           usageByID[a.HardwareAssetID],
			Incident:        incidentByID[a.HardwareAssetID],
			Maintenance:     maintenanceByID[a.HardwareAssetID],
			Warranty:        warrantyByID[a.HardwareAssetID],
			Vulnerability:   vulnerabilityByID[a.HardwareAssetID],
		})
	}
	return rows
}

// Fill applies the missing-value policy. It is a fixed allow-list, not a
// blanket fill: only the numeric score columns listed below become 0 when
// a domain table had no row for the asset. Everything else, notably the
// warranty and lifecycle dates, stays null.
//
// Allow-listed columns: w_cpu_usage, w_memory_usage, w_disk_usage,
// w_network_bandwidth, overall_usage_score, n_usage_score,
// incident_count, severity_score, impact_score, incident_score,
// overall_incident_score, maintenance_score, overall_maintenance_score,
// vulnerability_count, vulnerability_severity_score,
// vulnerability_patch_released_score, vulnerability_status_score,
// vulnerability_detected_age_score, vulnerability_detected_times_score,
// vulnerability_score, overall_vulnerability_score.
func Fill(rows []ScoredAsset) {
	for i := range rows {
		id := rows[i].HardwareAssetID
		if rows[i].Usage == nil {
			rows[i].Usage = &score.UsageScore{HardwareAssetID: id}
		}
		if rows[i].Incident == nil {
			rows[i].Incident = &score.IncidentScore{HardwareAssetID: id}
		}
		if rows[i].Maintenance == nil {
			rows[i].Maintenance = &score.MaintenanceScore{HardwareAssetID: id}
		}
		if rows[i].Vulnerability == nil {
			rows[i].Vulnerability = &score.VulnerabilityScore{HardwareAssetID: id}
		}
	}
}

// AttachCompanies fills the company column from the master list's
// id-to-company mapping. First occurrence wins on duplicate master rows.
func AttachCompanies(rows []ScoredAsset, assets []dataset.Asset) {
	companies := make(map[string]string, len(assets))
	for _, a := range assets {
		if _, ok := companies[a.HardwareAssetID]; !ok {
			companies[a.HardwareAssetID] = a.Company
		}
	}
	for i := range rows {
		rows[i].Company = companies[rows[i].HardwareAssetID]
	}
}
