// Package dataset loads the six tabular snapshots the stability pipeline
// consumes and writes the scored tables it produces. Inputs arrive as CSV
// files in a snapshot directory; each table is decoded into typed records
// keyed by hardware_asset_id.
package dataset

import "time"

// Asset is one row of the asset master list. The master list is the
// authoritative key set for the whole run: assets appearing in domain
// tables but not here are dropped.
type Asset struct {
	HardwareAssetID string
	Company         string
}

// UsageRecord is one utilization sample for an asset. A run usually carries
// many samples per asset.
type UsageRecord struct {
	HardwareAssetID   string
	CPUPercent        float64
	MemoryPercent     float64
	DiskPercent       float64
	NetworkThroughput float64 // Mbps
}

// IncidentRecord is one incident ticket. Severity and impact are free-text
// categories matched case-insensitively against the configured score maps.
type IncidentRecord struct {
	HardwareAssetID string
	Severity        string
	Impact          string
}

// MaintenanceRecord is one patch or upgrade event with its numeric score.
type MaintenanceRecord struct {
	HardwareAssetID   string
	MaintenanceStatus string
	MaintenanceScore  float64
}

// WarrantyRecord carries warranty and lifecycle dates for an asset.
// Dates are nullable: an absent or unparseable cell stays nil and is never
// zero-filled downstream.
type WarrantyRecord struct {
	HardwareAssetID     string
	WarrantyStart       *time.Time
	WarrantyEnd         *time.Time
	EndOfLifeDate       *time.Time
	EndOfSaleDate       *time.Time
	EndOfSupportDate    *time.Time
	EndOfExtSupportDate *time.Time
}

// VulnerabilityRecord is one detected vulnerability for an asset.
type VulnerabilityRecord struct {
	HardwareAssetID string
	Severity        string
	Status          string
	PatchReleased   string
	DetectedDate    *time.Time
	DetectedTimes   float64
}

// Snapshot bundles the six input tables of one batch run.
type Snapshot struct {
	Assets          []Asset
	Usage           []UsageRecord
	Incidents       []IncidentRecord
	Maintenance     []MaintenanceRecord
	Warranty        []WarrantyRecord
	Vulnerabilities []VulnerabilityRecord
}
