package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Default file names inside a snapshot directory. They match the blob
// layout the upstream inventory exports.
const (
	AssetsFile          = "hw_servers.csv"
	UsageFile           = "hw_servers_usage.csv"
	IncidentsFile       = "hw_incidents.csv"
	MaintenanceFile     = "patchupgrades.csv"
	WarrantyFile        = "hw_warranty.csv"
	VulnerabilitiesFile = "hw_vulnerabilities.csv"
)

// MissingColumnsError reports required columns absent from an input table.
// Schema failures abort the run; the message names every missing column.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// header maps normalized column names to their index in a CSV row.
type header map[string]int

// readHeader parses the first CSV record into a column index. A UTF-8 byte
// order mark on the first cell is stripped, and names are trimmed, so
// exports from spreadsheet tools resolve to clean ASCII column names.
func readHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		name = strings.TrimPrefix(name, "\ufeff")
		h[strings.TrimSpace(name)] = i
	}
	return h
}

// require verifies that every named column is present, returning a
// MissingColumnsError listing the absent ones.
func (h header) require(table string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingColumnsError{Table: table, Columns: missing}
	}
	return nil
}

func (h header) get(record []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// float coerces a cell to a number. Empty or unparseable cells become NaN
// rather than an error; downstream treats NaN as a missing value.
func (h header) float(record []string, column string) float64 {
	s := h.get(record, column)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

// date coerces a cell to a date, nil when empty or unparseable.
func (h header) date(record []string, column string) *time.Time {
	s := h.get(record, column)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// readTable reads all rows of one CSV table, validates required columns,
// and passes each data row to decode.
func readTable(r io.Reader, table string, required []string, decode func(h header, record []string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return &MissingColumnsError{Table: table, Columns: required}
	}
	if err != nil {
		return fmt.Errorf("%s: reading header: %w", table, err)
	}

	h := readHeader(first)
	if err := h.require(table, required...); err != nil {
		return err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: reading row: %w", table, err)
		}
		decode(h, record)
	}
}

// ReadAssets decodes the asset master list.
func ReadAssets(r io.Reader) ([]Asset, error) {
	var assets []Asset
	err := readTable(r, "hw_servers", []string{"hardware_asset_id", "company"}, func(h header, rec []string) {
		id := h.get(rec, "hardware_asset_id")
		if id == "" {
			return
		}
		assets = append(assets, Asset{
			HardwareAssetID: id,
			Company:         h.get(rec, "company"),
		})
	})
	return assets, err
}

// ReadUsage decodes utilization samples.
func ReadUsage(r io.Reader) ([]UsageRecord, error) {
	required := []string{"hardware_asset_id", "CPU Usage (%)", "Memory Usage (%)", "Disk Usage (%)", "Network Throughput (Mbps)"}
	var records []UsageRecord
	err := readTable(r, "hw_servers_usage", required, func(h header, rec []string) {
		id := h.get(rec, "hardware_asset_id")
		if id == "" {
			return
		}
		records = append(records, UsageRecord{
			HardwareAssetID:   id,
			CPUPercent:        h.float(rec, "CPU Usage (%)"),
			MemoryPercent:     h.float(rec, "Memory Usage (%)"),
			DiskPercent:       h.float(rec, "Disk Usage (%)"),
			NetworkThroughput: h.float(rec, "Network Throughput (Mbps)"),
		})
	})
	return records, err
}

// ReadIncidents decodes incident tickets. Missing severity or impact cells
// become empty strings, which score 0 downstream.
func ReadIncidents(r io.Reader) ([]IncidentRecord, error) {
	required := []string{"hardware_asset_id", "severity", "impact"}
	var records []IncidentRecord
	err := readTable(r, "hw_incidents", required, func(h header, rec []string) {
		id := h.get(rec, "hardware_asset_id")
		if id == "" {
			return
		}
		records = append(records, IncidentRecord{
			HardwareAssetID: id,
			Severity:        h.get(rec, "severity"),
			Impact:          h.get(rec, "impact"),
		})
	})
	return records, err
}

// ReadMaintenance decodes patch and upgrade events.
func ReadMaintenance(r io.Reader) ([]MaintenanceRecord, error) {
	required := []string{"hardware_asset_id", "maintenance_status", "maintenance_score"}
	var records []MaintenanceRecord
	err := readTable(r, "patchupgrades", required, func(h header, rec []string) {
		id := h.get(rec, "hardware_asset_id")
		if id == "" {
			return
		}
		records = append(records, MaintenanceRecord{
			HardwareAssetID:   id,
			MaintenanceStatus: h.get(rec, "maintenance_status"),
			MaintenanceScore:  h.float(rec, "maintenance_score"),
		})
	})
	return records, err
}

// ReadWarranty decodes warranty and lifecycle dates.
func ReadWarranty(r io.Reader) ([]WarrantyRecord, error) {
	required := []string{"hardware_asset_id"}
	var records []WarrantyRecord
	err := readTable(r, "hw_warranty", required, func(h header, rec []string) {
		id := h.get(rec, "hardware_asset_id")
		if id == "" {
			return
		}
		records = append(records, WarrantyRecord{
			HardwareAssetID:     id,
			WarrantyStart:       h.date(rec, "warranty_start_date"),
			WarrantyEnd:         h.date(rec, "warranty_end_date"),
			EndOfLifeDate:       h.date(rec, "end_of_life_date"),
			EndOfSaleDate:       h.date(rec, "end_of_sale_date"),
			EndOfSupportDate:    h.date(rec, "end_of_support_date"),
			EndOfExtSupportDate: h.date(rec, "end_of_extended_support_date"),
		})
	})
	return records, err
}

// ReadVulnerabilities decodes vulnerability findings.
func ReadVulnerabilities(r io.Reader) ([]VulnerabilityRecord, error) {
	required := []string{"hardware_asset_id", "severity", "status"}
	var records []VulnerabilityRecord
	err := readTable(r, "hw_vulnerabilities", required, func(h header, rec []string) {
		id := h.get(rec, "hardware_asset_id")
		if id == "" {
			return
		}
		records = append(records, VulnerabilityRecord{
			HardwareAssetID: id,
			Severity:        h.get(rec, "severity"),
			Status:          h.get(rec, "status"),
			PatchReleased:   h.get(rec, "patch_released"),
			DetectedDate:    h.date(rec, "detected_date"),
			DetectedTimes:   h.float(rec, "detected_times"),
		})
	})
	return records, err
}

// LoadSnapshot reads all six input tables from a snapshot directory.
// The first schema failure aborts the load.
func LoadSnapshot(dir string) (*Snapshot, error) {
	snap := &Snapshot{}

	load := func(name string, read func(io.Reader) error) error {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		defer f.Close()
		return read(f)
	}

	steps := []struct {
		file string
		read func(io.Reader) error
	}{
		{AssetsFile, func(r io.Reader) (err error) { snap.Assets, err = ReadAssets(r); return }},
		{UsageFile, func(r io.Reader) (err error) { snap.Usage, err = ReadUsage(r); return }},
		{IncidentsFile, func(r io.Reader) (err error) { snap.Incidents, err = ReadIncidents(r); return }},
		{MaintenanceFile, func(r io.Reader) (err error) { snap.Maintenance, err = ReadMaintenance(r); return }},
		{WarrantyFile, func(r io.Reader) (err error) { snap.Warranty, err = ReadWarranty(r); return }},
		{VulnerabilitiesFile, func(r io.Reader) (err error) { snap.Vulnerabilities, err = ReadVulnerabilities(r); return }},
	}

	for _, s := range steps {
		if err := load(s.file, s.read); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
