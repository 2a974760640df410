package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadAssets(t *testing.T) {
	in := "\ufeffhardware_asset_id,company\nsrv-1,Acme\n,Orphan\nsrv-2, Beta \n"

	assets, err := ReadAssets(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadAssets: %v", err)
	}
	// The BOM on the first column name is stripped, blank IDs are skipped,
	// and cells are trimmed.
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].HardwareAssetID != "srv-1" || assets[0].Company != "Acme" {
		t.Errorf("assets[0] = %+v", assets[0])
	}
	if assets[1].Company != "Beta" {
		t.Errorf("assets[1].Company = %q, want trimmed %q", assets[1].Company, "Beta")
	}
}

func TestReadUsageMissingColumns(t *testing.T) {
	in := "hardware_asset_id,CPU Usage (%)\nsrv-1,50\n"

	_, err := ReadUsage(strings.NewReader(in))
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want MissingColumnsError", err)
	}
	if missing.Table != "hw_servers_usage" {
		t.Errorf("Table = %q", missing.Table)
	}
	want := []string{"Disk Usage (%)", "Memory Usage (%)", "Network Throughput (Mbps)"}
	if len(missing.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", missing.Columns, want)
	}
	for i := range want {
		if missing.Columns[i] != want[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, missing.Columns[i], want[i])
		}
	}
}

func TestReadUsageCoercion(t *testing.T) {
	in := strings.Join([]string{
		"hardware_asset_id,CPU Usage (%),Memory Usage (%),Disk Usage (%),Network Throughput (Mbps)",
		"srv-1,50.5,,not-a-number,120",
	}, "\n")

	records, err := ReadUsage(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadUsage: %v", err)
	}
	r := records[0]
	if r.CPUPercent != 50.5 {
		t.Errorf("CPUPercent = %v", r.CPUPercent)
	}
	if !math.IsNaN(r.MemoryPercent) {
		t.Errorf("empty cell = %v, want NaN", r.MemoryPercent)
	}
	if !math.IsNaN(r.DiskPercent) {
		t.Errorf("garbage cell = %v, want NaN", r.DiskPercent)
	}
	if r.NetworkThroughput != 120 {
		t.Errorf("NetworkThroughput = %v", r.NetworkThroughput)
	}
}

func TestReadWarrantyDates(t *testing.T) {
	in := strings.Join([]string{
		"hardware_asset_id,warranty_end_date,end_of_life_date",
		"srv-1,2026-12-31,not-a-date",
		"srv-2,,2027-01-15 00:00:00",
	}, "\n")

	records, err := ReadWarranty(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadWarranty: %v", err)
	}
	if records[0].WarrantyEnd == nil || !records[0].WarrantyEnd.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("WarrantyEnd = %v", records[0].WarrantyEnd)
	}
	if records[0].EndOfLifeDate != nil {
		t.Errorf("unparseable date = %v, want nil", records[0].EndOfLifeDate)
	}
	if records[1].WarrantyEnd != nil {
		t.Errorf("empty date = %v, want nil", records[1].WarrantyEnd)
	}
	if records[1].EndOfLifeDate == nil {
		t.Error("datetime layout did not parse")
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		AssetsFile:          "hardware_asset_id,company\nsrv-1,Acme\n",
		UsageFile:           "hardware_asset_id,CPU Usage (%),Memory Usage (%),Disk Usage (%),Network Throughput (Mbps)\nsrv-1,50,60,70,100\n",
		IncidentsFile:       "hardware_asset_id,severity,impact\nsrv-1,High,Medium\n",
		MaintenanceFile:     "hardware_asset_id,maintenance_status,maintenance_score\nsrv-1,complete,80\n",
		WarrantyFile:        "hardware_asset_id,end_of_life_date\nsrv-1,2026-06-01\n",
		VulnerabilitiesFile: "hardware_asset_id,severity,status,patch_released,detected_date,detected_times\nsrv-1,Critical,open,no,2025-10-01,3\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := LoadSnapshot(dir)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Assets) != 1 || len(snap.Usage) != 1 || len(snap.Incidents) != 1 ||
		len(snap.Maintenance) != 1 || len(snap.Warranty) != 1 || len(snap.Vulnerabilities) != 1 {
		t.Errorf("snapshot = %+v, want one row per table", snap)
	}
	if snap.Vulnerabilities[0].DetectedTimes != 3 {
		t.Errorf("DetectedTimes = %v", snap.Vulnerabilities[0].DetectedTimes)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, AssetsFile), []byte("hardware_asset_id,company\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSnapshot(dir)
	if err == nil {
		t.Fatal("want error for missing tables")
	}
	if !strings.Contains(err.Error(), UsageFile) {
		t.Errorf("error = %v, want it to name %s", err, UsageFile)
	}
}
