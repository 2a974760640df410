package summary

import (
	"testing"
	"time"

	"github.com/riskworks/stability/dataset"
	"github.com/riskworks/stability/internal/risk/categorize"
	"github.com/riskworks/stability/internal/risk/merge"
)

var testNow = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func highRiskAsset(id, company string, eol *time.Time) merge.ScoredAsset {
	a := merge.ScoredAsset{
		HardwareAssetID: id,
		Company:         company,
		Category:        categorize.HighRisk,
	}
	if eol != nil {
		a.Warranty = &dataset.WarrantyRecord{HardwareAssetID: id, EndOfLifeDate: eol}
	}
	return a
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCategoryCounts(t *testing.T) {
	rows := []merge.ScoredAsset{
		{Category: categorize.LowRisk},
		{Category: categorize.HighRisk},
		{Category: categorize.LowRisk},
	}

	counts := CategoryCounts(rows)
	want := []CategoryCount{
		{Category: categorize.HighRisk, Count: 1},
		{Category: categorize.ModerateRisk, Count: 0},
		{Category: categorize.LowRisk, Count: 2},
	}
	if len(counts) != len(want) {
		t.Fatalf("got %d rows, want %d", len(counts), len(want))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestCategoryCountsUnknownOnlyWhenPresent(t *testing.T) {
	rows := []merge.ScoredAsset{{Category: categorize.Unknown}}

	counts := CategoryCounts(rows)
	if len(counts) != 4 {
		t.Fatalf("got %d rows, want 4 with an Unknown tier", len(counts))
	}
	last := counts[3]
	if last.Category != categorize.Unknown || last.Count != 1 {
		t.Errorf("last row = %+v, want Unknown with count 1", last)
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		name string
		eol  *time.Time
		want string
	}{
		{"missing date", nil, ""},
		{"day before now", date(2026, 1, 31), LabelExpired},
		{"exactly now", &testNow, LabelExpiringSoon},
		{"inside window", date(2026, 2, 20), LabelExpiringSoon},
		{"window edge", date(2026, 3, 3), LabelExpiringSoon},
		{"past window", date(2026, 4, 1), LabelExpiringLater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bucket(tt.eol, testNow); got != tt.want {
				t.Errorf("bucket = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTopCompanies(t *testing.T) {
	rows := []merge.ScoredAsset{
		highRiskAsset("a1", "Acme", date(2025, 6, 1)),
		highRiskAsset("a2", "Acme", date(2026, 2, 15)),
		highRiskAsset("a3", "Acme", date(2027, 1, 1)),
		highRiskAsset("b1", "Beta", date(2025, 1, 1)),
		highRiskAsset("b2", "Beta", nil), // no date, outside every bucket
		{HardwareAssetID: "c1", Company: "Gamma", Category: categorize.LowRisk,
			Warranty: &dataset.WarrantyRecord{EndOfLifeDate: date(2025, 1, 1)}},
	}

	got := TopCompanies(rows, Options{Now: testNow})
	if len(got) != 2 {
		t.Fatalf("got %d companies, want 2", len(got))
	}

	acme := got[0]
	if acme.Company != "Acme" || acme.Total != 3 {
		t.Fatalf("first = %+v, want Acme with 3 assets", acme)
	}
	if acme.Expired != 1 || acme.ExpiringSoon != 1 || acme.ExpiringLater != 1 {
		t.Errorf("Acme buckets = %+v, want 1/1/1", acme)
	}

	beta := got[1]
	if beta.Company != "Beta" || beta.Total != 1 || beta.Expired != 1 {
		t.Errorf("second = %+v, want Beta with 1 expired asset", beta)
	}
}

func TestTopCompaniesTieBreakAndLimit(t *testing.T) {
	var rows []merge.ScoredAsset
	names := []string{"k", "b", "g", "c", "j", "a", "h", "d", "i", "e", "f", "l"}
	for i, name := range names {
		rows = append(rows, highRiskAsset(name+"-asset", name, date(2025, 1, 1+i)))
	}

	got := TopCompanies(rows, Options{Now: testNow})
	if len(got) != 10 {
		t.Fatalf("got %d companies, want the top 10", len(got))
	}
	// Equal totals fall back to company-name order.
	for i := 1; i < len(got); i++ {
		if got[i-1].Company >= got[i].Company {
			t.Fatalf("companies out of order: %q before %q", got[i-1].Company, got[i].Company)
		}
	}
	if got[0].Company != "a" || got[9].Company != "j" {
		t.Errorf("range = %q..%q, want a..j", got[0].Company, got[9].Company)
	}
}

func TestExpiryDetail(t *testing.T) {
	rows := []merge.ScoredAsset{
		highRiskAsset("x2", "Acme", date(2025, 6, 1)),
		highRiskAsset("x1", "Acme", date(2025, 6, 1)),
		highRiskAsset("y1", "Beta", date(2026, 2, 10)),
		highRiskAsset("z1", "Acme", date(2027, 5, 1)),
	}

	got := ExpiryDetail(rows, Options{Now: testNow})
	if len(got) != 3 {
		t.Fatalf("got %d groups, want 3", len(got))
	}

	first := got[0]
	if first.Label != LabelExpired || first.Company != "Acme" {
		t.Fatalf("first group = %+v, want Acme expired", first)
	}
	if len(first.AssetIDs) != 2 || first.AssetIDs[0] != "x1" || first.AssetIDs[1] != "x2" {
		t.Errorf("first group IDs = %v, want sorted [x1 x2]", first.AssetIDs)
	}
	if got[1].Label != LabelExpiringSoon || got[1].Company != "Beta" {
		t.Errorf("second group = %+v, want Beta expiring soon", got[1])
	}
	if got[2].Label != LabelExpiringLater || got[2].Company != "Acme" {
		t.Errorf("third group = %+v, want Acme expiring later", got[2])
	}
}
