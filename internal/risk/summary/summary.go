// Package summary derives the reporting views from the final scored table:
// risk-category counts and the expiry-window breakdowns of High Risk assets.
package summary

import (
	"sort"
	"time"

	"github.com/riskworks/stability/internal/risk/categorize"
	"github.com/riskworks/stability/internal/risk/merge"
)

// ExpiryWindow is how far past "now" an end-of-life date still counts as
// expiring soon.
const ExpiryWindow = 30 * 24 * time.Hour

// Expiry bucket labels used in the detail export.
const (
	LabelExpired       = "expired"
	LabelExpiringSoon  = "expiring_within_a_month"
	LabelExpiringLater = "expiring_later"
)

// Options configure the summary derivations. Now anchors the expiry
// buckets; the zero value means wall-clock time. Tests inject a fixed
// instant to stay deterministic.
type Options struct {
	Now time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// CategoryCount is the number of assets in one risk tier.
type CategoryCount struct {
	Category categorize.Category `json:"risk_category"`
	Count    int                 `json:"total_assets"`
}

// CategoryCounts counts assets per risk tier. The three named tiers always
// appear, in High/Moderate/Low order, even when empty; Unknown appears only
// when present.
func CategoryCounts(rows []merge.ScoredAsset) []CategoryCount {
	byCategory := make(map[categorize.Category]int)
	for i := range rows {
		byCategory[rows[i].Category]++
	}

	counts := []CategoryCount{
		{Category: categorize.HighRisk, Count: byCategory[categorize.HighRisk]},
		{Category: categorize.ModerateRisk, Count: byCategory[categorize.ModerateRisk]},
		{Category: categorize.LowRisk, Count: byCategory[categorize.LowRisk]},
	}
	if n := byCategory[categorize.Unknown]; n > 0 {
		counts = append(counts, CategoryCount{Category: categorize.Unknown, Count: n})
	}
	return counts
}

// CompanyExpiry is one company's High Risk asset counts per expiry bucket.
type CompanyExpiry struct {
	Company       string `json:"company"`
	Total         int    `json:"total_asset_count"`
	Expired       int    `json:"expired"`
	ExpiringSoon  int    `json:"expiring_soon"`
	ExpiringLater int    `json:"expiring_later"`
}

// bucket places an end-of-life date relative to now. Empty string means the
// date is missing and the asset falls outside every bucket.
func bucket(eol *time.Time, now time.Time) string {
	if eol == nil {
		return ""
	}
	switch {
	case eol.Before(now):
		return LabelExpired
	case !eol.After(now.Add(ExpiryWindow)):
		return LabelExpiringSoon
	default:
		return LabelExpiringLater
	}
}

// TopCompanies aggregates High Risk assets per company across the three
// expiry buckets, filling absent combinations with 0, and returns the top
// 10 companies by total count (ties broken by company name).
func TopCompanies(rows []merge.ScoredAsset, opts Options) []CompanyExpiry {
	now := opts.now()

	byCompany := make(map[string]*CompanyExpiry)
	for i := range rows {
		if rows[i].Category != categorize.HighRisk {
			continue
		}
		b := bucket(rows[i].EndOfLifeDate(), now)
		if b == "" {
			continue
		}

		c := byCompany[rows[i].Company]
		if c == nil {
			c = &CompanyExpiry{Company: rows[i].Company}
			byCompany[rows[i].Company] = c
		}
		switch b {
		case LabelExpired:
			c.Expired++
		case LabelExpiringSoon:
			c.ExpiringSoon++
		case LabelExpiringLater:
			c.ExpiringLater++
		}
		c.Total++
	}

	summary := make([]CompanyExpiry, 0, len(byCompany))
	for _, c := range byCompany {
		summary = append(summary, *c)
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Total != summary[j].Total {
			return summary[i].Total > summary[j].Total
		}
		return summary[i].Company < summary[j].Company
	})

	if len(summary) > 10 {
		summary = summary[:10]
	}
	return summary
}

// ExpiryGroup is one (company, end-of-life date) group of High Risk assets
// within an expiry bucket, retaining the asset IDs for detailed export.
type ExpiryGroup struct {
	Company       string    `json:"company"`
	EndOfLifeDate time.Time `json:"end_of_life_date"`
	AssetIDs      []string  `json:"asset_ids"`
	Label         string    `json:"category"`
}

// ExpiryDetail groups High Risk assets by (company, end-of-life date) with
// their asset-ID lists. Groups come back bucket by bucket, expired first,
// then expiring within a month, then expiring later; within a bucket they
// are sorted by company and date.
func ExpiryDetail(rows []merge.ScoredAsset, opts Options) []ExpiryGroup {
	now := opts.now()

	type key struct {
		company string
		eol     time.Time
	}
	grouped := map[string]map[key][]string{
		LabelExpired:       {},
		LabelExpiringSoon:  {},
		LabelExpiringLater: {},
	}

	for i := range rows {
		if rows[i].Category != categorize.HighRisk {
			continue
		}
		eol := rows[i].EndOfLifeDate()
		b := bucket(eol, now)
		if b == "" {
			continue
		}
		k := key{company: rows[i].Company, eol: *eol}
		grouped[b][k] = append(grouped[b][k], rows[i].HardwareAssetID)
	}

	var out []ExpiryGroup
	for _, label := range []string{LabelExpired, LabelExpiringSoon, LabelExpiringLater} {
		groups := grouped[label]
		keys := make([]key, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].company != keys[j].company {
				return keys[i].company < keys[j].company
			}
			return keys[i].eol.Before(keys[j].eol)
		})
		for _, k := range keys {
			ids := groups[k]
			sort.Strings(ids)
			out = append(out, ExpiryGroup{
				Company:       k.company,
				EndOfLifeDate: k.eol,
				AssetIDs:      ids,
				Label:         label,
			})
		}
	}
	return out
}
