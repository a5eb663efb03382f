// Package consolidation compares consolidated and separate statements of the
// same period.
package consolidation

import "github.com/finlens-dev/finlens/internal/model"

// DefaultLimit is the number of common accounts examined when the caller
// passes a non-positive limit.
const DefaultLimit = 10

// DiffRecord is an account whose amounts differ between the two scopes.
type DiffRecord struct {
	Account      string `json:"account"`
	Consolidated int64  `json:"cfs_amount"`
	Separate     int64  `json:"ofs_amount"`
	Difference   int64  `json:"difference"`
}

// Result is the outcome of Diff.
type Result struct {
	ConsolidatedCount int          `json:"cfs_filtered_count"`
	SeparateCount     int          `json:"ofs_filtered_count"`
	CommonAccounts    int          `json:"common_accounts"`
	Different         []DiffRecord `json:"different_accounts"`
	HasDifference     bool         `json:"has_difference"`
}

// Diff examines up to limit accounts present in both snapshots, in
// consolidated order, and records those whose amounts differ.
// Difference is consolidated minus separate. Accounts for which skip reports
// true still count as common and use up the limit but are never recorded;
// skip may be nil.
func Diff(consolidated, separate model.Snapshot, limit int, skip func(account string) bool) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	res := Result{
		ConsolidatedCount: consolidated.Len(),
		SeparateCount:     separate.Len(),
		Different:         []DiffRecord{},
	}

	var common []model.Entry
	for _, e := range consolidated.Entries() {
		if separate.Has(e.Account) {
			common = append(common, e)
		}
	}
	res.CommonAccounts = len(common)

	if len(common) > limit {
		common = common[:limit]
	}
	for _, e := range common {
		if skip != nil && skip(e.Account) {
			continue
		}
		sep, _ := separate.Get(e.Account)
		if e.Amount == sep {
			continue
		}
		res.Different = append(res.Different, DiffRecord{
			Account:      e.Account,
			Consolidated: e.Amount,
			Separate:     sep,
			Difference:   e.Amount - sep,
		})
	}
	res.HasDifference = len(res.Different) > 0
	return res
}
