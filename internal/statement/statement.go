// Package statement turns disclosed line items into ordered snapshots.
package statement

import (
	"slices"
	"strings"

	"github.com/finlens-dev/finlens/internal/amount"
	"github.com/finlens-dev/finlens/internal/model"
	"github.com/finlens-dev/finlens/internal/taxonomy"
)

// BuildStats describes a snapshot build.
type BuildStats struct {
	Filtered   int // line items of the requested statement type
	Defaulted  int // amounts that could not be parsed and became zero
	Duplicates int // repeated account names that were dropped

	// Malformed lists kept accounts whose amount was present but unreadable.
	// Their zero is not a disclosed value. Empty amounts are not listed.
	Malformed []string
}

// IsMalformed reports whether account's kept amount was unreadable.
func (s BuildStats) IsMalformed(account string) bool {
	return slices.Contains(s.Malformed, account)
}

// Build selects items of statement type st and collects their amounts in
// encounter order. Malformed amounts become zero; a repeated account name
// keeps its first amount.
func Build(items []model.LineItem, st model.StatementType) (model.Snapshot, BuildStats) {
	var (
		snap  model.Snapshot
		stats BuildStats
	)
	for _, item := range items {
		if item.StatementType != st {
			continue
		}
		stats.Filtered++

		v := amount.Parse(item.RawAmount)
		if v.Defaulted {
			stats.Defaulted++
		}
		if !snap.Add(item.AccountName, v.Amount) {
			stats.Duplicates++
			continue
		}
		if v.Defaulted && strings.TrimSpace(item.RawAmount) != "" {
			stats.Malformed = append(stats.Malformed, item.AccountName)
		}
	}
	return snap, stats
}

// Canonicalize reorders snap into the presentation order tx defines for st.
//
// Each canonical name, in taxonomy order, claims the first unplaced input key
// that matches it (see taxonomy.Match). Keys no canonical name claimed follow
// in their original order. A statement type without a taxonomy is returned
// unchanged.
func Canonicalize(snap model.Snapshot, st model.StatementType, tx *taxonomy.Taxonomy) model.Snapshot {
	cats, ok := tx.Categories(st)
	if !ok {
		return snap
	}

	entries := snap.Entries()
	placed := make([]bool, len(entries))
	var out model.Snapshot

	for _, c := range cats {
		for _, canonical := range c.Accounts {
			for i, e := range entries {
				if placed[i] {
					continue
				}
				if taxonomy.Match(e.Account, canonical) != taxonomy.MatchNone {
					out.Add(e.Account, e.Amount)
					placed[i] = true
					break
				}
			}
		}
	}

	for i, e := range entries {
		if !placed[i] {
			out.Add(e.Account, e.Amount)
		}
	}
	return out
}

// BuildCanonical is Build followed by Canonicalize.
func BuildCanonical(items []model.LineItem, st model.StatementType, tx *taxonomy.Taxonomy) (model.Snapshot, BuildStats) {
	snap, stats := Build(items, st)
	return Canonicalize(snap, st, tx), stats
}
