// Package compare aligns snapshots across periods and computes growth.
package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/finlens-dev/finlens/internal/model"
)

// Rounding and zero-base policy. The two modes round to different places and
// only the chain applies a sentinel; consumers rely on both. Ties round to
// even.
const (
	PairwisePrecision = 1
	ChainPrecision    = 2
	ZeroBaseSentinel  = 100
)

// GrowthRecord is the change of one account between two periods.
type GrowthRecord struct {
	GrowthRate float64 `json:"growth_rate"`
	Delta      int64   `json:"increase_amount"`
	Current    int64   `json:"current"`
	Previous   int64   `json:"previous"`
}

// AccountGrowth pairs an account with its record.
type AccountGrowth struct {
	Account string
	GrowthRecord
}

// Growth is an ordered account -> GrowthRecord mapping.
type Growth struct {
	records []AccountGrowth
}

// Len returns the number of accounts.
func (g Growth) Len() int { return len(g.records) }

// Get returns the record for account.
func (g Growth) Get(account string) (GrowthRecord, bool) {
	for _, r := range g.records {
		if r.Account == account {
			return r.GrowthRecord, true
		}
	}
	return GrowthRecord{}, false
}

// Records returns a copy of the records in order.
func (g Growth) Records() []AccountGrowth {
	return append([]AccountGrowth(nil), g.records...)
}

// MarshalJSON encodes the growth as an object in account order.
func (g Growth) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range g.records {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Account)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.GrowthRecord)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Pairwise compares current against previous. Every account of current that
// previous also holds with a non-zero amount gets a record, in current's
// order. The rate is relative to |previous| and rounded to PairwisePrecision.
func Pairwise(current, previous model.Snapshot) Growth {
	var g Growth
	for _, e := range current.Entries() {
		prev, ok := previous.Get(e.Account)
		if !ok || prev == 0 {
			continue
		}
		g.records = append(g.records, AccountGrowth{
			Account: e.Account,
			GrowthRecord: GrowthRecord{
				GrowthRate: rate(e.Amount, prev, PairwisePrecision),
				Delta:      e.Amount - prev,
				Current:    e.Amount,
				Previous:   prev,
			},
		})
	}
	return g
}

func rate(cur, prev int64, places int32) float64 {
	d := decimal.NewFromInt(cur - prev).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(prev).Abs()).
		RoundBank(places)
	f, _ := d.Float64()
	return f
}

// Rate is a single growth value of a chain step.
type Rate struct {
	Account string
	Value   float64
}

// ChainStep is the growth between two consecutive years.
type ChainStep struct {
	FromYear int
	ToYear   int
	Rates    []Rate
}

// Label returns the display label, e.g. "2022년→2023년".
func (s ChainStep) Label() string {
	return fmt.Sprintf("%d년→%d년", s.FromYear, s.ToYear)
}

// Get returns the rate for account.
func (s ChainStep) Get(account string) (float64, bool) {
	for _, r := range s.Rates {
		if r.Account == account {
			return r.Value, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the rates as an object in account order.
func (s ChainStep) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range s.Rates {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Account)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(r.Value, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Chain computes growth between each pair of consecutive years, ascending.
// For a zero previous amount the rate is 0 when the current amount is also
// zero and ZeroBaseSentinel otherwise. Fewer than two years yield no steps.
func Chain(byYear map[int]model.Snapshot) []ChainStep {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var steps []ChainStep
	for i := 1; i < len(years); i++ {
		from, to := years[i-1], years[i]
		prevSnap, curSnap := byYear[from], byYear[to]

		step := ChainStep{FromYear: from, ToYear: to}
		for _, e := range curSnap.Entries() {
			prev, ok := prevSnap.Get(e.Account)
			if !ok {
				continue
			}
			var v float64
			switch {
			case prev != 0:
				v = rate(e.Amount, prev, ChainPrecision)
			case e.Amount != 0:
				v = ZeroBaseSentinel
			}
			step.Rates = append(step.Rates, Rate{Account: e.Account, Value: v})
		}
		steps = append(steps, step)
	}
	return steps
}
