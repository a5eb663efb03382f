// Package ratio derives financial ratios from statement snapshots.
package ratio

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlens-dev/finlens/internal/model"
)

// Precision is the number of decimal places every ratio is rounded to, with
// ties going to the even digit.
const Precision = 2

// Ratio names, in the order Compute emits them.
const (
	CurrentRatio    = "유동비율"
	ReturnOnAssets  = "ROA"
	ReturnOnEquity  = "ROE"
	EquityRatio     = "자기자본비율"
	OperatingMargin = "영업이익률"
	NetMargin       = "순이익률"
	AssetTurnover   = "총자산회전율"
	DebtRatio       = "부채비율"
)

// Candidate account names for each input, tried in order.
var (
	TotalAssets        = []string{"자산총계", "자산총액"}
	CurrentAssets      = []string{"유동자산", "유동자산계"}
	CurrentLiabilities = []string{"유동부채", "유동부채계"}
	TotalLiabilities   = []string{"부채총계", "부채총액"}
	TotalEquity        = []string{"자본총계", "자본총액", "지배기업소유주지분"}
	Revenue            = []string{"매출액", "수익(매출액)"}
	OperatingIncome    = []string{"영업이익", "영업이익(손실)"}
	NetIncome          = []string{"당기순이익", "당기순이익(손실)", "지배기업소유주지분"}
)

// Ratio is one named value.
type Ratio struct {
	Name  string
	Value float64
}

// Set is an ordered collection of ratios. Only ratios whose inputs were
// usable are present.
type Set struct {
	ratios []Ratio
}

func (s *Set) add(name string, v decimal.Decimal) {
	f, _ := v.RoundBank(Precision).Float64()
	s.ratios = append(s.ratios, Ratio{Name: name, Value: f})
}

// Len returns the number of ratios.
func (s Set) Len() int { return len(s.ratios) }

// Get returns the named ratio.
func (s Set) Get(name string) (float64, bool) {
	for _, r := range s.ratios {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

// Ratios returns a copy of the ratios in order.
func (s Set) Ratios() []Ratio {
	return append([]Ratio(nil), s.ratios...)
}

// MarshalJSON encodes the set as an object in ratio order.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range s.ratios {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
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

// Lookup returns the absolute amount of the first entry whose account name
// contains a candidate. Candidates are tried in order; 0 means no match.
func Lookup(snap model.Snapshot, candidates ...string) int64 {
	entries := snap.Entries()
	for _, c := range candidates {
		for _, e := range entries {
			if strings.Contains(e.Account, c) {
				if e.Amount < 0 {
					return -e.Amount
				}
				return e.Amount
			}
		}
	}
	return 0
}

// Compute derives the ratio set from a balance sheet, an income statement and
// a cash-flow statement. A ratio whose denominator is not positive is left
// out. The cash-flow statement currently feeds no ratio.
func Compute(bs, is, cf model.Snapshot) Set {
	var (
		totalAssets   = decimal.NewFromInt(Lookup(bs, TotalAssets...))
		currentAssets = decimal.NewFromInt(Lookup(bs, CurrentAssets...))
		currentLiab   = decimal.NewFromInt(Lookup(bs, CurrentLiabilities...))
		totalLiab     = decimal.NewFromInt(Lookup(bs, TotalLiabilities...))
		totalEquity   = decimal.NewFromInt(Lookup(bs, TotalEquity...))
		revenue       = decimal.NewFromInt(Lookup(is, Revenue...))
		operating     = decimal.NewFromInt(Lookup(is, OperatingIncome...))
		netIncome     = decimal.NewFromInt(Lookup(is, NetIncome...))
	)
	hundred := decimal.NewFromInt(100)
	pct := func(num, den decimal.Decimal) decimal.Decimal {
		return num.Mul(hundred).Div(den)
	}

	var s Set
	if currentLiab.IsPositive() {
		s.add(CurrentRatio, pct(currentAssets, currentLiab))
	}
	if totalAssets.IsPositive() {
		s.add(ReturnOnAssets, pct(netIncome, totalAssets))
	}
	if totalEquity.IsPositive() {
		s.add(ReturnOnEquity, pct(netIncome, totalEquity))
		if totalAssets.IsPositive() {
			s.add(EquityRatio, pct(totalEquity, totalAssets))
		}
	}
	if revenue.IsPositive() {
		s.add(OperatingMargin, pct(operating, revenue))
		s.add(NetMargin, pct(netIncome, revenue))
		if totalAssets.IsPositive() {
			s.add(AssetTurnover, revenue.Div(totalAssets))
		}
	}
	if totalEquity.IsPositive() {
		s.add(DebtRatio, pct(totalLiab, totalEquity))
	}
	return s
}
