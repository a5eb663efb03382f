package model

import (
	"fmt"
	"strings"
)

// StatementType identifies a financial statement (DART "sj_div").
type StatementType string

const (
	StatementBS  StatementType = "BS"  // balance sheet
	StatementIS  StatementType = "IS"  // income statement
	StatementCIS StatementType = "CIS" // comprehensive income statement
	StatementCF  StatementType = "CF"  // cash-flow statement
	StatementSCE StatementType = "SCE" // statement of changes in equity
)

// ParseStatementType normalizes s (case-insensitive) into a StatementType.
func ParseStatementType(s string) (StatementType, error) {
	st := StatementType(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatementBS, StatementIS, StatementCIS, StatementCF, StatementSCE:
		return st, nil
	default:
		return "", fmt.Errorf("unknown statement type %q", s)
	}
}

// Scope is the consolidation scope of a statement (DART "fs_div").
type Scope string

const (
	ScopeConsolidated Scope = "CFS"
	ScopeSeparate     Scope = "OFS"
)

// ParseScope returns the scope for s. Anything other than OFS is treated as
// consolidated, which is what the disclosure service does with unknown values.
func ParseScope(s string) Scope {
	if Scope(strings.ToUpper(strings.TrimSpace(s))) == ScopeSeparate {
		return ScopeSeparate
	}
	return ScopeConsolidated
}

// DisplayName returns the Korean label used in responses.
func (s Scope) DisplayName() string {
	if s == ScopeSeparate {
		return "별도재무제표"
	}
	return "연결재무제표"
}

// ReportCode identifies a periodic report (DART "reprt_code").
type ReportCode string

const (
	ReportQ1     ReportCode = "11013"
	ReportHalf   ReportCode = "11012"
	ReportQ3     ReportCode = "11014"
	ReportAnnual ReportCode = "11011"
)

// Quarter pairs a quarter label with the report that covers it.
type Quarter struct {
	Label string
	Code  ReportCode
}

var quarters = []Quarter{
	{Label: "Q1", Code: ReportQ1},
	{Label: "Q2", Code: ReportHalf},
	{Label: "Q3", Code: ReportQ3},
	{Label: "Q4", Code: ReportAnnual},
}

// Quarters returns Q1..Q4 in calendar order.
func Quarters() []Quarter {
	out := make([]Quarter, len(quarters))
	copy(out, quarters)
	return out
}

// QuarterReportCode maps "Q1".."Q4" to a report code, defaulting to the
// annual report for anything else.
func QuarterReportCode(label string) ReportCode {
	label = strings.ToUpper(strings.TrimSpace(label))
	for _, q := range quarters {
		if q.Label == label {
			return q.Code
		}
	}
	return ReportAnnual
}

// PeriodKey identifies the reporting period of a line item.
type PeriodKey struct {
	Year       int
	ReportCode ReportCode
}

func (p PeriodKey) String() string {
	return fmt.Sprintf("%04d/%s", p.Year, p.ReportCode)
}

// LineItem is a single disclosed account value as delivered by the
// disclosure service. RawAmount is the unparsed, locale-formatted string.
type LineItem struct {
	AccountName   string
	RawAmount     string
	StatementType StatementType
	Scope         Scope
	Period        PeriodKey
}
