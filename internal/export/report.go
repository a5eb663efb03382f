package export

import (
	"fmt"

	"github.com/finlens-dev/finlens/internal/analysis"
)

// ContentType is the media type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func columns(p analysis.Periods) []Column {
	cols := make([]Column, 0, len(p))
	for _, l := range p {
		cols = append(cols, Column{Label: l.Label, Snapshot: l.Snapshot})
	}
	return cols
}

func build(fill func(w *Workbook) error) (*Workbook, error) {
	w, err := NewWorkbook()
	if err != nil {
		return nil, err
	}
	if err := fill(w); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// RatiosReport writes one sheet per statement followed by the ratio sheet.
func RatiosReport(res *analysis.RatiosResult) (*Workbook, error) {
	if res == nil || !res.Success {
		return nil, fmt.Errorf("no ratio data to export")
	}
	return build(func(w *Workbook) error {
		for _, l := range res.Statements {
			label := fmt.Sprintf("%d년", res.Year)
			if err := w.AddStatement(l.Label, []Column{{Label: label, Snapshot: l.Snapshot}}); err != nil {
				return err
			}
		}
		return w.AddRatios("재무비율", res.Ratios)
	})
}

// ComparisonReport writes both periods side by side and the growth sheet.
func ComparisonReport(res *analysis.ComparisonResult) (*Workbook, error) {
	if res == nil {
		return nil, fmt.Errorf("no comparison to export")
	}
	return build(func(w *Workbook) error {
		if err := w.AddStatement(string(res.StatementType), columns(res.Data)); err != nil {
			return err
		}
		return w.AddGrowth("증감분석", res.GrowthAnalysis)
	})
}

// MultiYearReport writes the yearly snapshots and the growth chain.
func MultiYearReport(res *analysis.MultiYearResult) (*Workbook, error) {
	if res == nil {
		return nil, fmt.Errorf("no multi-year data to export")
	}
	return build(func(w *Workbook) error {
		if err := w.AddStatement(string(res.StatementType), columns(res.Data)); err != nil {
			return err
		}
		return w.AddChain("성장률", res.GrowthRates)
	})
}

// QuarterlyReport writes the quarters of one year side by side.
func QuarterlyReport(res *analysis.QuarterlyResult) (*Workbook, error) {
	if res == nil {
		return nil, fmt.Errorf("no quarterly data to export")
	}
	return build(func(w *Workbook) error {
		return w.AddStatement(fmt.Sprintf("%s %d", res.StatementType, res.Year), columns(res.Data))
	})
}
