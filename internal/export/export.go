// Package export writes analysis results to xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/finlens-dev/finlens/internal/compare"
	"github.com/finlens-dev/finlens/internal/model"
	"github.com/finlens-dev/finlens/internal/ratio"
)

// Column is one period of a statement sheet.
type Column struct {
	Label    string
	Snapshot model.Snapshot
}

// Workbook accumulates sheets. The first sheet added replaces the blank
// default sheet.
type Workbook struct {
	f      *excelize.File
	sheets int
	header int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	return &Workbook{f: f, header: header}, nil
}

func (w *Workbook) sheet(name string) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("naming sheet %s: %w", name, err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("adding sheet %s: %w", name, err)
	}
	w.sheets++
	return nil
}

func (w *Workbook) headerRow(sheet string, cells []any) error {
	if err := w.f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("writing header of %s: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(cells), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		return fmt.Errorf("styling header of %s: %w", sheet, err)
	}
	return w.f.SetColWidth(sheet, "A", "A", 36)
}

func (w *Workbook) row(sheet string, n int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, n, err)
	}
	return nil
}

// AddStatement adds a sheet with one row per account and one column per
// period. Accounts appear in first-seen order across the columns; a period
// missing an account leaves its cell empty.
func (w *Workbook) AddStatement(name string, cols []Column) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	header := []any{"계정"}
	for _, c := range cols {
		header = append(header, c.Label)
	}
	if err := w.headerRow(name, header); err != nil {
		return err
	}

	var accounts []string
	seen := make(map[string]bool)
	for _, c := range cols {
		for _, k := range c.Snapshot.Keys() {
			if !seen[k] {
				seen[k] = true
				accounts = append(accounts, k)
			}
		}
	}

	for i, account := range accounts {
		cells := []any{account}
		for _, c := range cols {
			if v, ok := c.Snapshot.Get(account); ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, nil)
			}
		}
		if err := w.row(name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// AddGrowth adds a sheet listing pairwise growth records.
func (w *Workbook) AddGrowth(name string, g compare.Growth) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	if err := w.headerRow(name, []any{"계정", "당기", "전기", "증감액", "증감률(%)"}); err != nil {
		return err
	}
	for i, r := range g.Records() {
		if err := w.row(name, i+2, []any{r.Account, r.Current, r.Previous, r.Delta, r.GrowthRate}); err != nil {
			return err
		}
	}
	return nil
}

// AddChain adds a sheet with one column per growth step.
func (w *Workbook) AddChain(name string, steps []compare.ChainStep) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	header := []any{"계정"}
	var accounts []string
	seen := make(map[string]bool)
	for _, s := range steps {
		header = append(header, s.Label())
		for _, r := range s.Rates {
			if !seen[r.Account] {
				seen[r.Account] = true
				accounts = append(accounts, r.Account)
			}
		}
	}
	if err := w.headerRow(name, header); err != nil {
		return err
	}
	for i, account := range accounts {
		cells := []any{account}
		for _, s := range steps {
			if v, ok := s.Get(account); ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, nil)
			}
		}
		if err := w.row(name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// AddRatios adds a two-column ratio sheet.
func (w *Workbook) AddRatios(name string, set ratio.Set) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	if err := w.headerRow(name, []any{"비율", "값"}); err != nil {
		return err
	}
	for i, r := range set.Ratios() {
		if err := w.row(name, i+2, []any{r.Name, r.Value}); err != nil {
			return err
		}
	}
	return nil
}

// Sheets returns the sheet names in order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// WriteTo writes the workbook as xlsx.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	if w.sheets == 0 {
		return 0, fmt.Errorf("workbook has no sheets")
	}
	n, err := w.f.WriteTo(out)
	if err != nil {
		return n, fmt.Errorf("writing workbook: %w", err)
	}
	return n, nil
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}
