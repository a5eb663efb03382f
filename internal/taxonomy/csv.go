package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/finlens-dev/finlens/internal/model"
)

// Header is the CSV header of a taxonomy file.
const Header = "statement_type,category,account_name"

const (
	numFields   = 3
	colStmt     = 0
	colCategory = 1
	colAccount  = 2
)

// ReadCSV reads a taxonomy file. Row order defines presentation order.
func ReadCSV(r io.Reader) (*Taxonomy, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy CSV: %w", err)
	}

	b := NewBuilder()
	if len(records) == 0 {
		return b.Build(), nil
	}

	for i, rec := range records[1:] {
		st, category, account, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		b.Add(st, category, account)
	}
	return b.Build(), nil
}

// WriteCSV writes t in presentation order.
func WriteCSV(w io.Writer, t *Taxonomy) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, st := range t.StatementTypes() {
		cats, _ := t.Categories(st)
		for _, c := range cats {
			for _, account := range c.Accounts {
				if err := cw.Write(MarshalRow(st, c.Name, account)); err != nil {
					return fmt.Errorf("writing row %d: %w", row, err)
				}
				row++
			}
		}
	}
	return cw.Error()
}

// MarshalRow converts one taxonomy entry to a CSV row.
func MarshalRow(st model.StatementType, category, account string) []string {
	row := make([]string, numFields)
	row[colStmt] = string(st)
	row[colCategory] = category
	row[colAccount] = account
	return row
}

// UnmarshalRow converts a CSV row to a taxonomy entry.
func UnmarshalRow(record []string) (model.StatementType, string, string, error) {
	if len(record) != numFields {
		return "", "", "", fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	st, err := model.ParseStatementType(record[colStmt])
	if err != nil {
		return "", "", "", fmt.Errorf("parsing statement_type: %w", err)
	}
	account := strings.TrimSpace(record[colAccount])
	if account == "" {
		return "", "", "", fmt.Errorf("empty account_name")
	}
	return st, strings.TrimSpace(record[colCategory]), account, nil
}
