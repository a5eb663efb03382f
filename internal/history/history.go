// Package history keeps a CSV record of AI analyses.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/finlens-dev/finlens/internal/model"
)

// Entry is one row in the history log.
type Entry struct {
	Timestamp time.Time   `json:"timestamp"`
	Kind      string      `json:"analysis_type"`
	CorpCode  string      `json:"corp_code"`
	CorpName  string      `json:"corp_name"`
	Year      string      `json:"year"`
	Scope     model.Scope `json:"fs_div"`
	Success   bool        `json:"success"`
	Chars     int         `json:"chars"`
}

// Header is the CSV header of the history file.
const Header = "timestamp,analysis_type,corp_code,corp_name,year,fs_div,success,chars"

const (
	numFields   = 8
	colTime     = 0
	colKind     = 1
	colCorpCode = 2
	colCorpName = 3
	colYear     = 4
	colScope    = 5
	colSuccess  = 6
	colChars    = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colKind] = e.Kind
	row[colCorpCode] = e.CorpCode
	row[colCorpName] = e.CorpName
	row[colYear] = e.Year
	row[colScope] = string(e.Scope)
	row[colSuccess] = strconv.FormatBool(e.Success)
	row[colChars] = strconv.Itoa(e.Chars)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	ok, err := strconv.ParseBool(record[colSuccess])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing success %q: %w", record[colSuccess], err)
	}
	chars, err := strconv.Atoi(record[colChars])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing chars %q: %w", record[colChars], err)
	}

	return Entry{
		Timestamp: ts,
		Kind:      record[colKind],
		CorpCode:  record[colCorpCode],
		CorpName:  record[colCorpName],
		Year:      record[colYear],
		Scope:     model.Scope(record[colScope]),
		Success:   ok,
		Chars:     chars,
	}, nil
}

// Append writes entries to path, creating the file, its directory and the
// header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries in path. A missing file has no entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
