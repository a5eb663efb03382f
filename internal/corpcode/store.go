// Package corpcode stores the company-code reference table.
package corpcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/finlens-dev/finlens/internal/model"
)

// SearchLimit caps the rows Search returns.
const SearchLimit = 10

// ErrNotFound is returned when a company code is not in the table.
var ErrNotFound = errors.New("corp code not found")

const schema = `CREATE TABLE IF NOT EXISTS corpcode (
	corp_code TEXT PRIMARY KEY,
	corp_name TEXT,
	stock_code TEXT,
	modify_date TEXT
)`

// Store is a SQLite-backed corp-code table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("corp code database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening corp code database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating corpcode table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Search returns up to SearchLimit companies whose name contains name.
func (s *Store) Search(ctx context.Context, name string) ([]model.Corp, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []model.Corp{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT corp_code, corp_name, stock_code, modify_date FROM corpcode WHERE corp_name LIKE ? LIMIT ?`,
		"%"+name+"%", SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching corp codes: %w", err)
	}
	defer rows.Close()

	corps := []model.Corp{}
	for rows.Next() {
		c, err := scanCorp(rows)
		if err != nil {
			return nil, fmt.Errorf("reading corp row: %w", err)
		}
		corps = append(corps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching corp codes: %w", err)
	}
	return corps, nil
}

// Get returns the company with code.
func (s *Store) Get(ctx context.Context, code string) (model.Corp, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT corp_code, corp_name, stock_code, modify_date FROM corpcode WHERE corp_code = ?`, code)
	c, err := scanCorp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Corp{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err != nil {
		return model.Corp{}, fmt.Errorf("getting corp %s: %w", code, err)
	}
	return c, nil
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpcode`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting corp codes: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the table contents for corps in one transaction. A
// repeated code keeps its last row.
func (s *Store) ReplaceAll(ctx context.Context, corps []model.Corp) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM corpcode`); err != nil {
		return fmt.Errorf("clearing corpcode: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO corpcode (corp_code, corp_name, stock_code, modify_date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range corps {
		if _, err = stmt.ExecContext(ctx, c.Code, c.Name, c.StockCode, c.ModifyDate); err != nil {
			return fmt.Errorf("row %d: inserting %s: %w", i+1, c.Code, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing corp codes: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCorp(sc scanner) (model.Corp, error) {
	var (
		c                       model.Corp
		name, stock, modifiedOn sql.NullString
	)
	if err := sc.Scan(&c.Code, &name, &stock, &modifiedOn); err != nil {
		return model.Corp{}, err
	}
	c.Name = name.String
	c.StockCode = stock.String
	c.ModifyDate = modifiedOn.String
	return c, nil
}
