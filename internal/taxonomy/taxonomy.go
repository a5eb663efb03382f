// Package taxonomy holds the canonical presentation order of accounts per
// statement type.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"github.com/finlens-dev/finlens/internal/model"
)

// Category is an ordered group of canonical account names.
type Category struct {
	Name     string
	Accounts []string
}

// Taxonomy maps statement types to ordered categories. It is immutable once
// built; share one instance across requests.
type Taxonomy struct {
	order      []model.StatementType
	statements map[model.StatementType][]Category
}

// Builder accumulates taxonomy rows in encounter order.
type Builder struct {
	order      []model.StatementType
	statements map[model.StatementType][]Category
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{statements: make(map[model.StatementType][]Category)}
}

// Add appends account to category of st, creating either as needed.
func (b *Builder) Add(st model.StatementType, category, account string) {
	cats, ok := b.statements[st]
	if !ok {
		b.order = append(b.order, st)
	}
	for i := range cats {
		if cats[i].Name == category {
			cats[i].Accounts = append(cats[i].Accounts, account)
			b.statements[st] = cats
			return
		}
	}
	b.statements[st] = append(cats, Category{Name: category, Accounts: []string{account}})
}

// Build returns the finished taxonomy. The builder should not be reused.
func (b *Builder) Build() *Taxonomy {
	t := &Taxonomy{
		order:      append([]model.StatementType(nil), b.order...),
		statements: make(map[model.StatementType][]Category, len(b.statements)),
	}
	for st, cats := range b.statements {
		t.statements[st] = cloneCategories(cats)
	}
	return t
}

// Categories returns the ordered categories for st. The returned slice is a
// copy and may be modified by the caller.
func (t *Taxonomy) Categories(st model.StatementType) ([]Category, bool) {
	if t == nil {
		return nil, false
	}
	cats, ok := t.statements[st]
	if !ok {
		return nil, false
	}
	return cloneCategories(cats), true
}

// Canonical returns every canonical name of st in presentation order.
func (t *Taxonomy) Canonical(st model.StatementType) []string {
	if t == nil {
		return nil
	}
	var names []string
	for _, c := range t.statements[st] {
		names = append(names, c.Accounts...)
	}
	return names
}

// StatementTypes returns the statement types the taxonomy covers, in the
// order they were defined.
func (t *Taxonomy) StatementTypes() []model.StatementType {
	if t == nil {
		return nil
	}
	return append([]model.StatementType(nil), t.order...)
}

// Load reads a taxonomy CSV from path. An empty path returns Default().
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening taxonomy: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Save writes t as CSV to path.
func Save(path string, t *Taxonomy) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating taxonomy file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, t); err != nil {
		return fmt.Errorf("writing taxonomy: %w", err)
	}
	return nil
}

// MatchKind is the tier at which an input key matched a canonical name.
type MatchKind int

const (
	MatchNone      MatchKind = iota
	MatchExact               // key == canonical
	MatchContains            // key contains canonical
	MatchContained           // canonical contains key
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchContains:
		return "contains"
	case MatchContained:
		return "contained"
	default:
		return "none"
	}
}

// Match compares an input account name with a canonical name. The looser
// tiers absorb label drift between filings ("자산총계" vs "자산총계(합계)").
func Match(key, canonical string) MatchKind {
	switch {
	case key == canonical:
		return MatchExact
	case strings.Contains(key, canonical):
		return MatchContains
	case strings.Contains(canonical, key):
		return MatchContained
	default:
		return MatchNone
	}
}

func cloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{Name: c.Name, Accounts: append([]string(nil), c.Accounts...)}
	}
	return out
}
