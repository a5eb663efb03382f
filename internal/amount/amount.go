// Package amount parses and formats disclosed amounts.
//
// Disclosure amounts arrive as locale-formatted strings ("1,234,567",
// "-52,000", ""). Parsing is lenient by default: anything that cannot be read
// as an integer becomes zero, and the Defaulted flag records that it did.
package amount

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned by ParseStrict for content that is not an integer.
var ErrMalformed = errors.New("malformed amount")

// Value is a parsed amount.
type Value struct {
	Amount    int64
	Defaulted bool // true when raw was empty or unparsable and Amount is zero
}

// Normalize returns the integer value of raw, or 0 when raw is empty or
// malformed. It never fails.
func Normalize(raw string) int64 {
	return Parse(raw).Amount
}

// Parse is the lenient parser behind Normalize.
func Parse(raw string) Value {
	n, err := ParseStrict(raw)
	if err != nil {
		return Value{Defaulted: true}
	}
	return Value{Amount: n}
}

// ParseStrict strips thousands separators and surrounding whitespace and
// parses the remainder as a base-10 integer.
func ParseStrict(raw string) (int64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformed)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	return n, nil
}

const (
	jo  = 1_000_000_000_000
	eok = 100_000_000
	man = 10_000
)

// Format renders n in Korean units: 조 with one decimal, 억 and 만 rounded,
// and plain digit grouping below 10,000.
func Format(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= jo:
		return fmt.Sprintf("%.1f조", float64(n)/jo)
	case abs >= eok:
		return fmt.Sprintf("%.0f억", float64(n)/eok)
	case abs >= man:
		return fmt.Sprintf("%.0f만", float64(n)/man)
	default:
		return Group(n)
	}
}

// Group formats n with comma thousands separators.
func Group(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
