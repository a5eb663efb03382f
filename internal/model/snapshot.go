package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Entry is one account of a Snapshot.
type Entry struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// Snapshot is an ordered account -> amount mapping for one statement, scope
// and period. Account names are unique: the first Add of a name wins.
// The zero value is an empty snapshot ready to use.
type Snapshot struct {
	entries []Entry
	index   map[string]int
}

// SnapshotOf builds a snapshot from entries in order.
func SnapshotOf(entries ...Entry) Snapshot {
	var s Snapshot
	for _, e := range entries {
		s.Add(e.Account, e.Amount)
	}
	return s
}

// Add appends account unless it is already present. It reports whether the
// entry was added.
func (s *Snapshot) Add(account string, amount int64) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[account]; ok {
		return false
	}
	s.index[account] = len(s.entries)
	s.entries = append(s.entries, Entry{Account: account, Amount: amount})
	return true
}

// Len returns the number of accounts.
func (s Snapshot) Len() int { return len(s.entries) }

// Get returns the amount for account.
func (s Snapshot) Get(account string) (int64, bool) {
	i, ok := s.index[account]
	if !ok {
		return 0, false
	}
	return s.entries[i].Amount, true
}

// Has reports whether account is present.
func (s Snapshot) Has(account string) bool {
	_, ok := s.index[account]
	return ok
}

// Keys returns account names in snapshot order.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Account
	}
	return keys
}

// Entries returns a copy of the entries in snapshot order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Head returns a snapshot holding at most the first n entries.
func (s Snapshot) Head(n int) Snapshot {
	if n >= len(s.entries) {
		return s
	}
	return SnapshotOf(s.entries[:n]...)
}

// MarshalJSON encodes the snapshot as a JSON object keeping account order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Account)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(e.Amount, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Fractional
// numbers are truncated toward zero.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if tok == nil {
		*s = Snapshot{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decoding snapshot: expected object, got %v", tok)
	}

	var out Snapshot
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding snapshot key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decoding snapshot: unexpected key %v", keyTok)
		}
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("decoding amount for %q: %w", key, err)
		}
		amount, err := numberToInt(num)
		if err != nil {
			return fmt.Errorf("decoding amount for %q: %w", key, err)
		}
		out.Add(key, amount)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	*s = out
	return nil
}

func numberToInt(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int64(math.Trunc(f)), nil
}
