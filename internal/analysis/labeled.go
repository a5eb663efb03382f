package analysis

import (
	"bytes"
	"encoding/json"

	"github.com/finlens-dev/finlens/internal/compare"
	"github.com/finlens-dev/finlens/internal/model"
)

// Labeled is a snapshot with its display label ("2023년(당기)", "Q1", ...).
type Labeled struct {
	Label    string
	Snapshot model.Snapshot
}

// Periods is an ordered label -> snapshot mapping.
type Periods []Labeled

// Get returns the snapshot labeled label.
func (p Periods) Get(label string) (model.Snapshot, bool) {
	for _, l := range p {
		if l.Label == label {
			return l.Snapshot, true
		}
	}
	return model.Snapshot{}, false
}

// MarshalJSON encodes the periods as an object in label order.
func (p Periods) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(l.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.Snapshot)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Steps is a growth chain encoded as "{Y1}년→{Y2}년" -> {account: rate}.
type Steps []compare.ChainStep

// MarshalJSON encodes the steps as an object in year order.
func (s Steps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(step.Label())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(step)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
