package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFirstAddWins(t *testing.T) {
	var s Snapshot
	assert.True(t, s.Add("자산총계", 1000))
	assert.False(t, s.Add("자산총계", 2000))
	assert.True(t, s.Add("부채총계", 600))

	v, ok := s.Get("자산총계")
	require.True(t, ok)
	assert.Equal(t, int64(1000), v)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"자산총계", "부채총계"}, s.Keys())
}

func TestSnapshotZeroValue(t *testing.T) {
	var s Snapshot
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("x"))
	_, ok := s.Get("x")
	assert.False(t, ok)
	assert.Empty(t, s.Keys())
}

func TestSnapshotJSONKeepsOrder(t *testing.T) {
	s := SnapshotOf(
		Entry{Account: "유동자산", Amount: 10},
		Entry{Account: "자산총계", Amount: -5},
		Entry{Account: "a\"b", Amount: 0},
	)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"유동자산":10,"자산총계":-5,"a\"b":0}`, string(data))

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s.Entries(), got.Entries())
}

func TestSnapshotUnmarshalFloats(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"b":1.9,"a":-2.5,"b":7}`), &s))
	assert.Equal(t, []Entry{{Account: "b", Amount: 1}, {Account: "a", Amount: -2}}, s.Entries())
}

func TestSnapshotUnmarshalRejectsArray(t *testing.T) {
	var s Snapshot
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &s))
}

func TestSnapshotHead(t *testing.T) {
	s := SnapshotOf(Entry{"a", 1}, Entry{"b", 2}, Entry{"c", 3})
	assert.Equal(t, []string{"a", "b"}, s.Head(2).Keys())
	assert.Equal(t, 3, s.Head(10).Len())
}

func TestParseStatementType(t *testing.T) {
	st, err := ParseStatementType(" bs ")
	require.NoError(t, err)
	assert.Equal(t, StatementBS, st)

	_, err = ParseStatementType("XX")
	assert.Error(t, err)
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, ScopeSeparate, ParseScope("ofs"))
	assert.Equal(t, ScopeConsolidated, ParseScope("CFS"))
	assert.Equal(t, ScopeConsolidated, ParseScope("bogus"))
	assert.Equal(t, "별도재무제표", ScopeSeparate.DisplayName())
}

func TestQuarterReportCode(t *testing.T) {
	tests := []struct {
		label string
		want  ReportCode
	}{
		{"Q1", ReportQ1},
		{"q2", ReportHalf},
		{"Q3", ReportQ3},
		{"Q4", ReportAnnual},
		{"", ReportAnnual},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuarterReportCode(tt.label), "QuarterReportCode(%q)", tt.label)
	}
	require.Len(t, Quarters(), 4)
	assert.Equal(t, "Q1", Quarters()[0].Label)
}

func TestCorpListed(t *testing.T) {
	assert.True(t, Corp{StockCode: "005930"}.Listed())
	assert.False(t, Corp{StockCode: " "}.Listed())
	assert.False(t, Corp{}.Listed())
}
