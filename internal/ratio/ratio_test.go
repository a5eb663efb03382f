package ratio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens-dev/finlens/internal/model"
)

func snap(entries ...model.Entry) model.Snapshot {
	return model.SnapshotOf(entries...)
}

func TestLookup(t *testing.T) {
	s := snap(
		model.Entry{Account: "비유동자산", Amount: 7},
		model.Entry{Account: "자산총액", Amount: -300},
		model.Entry{Account: "자산총계", Amount: 500},
	)
	assert.Equal(t, int64(500), Lookup(s, "자산총계", "자산총액"), "candidates are tried before keys")
	assert.Equal(t, int64(300), Lookup(s, "자산총액"), "absolute value")
	assert.Equal(t, int64(7), Lookup(s, "유동자산"), "substring of a key")
	assert.Equal(t, int64(0), Lookup(s, "부채총계"))
	assert.Equal(t, int64(0), Lookup(model.Snapshot{}, "x"))
}

func TestComputeBasic(t *testing.T) {
	bs := snap(
		model.Entry{Account: "자산총계", Amount: 1000},
		model.Entry{Account: "자본총계", Amount: 400},
	)
	is := snap(model.Entry{Account: "당기순이익", Amount: 40})

	got := Compute(bs, is, model.Snapshot{})

	roe, ok := got.Get(ReturnOnEquity)
	require.True(t, ok)
	assert.Equal(t, 10.0, roe)
	eq, ok := got.Get(EquityRatio)
	require.True(t, ok)
	assert.Equal(t, 40.0, eq)
	roa, _ := got.Get(ReturnOnAssets)
	assert.Equal(t, 4.0, roa)

	// No revenue, no current liabilities, no total liabilities.
	_, ok = got.Get(OperatingMargin)
	assert.False(t, ok)
	_, ok = got.Get(CurrentRatio)
	assert.False(t, ok)
	debt, ok := got.Get(DebtRatio)
	require.True(t, ok)
	assert.Equal(t, 0.0, debt)
}

func TestComputeOmitsEquityRatiosWithoutEquity(t *testing.T) {
	bs := snap(model.Entry{Account: "자산총계", Amount: 1000})
	is := snap(model.Entry{Account: "당기순이익", Amount: 40})

	got := Compute(bs, is, model.Snapshot{})
	for _, name := range []string{ReturnOnEquity, EquityRatio, DebtRatio} {
		_, ok := got.Get(name)
		assert.False(t, ok, name)
	}
	_, ok := got.Get(ReturnOnAssets)
	assert.True(t, ok)
}

func TestComputeFullSet(t *testing.T) {
	bs := snap(
		model.Entry{Account: "자산총계", Amount: 3000},
		model.Entry{Account: "유동자산", Amount: 1000},
		model.Entry{Account: "유동부채", Amount: 300},
		model.Entry{Account: "부채총계", Amount: 1000},
		model.Entry{Account: "자본총계", Amount: 2000},
	)
	is := snap(
		model.Entry{Account: "매출액", Amount: 1500},
		model.Entry{Account: "영업이익", Amount: 150},
		model.Entry{Account: "당기순이익(손실)", Amount: -100},
	)

	got := Compute(bs, is, model.Snapshot{})
	want := []Ratio{
		{CurrentRatio, 333.33},
		{ReturnOnAssets, 3.33},
		{ReturnOnEquity, 5},
		{EquityRatio, 66.67},
		{OperatingMargin, 10},
		{NetMargin, 6.67},
		{AssetTurnover, 0.5},
		{DebtRatio, 50},
	}
	assert.Equal(t, want, got.Ratios())
}

func TestComputeZeroAssetsOmitsAssetRatios(t *testing.T) {
	bs := snap(model.Entry{Account: "자본총계", Amount: 10})
	is := snap(model.Entry{Account: "매출액", Amount: 10})

	got := Compute(bs, is, model.Snapshot{})
	for _, name := range []string{ReturnOnAssets, EquityRatio, AssetTurnover} {
		_, ok := got.Get(name)
		assert.False(t, ok, name)
	}
	_, ok := got.Get(NetMargin)
	assert.True(t, ok)
}

func TestComputeEmpty(t *testing.T) {
	got := Compute(model.Snapshot{}, model.Snapshot{}, model.Snapshot{})
	assert.Equal(t, 0, got.Len())

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestSetJSONKeepsOrder(t *testing.T) {
	bs := snap(
		model.Entry{Account: "자산총계", Amount: 1000},
		model.Entry{Account: "자본총계", Amount: 400},
	)
	is := snap(model.Entry{Account: "당기순이익", Amount: 40})

	data, err := json.Marshal(Compute(bs, is, model.Snapshot{}))
	require.NoError(t, err)
	assert.Equal(t, `{"ROA":4,"ROE":10,"자기자본비율":40,"부채비율":0}`, string(data))
}

func TestComputeRoundsHalfToEven(t *testing.T) {
	bs := snap(
		model.Entry{Account: "유동자산", Amount: 1003},
		model.Entry{Account: "유동부채", Amount: 800},
		model.Entry{Account: "부채총계", Amount: 1001},
		model.Entry{Account: "자본총계", Amount: 800},
	)

	got := Compute(bs, model.Snapshot{}, model.Snapshot{})
	debt, ok := got.Get(DebtRatio)
	require.True(t, ok)
	assert.Equal(t, 125.12, debt)
	cur, ok := got.Get(CurrentRatio)
	require.True(t, ok)
	assert.Equal(t, 125.38, cur)
}
