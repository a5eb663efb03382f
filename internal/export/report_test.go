package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens-dev/finlens/internal/analysis"
	"github.com/finlens-dev/finlens/internal/compare"
	"github.com/finlens-dev/finlens/internal/model"
	"github.com/finlens-dev/finlens/internal/ratio"
)

func TestRatiosReport(t *testing.T) {
	bs := model.SnapshotOf(model.Entry{Account: "자산총계", Amount: 1000}, model.Entry{Account: "자본총계", Amount: 400})
	is := model.SnapshotOf(model.Entry{Account: "당기순이익", Amount: 40})
	res := &analysis.RatiosResult{
		Year:    2023,
		Success: true,
		Statements: analysis.Periods{
			{Label: "BS", Snapshot: bs},
			{Label: "IS", Snapshot: is},
			{Label: "CF", Snapshot: model.Snapshot{}},
		},
		Ratios: ratio.Compute(bs, is, model.Snapshot{}),
	}

	w, err := RatiosReport(res)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, []string{"BS", "IS", "CF", "재무비율"}, w.Sheets())

	f := readBack(t, w)
	rows, err := f.GetRows("BS")
	require.NoError(t, err)
	assert.Equal(t, []string{"계정", "2023년"}, rows[0])
	assert.Equal(t, []string{"자산총계", "1000"}, rows[1])
}

func TestRatiosReportRejectsFailure(t *testing.T) {
	_, err := RatiosReport(&analysis.RatiosResult{Error: "데이터를 찾을 수 없습니다"})
	assert.Error(t, err)
	_, err = RatiosReport(nil)
	assert.Error(t, err)
}

func TestComparisonAndMultiYearReports(t *testing.T) {
	cur := model.SnapshotOf(model.Entry{Account: "매출액", Amount: 120})
	prev := model.SnapshotOf(model.Entry{Account: "매출액", Amount: 100})

	w, err := ComparisonReport(&analysis.ComparisonResult{
		StatementType:  model.StatementIS,
		Data:           analysis.Periods{{Label: "2024년(당기)", Snapshot: cur}, {Label: "2023년(전기)", Snapshot: prev}},
		GrowthAnalysis: compare.Pairwise(cur, prev),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"IS", "증감분석"}, w.Sheets())
	w.Close()

	w, err = MultiYearReport(&analysis.MultiYearResult{
		StatementType: model.StatementIS,
		Data:          analysis.Periods{{Label: "2023년", Snapshot: prev}, {Label: "2024년", Snapshot: cur}},
		GrowthRates:   compare.Chain(map[int]model.Snapshot{2023: prev, 2024: cur}),
	})
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, []string{"IS", "성장률"}, w.Sheets())

	f := readBack(t, w)
	rows, err := f.GetRows("성장률")
	require.NoError(t, err)
	assert.Equal(t, []string{"매출액", "20"}, rows[1])
}

func TestQuarterlyReport(t *testing.T) {
	w, err := QuarterlyReport(&analysis.QuarterlyResult{
		Year:          2024,
		StatementType: model.StatementBS,
		Data: analysis.Periods{
			{Label: "Q1", Snapshot: model.SnapshotOf(model.Entry{Account: "자산총계", Amount: 10})},
			{Label: "Q2", Snapshot: model.Snapshot{}},
		},
	})
	require.NoError(t, err)
	defer w.Close()

	f := readBack(t, w)
	rows, err := f.GetRows("BS 2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"계정", "Q1", "Q2"}, rows[0])
	assert.Equal(t, []string{"자산총계", "10"}, rows[1])
}
