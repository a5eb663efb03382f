package consolidation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens-dev/finlens/internal/model"
)

func TestDiffSingleAccount(t *testing.T) {
	cons := model.SnapshotOf(model.Entry{Account: "매출액", Amount: 100})
	sep := model.SnapshotOf(model.Entry{Account: "매출액", Amount: 90})

	res := Diff(cons, sep, 0, nil)
	assert.Equal(t, 1, res.CommonAccounts)
	require.Len(t, res.Different, 1)
	assert.Equal(t, DiffRecord{Account: "매출액", Consolidated: 100, Separate: 90, Difference: 10}, res.Different[0])
	assert.True(t, res.HasDifference)
}

func TestDiffCounts(t *testing.T) {
	cons := model.SnapshotOf(
		model.Entry{Account: "자산총계", Amount: 500},
		model.Entry{Account: "비지배지분", Amount: 20},
		model.Entry{Account: "부채총계", Amount: 200},
	)
	sep := model.SnapshotOf(
		model.Entry{Account: "부채총계", Amount: 200},
		model.Entry{Account: "자산총계", Amount: 450},
	)

	res := Diff(cons, sep, DefaultLimit, nil)
	assert.Equal(t, 3, res.ConsolidatedCount)
	assert.Equal(t, 2, res.SeparateCount)
	assert.Equal(t, 2, res.CommonAccounts)
	require.Len(t, res.Different, 1)
	assert.Equal(t, "자산총계", res.Different[0].Account)
	assert.Equal(t, int64(50), res.Different[0].Difference)
}

func TestDiffNoDifference(t *testing.T) {
	s := model.SnapshotOf(model.Entry{Account: "a", Amount: 1})
	res := Diff(s, s, 10, nil)
	assert.False(t, res.HasDifference)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cfs_filtered_count":1,"ofs_filtered_count":1,"common_accounts":1,"different_accounts":[],"has_difference":false}`, string(data))
}

func TestDiffLimit(t *testing.T) {
	var cons, sep model.Snapshot
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("acct%02d", i)
		cons.Add(name, int64(i+1))
		sep.Add(name, 0)
	}

	res := Diff(cons, sep, 0, nil)
	assert.Equal(t, 15, res.CommonAccounts)
	assert.Len(t, res.Different, DefaultLimit)
	assert.Equal(t, "acct09", res.Different[9].Account)

	assert.Len(t, Diff(cons, sep, 3, nil).Different, 3)
}

func TestDiffEmpty(t *testing.T) {
	res := Diff(model.Snapshot{}, model.Snapshot{}, 10, nil)
	assert.Equal(t, 0, res.CommonAccounts)
	assert.Empty(t, res.Different)
}

func TestDiffSkipsUnreadableAccounts(t *testing.T) {
	cons := model.SnapshotOf(
		model.Entry{Account: "자산총계", Amount: 0},
		model.Entry{Account: "부채총계", Amount: 300},
		model.Entry{Account: "자본총계", Amount: 700},
	)
	sep := model.SnapshotOf(
		model.Entry{Account: "자산총계", Amount: 900},
		model.Entry{Account: "부채총계", Amount: 200},
		model.Entry{Account: "자본총계", Amount: 0},
	)
	unreadable := map[string]bool{"자산총계": true}

	res := Diff(cons, sep, 2, func(a string) bool { return unreadable[a] })
	assert.Equal(t, 3, res.CommonAccounts)
	require.Len(t, res.Different, 1, "skipped accounts still use up the limit")
	assert.Equal(t, "부채총계", res.Different[0].Account)
}
