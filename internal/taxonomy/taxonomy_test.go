package taxonomy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens-dev/finlens/internal/model"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		key, canonical string
		want           MatchKind
	}{
		{"자산총계", "자산총계", MatchExact},
		{"자산총계(합계)", "자산총계", MatchContains},
		{"유동자산", "유동자산계", MatchContained},
		{"자산총액", "자산총계", MatchNone},
		{"비유동자산", "유동자산", MatchContains},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.key, tt.canonical), "Match(%q, %q)", tt.key, tt.canonical)
	}
	assert.Equal(t, "contained", MatchContained.String())
}

func TestDefaultCoversStatementTypes(t *testing.T) {
	tx := Default()
	assert.Equal(t, []model.StatementType{
		model.StatementBS, model.StatementIS, model.StatementCF, model.StatementSCE,
	}, tx.StatementTypes())

	cats, ok := tx.Categories(model.StatementBS)
	require.True(t, ok)
	require.Len(t, cats, 3)
	assert.Equal(t, "자산", cats[0].Name)
	assert.Equal(t, "자산총계", cats[0].Accounts[0])
	assert.Equal(t, "자본", cats[2].Name)

	_, ok = tx.Categories(model.StatementCIS)
	assert.False(t, ok, "CIS has no taxonomy")
}

func TestCategoriesReturnsCopy(t *testing.T) {
	tx := Default()
	cats, _ := tx.Categories(model.StatementSCE)
	cats[0].Accounts[0] = "changed"

	again, _ := tx.Categories(model.StatementSCE)
	assert.Equal(t, "기초자본", again[0].Accounts[0])
}

func TestCanonical(t *testing.T) {
	names := Default().Canonical(model.StatementSCE)
	assert.Equal(t, []string{"기초자본", "당기순이익", "기타포괄손익", "총포괄손익", "자본거래", "기말자본"}, names)
}

func TestNilTaxonomy(t *testing.T) {
	var tx *Taxonomy
	_, ok := tx.Categories(model.StatementBS)
	assert.False(t, ok)
	assert.Nil(t, tx.Canonical(model.StatementBS))
	assert.Nil(t, tx.StatementTypes())
}

func TestCSVRoundTrip(t *testing.T) {
	orig := Default()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, orig))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, orig.StatementTypes(), got.StatementTypes())
	for _, st := range orig.StatementTypes() {
		want, _ := orig.Categories(st)
		have, _ := got.Categories(st)
		assert.Equal(t, want, have, "categories for %s", st)
	}
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(Header + "\nXX,cat,acct\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = ReadCSV(strings.NewReader(Header + "\nBS,cat,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty account_name")

	_, err = ReadCSV(strings.NewReader(Header + "\nBS,only-two\n"))
	assert.Error(t, err)
}

func TestReadCSVEmpty(t *testing.T) {
	tx, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tx.StatementTypes())
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\nbs,assets,Total assets\nBS,assets,Cash\nIS,revenue,Revenue\n"), 0o644))

	tx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total assets", "Cash"}, tx.Canonical(model.StatementBS))

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Save(out, tx))
	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, tx.Canonical(model.StatementIS), again.Canonical(model.StatementIS))
}

func TestLoadDefaultAndMissing(t *testing.T) {
	tx, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, tx.Canonical(model.StatementBS))

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
