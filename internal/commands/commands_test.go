package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finlens-dev/finlens/internal/config"
	"github.com/finlens-dev/finlens/internal/dart"
)

type fakeFetcher struct {
	responses map[string]*dart.Response
}

func (f *fakeFetcher) Fetch(_ context.Context, req dart.Request) (*dart.Response, error) {
	if r, ok := f.responses[fmt.Sprintf("%d/%s/%s", req.Year, req.ReportCode, req.Scope)]; ok {
		return r, nil
	}
	return &dart.Response{Status: dart.StatusNoData, Message: "조회된 데이타가 없습니다."}, nil
}

type cannedGenerator struct{ prompts []string }

func (g *cannedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return "양호한 재무 상태", nil
}

func item(sj, name, amount string) dart.Item {
	return dart.Item{AccountName: name, SJDiv: sj, CurrentAmount: amount}
}

func testFetcher() *fakeFetcher {
	ok := func(items ...dart.Item) *dart.Response {
		return &dart.Response{Status: dart.StatusOK, Message: "정상", Items: items}
	}
	return &fakeFetcher{responses: map[string]*dart.Response{
		"2023/11011/CFS": ok(
			item("BS", "자산총계", "1,000"),
			item("BS", "자본총계", "400"),
			item("IS", "매출액", "500"),
			item("IS", "당기순이익", "40"),
		),
		"2022/11011/CFS": ok(
			item("BS", "자산총계", "800"),
			item("IS", "매출액", "400"),
		),
	}}
}

// testEnv writes a config pointing the corp table into a temp dir and
// clears the API key variables.
func testEnv(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	for _, k := range []string{"OPEN_DART_API_KEY", "DART_API_KEY", "FINLENS_DART_API_KEY", "GEMINI_API_KEY", "FINLENS_ADVISOR_API_KEY", "FINLENS_ADVISOR_HISTORY_PATH", "FINLENS_CORPCODE_DB_PATH"} {
		t.Setenv(k, "")
	}
	dir = t.TempDir()
	cfg := config.Default()
	cfg.CorpCode.DBPath = filepath.Join(dir, "corpcode.db")
	cfgPath = filepath.Join(dir, config.FileName)
	require.NoError(t, config.Save(cfgPath, cfg))
	return cfgPath, dir
}

func run(t *testing.T, a *app, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	if a.now == nil {
		a.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }
	}
	cmd := newRootCommand(a)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", cfgPath, "--env-file", "", "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestStatementCommand(t *testing.T) {
	cfgPath, _ := testEnv(t)
	out, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "statement", "--corp", "00126380", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, `"자산총계": 1000`)
	assert.Less(t, strings.Index(out, "자산총계"), strings.Index(out, "자본총계"))
}

func TestStatementCommandRaw(t *testing.T) {
	cfgPath, _ := testEnv(t)
	out, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "statement", "--corp", "00126380", "--year", "2023", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "000"`)
	assert.Contains(t, out, `"thstrm_amount": "1,000"`)
}

func TestStatementRequiresAPIKey(t *testing.T) {
	cfgPath, _ := testEnv(t)
	_, _, err := run(t, &app{}, cfgPath, "statement", "--corp", "00126380")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DART API key")
}

func TestStatementRejectsUnknownType(t *testing.T) {
	cfgPath, _ := testEnv(t)
	_, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "statement", "--corp", "1", "--type", "XX")
	require.Error(t, err)
}

func TestCompareAndRatiosCommands(t *testing.T) {
	cfgPath, _ := testEnv(t)

	out, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "compare", "--corp", "1", "--year", "2023", "--type", "IS")
	require.NoError(t, err)
	assert.Contains(t, out, `"growth_rate": 25`)

	out, _, err = run(t, &app{fetcher: testFetcher()}, cfgPath, "ratios", "--corp", "1", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, `"ROE": 10`)
}

func TestMultiYearCommandShowsProgress(t *testing.T) {
	cfgPath, _ := testEnv(t)
	out, stderr, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "multi-year", "--corp", "1", "--years", "2022-2023")
	require.NoError(t, err)
	assert.Contains(t, out, `"2022년→2023년"`)
	assert.Contains(t, stderr, "fetching years")

	_, stderr, err = run(t, &app{fetcher: testFetcher()}, cfgPath, "multi-year", "--corp", "1", "--years", "2022,2023", "-q")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "fetching years")
}

func TestParseYears(t *testing.T) {
	years, err := parseYears("2020-2022, 2024")
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2021, 2022, 2024}, years)

	years, err = parseYears("2022,2022,2021-2023")
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2021, 2023}, years, "repeats dropped so the progress total matches the fetches")

	_, err = parseYears("2023-2020")
	assert.Error(t, err)
	_, err = parseYears("abc")
	assert.Error(t, err)
}

func TestDiffCommand(t *testing.T) {
	cfgPath, _ := testEnv(t)
	out, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "diff", "--corp", "1", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, `"cfs_status": "000"`)
	assert.Contains(t, out, `"ofs_status": "013"`)
	assert.NotContains(t, out, `"comparison"`)
}

func TestCorpImportSearchGet(t *testing.T) {
	cfgPath, dir := testEnv(t)
	src := filepath.Join(dir, "corps.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"list":[
		{"corp_code":"00126380","corp_name":"삼성전자","stock_code":"005930"},
		{"corp_code":"00164779","corp_name":"SK하이닉스","stock_code":"000660"}]}`), 0o644))

	out, _, err := run(t, &app{}, cfgPath, "corp", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 companies")

	out, _, err = run(t, &app{}, cfgPath, "corp", "search", "하이닉스")
	require.NoError(t, err)
	assert.Contains(t, out, `"corp_code": "00164779"`)
	assert.NotContains(t, out, "삼성전자")

	out, _, err = run(t, &app{}, cfgPath, "corp", "get", "00126380")
	require.NoError(t, err)
	assert.Contains(t, out, `"corp_name": "삼성전자"`)

	_, _, err = run(t, &app{}, cfgPath, "corp", "get", "99999999")
	assert.Error(t, err)
}

func TestCorpImportDirectory(t *testing.T) {
	cfgPath, dir := testEnv(t)
	src := filepath.Join(dir, "import")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.json"), []byte(`{"list":[{"corp_code":"1","corp_name":"가"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.xml"), []byte(`<result><list><corp_code>2</corp_code><corp_name>나</corp_name></list></result>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip"), 0o644))

	out, _, err := run(t, &app{}, cfgPath, "corp", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 companies")
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	cfgPath, dir := testEnv(t)
	dbPath := filepath.Join(dir, "override.db")
	t.Setenv("FINLENS_CORPCODE_DB_PATH", dbPath)
	src := filepath.Join(dir, "corps.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"list":[{"corp_code":"1","corp_name":"가"}]}`), 0o644))

	out, _, err := run(t, &app{}, cfgPath, "corp", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, dbPath)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	cfgPath, _ := testEnv(t)
	a := &app{fetcher: testFetcher()}
	cmd := newRootCommand(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"ratios", "--corp", "1", "--config", cfgPath, "--env-file", "", "--log-level", "loud"})
	assert.Error(t, cmd.Execute())
}

func TestMissingExplicitConfig(t *testing.T) {
	testEnv(t)
	_, _, err := run(t, &app{fetcher: testFetcher()}, filepath.Join(t.TempDir(), "missing.yaml"), "ratios", "--corp", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestExportCommand(t *testing.T) {
	cfgPath, dir := testEnv(t)
	path := filepath.Join(dir, "ratios.xlsx")
	out, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "export", "ratios", "--corp", "1", "--year", "2023", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "4 sheets")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"BS", "IS", "CF", "재무비율"}, f.GetSheetList())

	_, _, err = run(t, &app{fetcher: testFetcher()}, cfgPath, "export", "pie", "--corp", "1")
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	cfgPath, _ := testEnv(t)

	out, _, err := run(t, &app{fetcher: testFetcher()}, cfgPath, "analyze", "--corp", "1", "--year", "2023")
	require.NoError(t, err)
	assert.Contains(t, out, `"ai_enabled": false`)

	gen := &cannedGenerator{}
	out, _, err = run(t, &app{fetcher: testFetcher(), generator: gen}, cfgPath, "analyze", "trends", "--corp", "1", "--year", "2023", "--name", "삼성전자")
	require.NoError(t, err)
	assert.Contains(t, out, `"analysis": "양호한 재무 상태"`)
	assert.Contains(t, out, `"corp_name": "삼성전자"`)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "2022년")
}

func TestAnalyzeHistory(t *testing.T) {
	cfgPath, dir := testEnv(t)
	_, _, err := run(t, &app{}, cfgPath, "history")
	require.Error(t, err)

	t.Setenv("FINLENS_ADVISOR_HISTORY_PATH", filepath.Join(dir, "logs", "analysis.csv"))
	gen := &cannedGenerator{}
	_, _, err = run(t, &app{fetcher: testFetcher(), generator: gen}, cfgPath, "analyze", "ratios", "--corp", "1", "--year", "2023")
	require.NoError(t, err)

	out, _, err := run(t, &app{}, cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, `"analysis_type": "ratios"`)
	assert.Contains(t, out, `"chars": 9`)
	assert.Contains(t, out, `"timestamp": "2024-04-01T00:00:00Z"`)
}

func TestAnalyzeFailsWithoutFiling(t *testing.T) {
	cfgPath, _ := testEnv(t)
	_, _, err := run(t, &app{fetcher: testFetcher(), generator: &cannedGenerator{}}, cfgPath, "analyze", "--corp", "1", "--year", "2010")
	require.Error(t, err)
}
