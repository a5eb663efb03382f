package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DART.APIKey = "secret"
	cfg.DART.FallbackYears = 1
	cfg.Taxonomy.Path = "taxonomy.csv"
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Advisor.HistoryPath = "logs/analysis.csv"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://opendart.fss.or.kr/api", cfg.DART.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.DART.Timeout)
	assert.Equal(t, 2, cfg.DART.FallbackYears)
	assert.Equal(t, 5, cfg.DART.LatestYearScan)
	assert.Equal(t, "corpcode.db", cfg.CorpCode.DBPath)
	assert.Equal(t, "gemini-1.5-flash", cfg.Advisor.Model)
	assert.Empty(t, cfg.Advisor.APIKey)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("dart:\n  timeout: 5s\nlogging:\n  format: json\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.DART.Timeout)
	assert.Equal(t, 2, cfg.DART.FallbackYears)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("dart: [unclosed"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "timeout: 30s")
	assert.Contains(t, contents, "db_path: corpcode.db")
	assert.Contains(t, contents, "fallback_years: 2")
	assert.NotContains(t, contents, "api_key")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DART.FallbackYears = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DART.FallbackYears = 3
	assert.ErrorContains(t, cfg.Validate(), "between 0 and 2")

	cfg = Default()
	cfg.DART.FallbackYears = 0
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.DART.LatestYearScan = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.CorpCode.DBPath = ""
	assert.Error(t, cfg.Validate())
}
