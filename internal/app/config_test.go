package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ology/internal/provider"
	"ology/internal/saver"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_PROVIDER", "OLOGY_API_TOKENS", "OLOGY_API_TOKEN", "DOMAINS_FILE", "DATA_DIR",
		"SAVE_FORMAT", "PROFILE", "LOG_LEVEL", "LOG_FORMAT", "START_DATE", "END_DATE",
		"SUBDOMAIN_ROLLUP", "REQUESTS_PER_SECOND", "WORKERS", "RUN_HOUR", "RUN_MINUTE", "LISTEN_ADDR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("OLOGY_API_URL", "http://api.example.org/v1/")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ology", cfg.DataProvider)
	assert.Equal(t, "http://api.example.org/v1", cfg.APIBaseURL)
	assert.Equal(t, "parquet", cfg.SaveFormat)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), cfg.EndDate)
	assert.Equal(t, "none", cfg.SubdomainRollup)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 5.0, cfg.RequestsPerSecond)
	assert.Equal(t, 30, cfg.RunMinute)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "data/ology/.lastday.json", cfg.ProgressPath())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OLOGY_API_TOKENS", " a , b ,,c")
	t.Setenv("PROFILE", "dev")
	t.Setenv("START_DATE", "2012-06-01")
	t.Setenv("END_DATE", "2013-06-01")
	t.Setenv("RUN_HOUR", "4")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.APITokens)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "csv", cfg.SaveFormat)
	assert.Equal(t, 4, cfg.RunHour)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing url", "OLOGY_API_URL", ""},
		{"bad url", "OLOGY_API_URL", "not a url"},
		{"bad date", "START_DATE", "01/01/2010"},
		{"window reversed", "START_DATE", "2015-01-01"},
		{"bad format", "SAVE_FORMAT", "xml"},
		{"bad hour", "RUN_HOUR", "24"},
		{"bad workers", "WORKERS", "zero"},
		{"bad rate", "REQUESTS_PER_SECOND", "-1"},
		{"bad provider", "DATA_PROVIDER", "polygon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestNextCrawlRunTime(t *testing.T) {
	cfg := &Config{RunHour: 0, RunMinute: 30}

	before := time.Date(2014, 3, 2, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2014, 3, 2, 0, 30, 0, 0, time.UTC), nextCrawlRunTime(cfg, before))

	after := time.Date(2014, 3, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2014, 4, 1, 0, 30, 0, 0, time.UTC), nextCrawlRunTime(cfg, after))

	cfg = &Config{RunHour: 17, RunMinute: 45}
	atTarget := time.Date(2014, 3, 2, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2014, 3, 3, 17, 45, 0, 0, time.UTC), nextCrawlRunTime(cfg, atTarget))
}

func TestProviders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OLOGY_API_TOKEN", "tok")
	cfg, err := ProvideConfig()
	require.NoError(t, err)

	ps, err := ProvidePacketSaver(cfg)
	require.NoError(t, err)
	assert.Equal(t, saver.ParquetSaver{}, ps)

	_, err = ProvidePacketSaver(&Config{SaveFormat: "xml"})
	require.Error(t, err)

	m := ProvideMetrics()
	p, err := ProvideOlogyProvider(cfg, m)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, []string{"tok"}, p.Tokens())
	assert.NotNil(t, p.OnResponse)

	var _ provider.DataProvider = p

	opts := CrawlOptions(cfg, ps, m)
	assert.Same(t, m, opts.Metrics)
	assert.Equal(t, cfg.StartDate, opts.From)
	assert.Equal(t, cfg.EndDate, opts.To)
	assert.Equal(t, cfg.ProgressPath(), opts.ProgressPath)
}

func TestCreateProvider_Unsupported(t *testing.T) {
	_, err := CreateProvider(&Config{DataProvider: "tiingo"})
	require.Error(t, err)
	_, err = CreateProvider(&Config{DataProvider: "ology"})
	require.Error(t, err)
}
