package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{orig[0]}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestParseJson_OverlaysConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"max_file_size": "2MB",
		"max_session_size": "10MB",
		"file_request_timeout": "5s",
		"default_mode": "batch",
		"remember_preference": false,
		"accept": ".pdf,.docx",
		"watchdog_window": "30s",
		"entitlement_secret": "s3cret",
		"s3": {"region": "eu-west-1", "bucket": "pdfs", "endpoint": "http://localhost:9000"}
	}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, 2*sizex.MB, cfg.MaxFileBytes)
	require.Equal(t, 10*sizex.MB, cfg.MaxSessionBytes)
	require.Equal(t, 5*time.Second, cfg.FileRequestTimeout)
	require.Equal(t, "batch", cfg.DefaultMode)
	require.False(t, cfg.RememberPreference)
	require.Equal(t, ".pdf,.docx", cfg.Accept)
	require.Equal(t, 30*time.Second, cfg.WatchdogWindow)
	require.Equal(t, "s3cret", cfg.EntitlementSecret)
	require.Equal(t, "pdfs", cfg.S3.Bucket)
	require.Equal(t, "eu-west-1", cfg.S3.Region)
}

func TestParseJson_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `{"default_mode": "batch"}`)
	withArgs(t, "-config="+path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, "batch", cfg.DefaultMode)
	require.Equal(t, 50*sizex.MB, cfg.MaxFileBytes)
	require.True(t, cfg.RememberPreference)
}

func TestParseJson_NoFileFlagIsNoOp(t *testing.T) {
	withArgs(t)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, "single", cfg.DefaultMode)
}

func TestParseJson_DurationAsNanoseconds(t *testing.T) {
	path := writeConfigFile(t, `{"file_request_timeout": 2000000000}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, 2*time.Second, cfg.FileRequestTimeout)
}

func TestParseJson_BadSizePanics(t *testing.T) {
	path := writeConfigFile(t, `{"max_file_size": "plenty"}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	require.Panics(t, func() { parseJson(cfg) })
}
