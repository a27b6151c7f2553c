package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

func TestParseFlags_Overrides(t *testing.T) {
	withArgs(t, "-m", "5MB", "-d", "batch", "-t", "3", "-w", "60")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	require.Equal(t, 5*sizex.MB, cfg.MaxFileBytes)
	require.Equal(t, "batch", cfg.DefaultMode)
	require.Equal(t, 3*time.Second, cfg.FileRequestTimeout)
	require.Equal(t, 60*time.Second, cfg.WatchdogWindow)
}

func TestParseFlags_DefaultsSurviveNoFlags(t *testing.T) {
	withArgs(t)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	require.Equal(t, 50*sizex.MB, cfg.MaxFileBytes)
	require.Equal(t, "single", cfg.DefaultMode)
	require.Equal(t, 10*time.Second, cfg.FileRequestTimeout)
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	withArgs(t, "-c", "somewhere.json", "-d", "batch")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	require.Equal(t, "batch", cfg.DefaultMode)
}
