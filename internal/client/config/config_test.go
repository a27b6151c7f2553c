package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, 50*sizex.MB, cfg.MaxFileBytes)
	require.Equal(t, 256*sizex.MB, cfg.MaxSessionBytes)
	require.Equal(t, 10*time.Second, cfg.FileRequestTimeout)
	require.Equal(t, "single", cfg.DefaultMode)
	require.True(t, cfg.RememberPreference)
	require.Equal(t, ".pdf", cfg.Accept)
	require.Zero(t, cfg.WatchdogWindow)
	require.Empty(t, cfg.S3.Bucket)
}
