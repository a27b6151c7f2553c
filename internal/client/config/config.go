package config

import (
	"time"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

// S3Config points the cloud-upload/download services at a bucket. Empty
// Bucket leaves the s3 provider unconnected.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the PDFSmaller client.
//
// Fields:
//   - MaxFileBytes / MaxSessionBytes: intake caps enforced by the FileStore.
//   - FileRequestTimeout: how long a service waits for file resolution.
//   - DefaultMode: starting uploader mode when no preference exists.
//   - RememberPreference: persist the chosen mode in the session store.
//   - Accept: comma-separated extension list for intake.
//   - WatchdogWindow: silence window after which a running job is failed;
//     zero disables the watchdog.
//   - EntitlementSecret: HS256 secret validating entitlement tokens; empty
//     grants every capability (local use).
type Config struct {
	MaxFileBytes       int64
	MaxSessionBytes    int64
	FileRequestTimeout time.Duration
	DefaultMode        string
	RememberPreference bool
	Accept             string
	WatchdogWindow     time.Duration
	EntitlementSecret  string
	SessionDSN         string
	S3                 S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.MaxFileBytes = 50 * sizex.MB
	c.MaxSessionBytes = 256 * sizex.MB
	c.FileRequestTimeout = 10 * time.Second
	c.DefaultMode = "single"
	c.RememberPreference = true
	c.Accept = ".pdf"
	c.WatchdogWindow = 0
	c.SessionDSN = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
