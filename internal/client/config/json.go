package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/flagx"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration ("10s" or integer nanoseconds); sizes are human-readable
// strings parsed by sizex ("50MB"). After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	MaxFileSize        string         `json:"max_file_size"`
	MaxSessionSize     string         `json:"max_session_size"`
	FileRequestTimeout timex.Duration `json:"file_request_timeout"`
	DefaultMode        string         `json:"default_mode"`
	RememberPreference *bool          `json:"remember_preference"`
	Accept             string         `json:"accept"`
	WatchdogWindow     timex.Duration `json:"watchdog_window"`
	EntitlementSecret  string         `json:"entitlement_secret"`
	SessionDSN         string         `json:"session_dsn"`
	S3                 struct {
		Region    string `json:"region"`
		Bucket    string `json:"bucket"`
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
	} `json:"s3"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Unset JSON fields keep the value already in cfg. Panics on read, unmarshal
// or size-parse errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.MaxFileSize != "" {
		size, err := sizex.Parse(jc.MaxFileSize)
		if err != nil {
			panic(err)
		}
		cfg.MaxFileBytes = size
	}
	if jc.MaxSessionSize != "" {
		size, err := sizex.Parse(jc.MaxSessionSize)
		if err != nil {
			panic(err)
		}
		cfg.MaxSessionBytes = size
	}
	if jc.FileRequestTimeout.Duration != 0 {
		cfg.FileRequestTimeout = time.Duration(jc.FileRequestTimeout.Duration)
	}
	if jc.DefaultMode != "" {
		cfg.DefaultMode = jc.DefaultMode
	}
	if jc.RememberPreference != nil {
		cfg.RememberPreference = *jc.RememberPreference
	}
	if jc.Accept != "" {
		cfg.Accept = jc.Accept
	}
	if jc.WatchdogWindow.Duration != 0 {
		cfg.WatchdogWindow = time.Duration(jc.WatchdogWindow.Duration)
	}
	if jc.EntitlementSecret != "" {
		cfg.EntitlementSecret = jc.EntitlementSecret
	}
	if jc.SessionDSN != "" {
		cfg.SessionDSN = jc.SessionDSN
	}
	if jc.S3.Bucket != "" {
		cfg.S3 = S3Config{
			Region:    jc.S3.Region,
			Bucket:    jc.S3.Bucket,
			Endpoint:  jc.S3.Endpoint,
			AccessKey: jc.S3.AccessKey,
			SecretKey: jc.S3.SecretKey,
		}
	}
}
