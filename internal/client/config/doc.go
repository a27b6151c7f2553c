// Package config loads runtime configuration for the PDFSmaller client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv), secrets only:
//     PDFSMALLER_ENTITLEMENT_SECRET, PDFSMALLER_SESSION_DSN,
//     PDFSMALLER_S3_ACCESS_KEY, PDFSMALLER_S3_SECRET_KEY.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-m string   per-file size cap, human readable ("50MB")
//	-d string   default uploader mode (single | batch)
//	-t int      file resolution timeout (seconds)
//	-w int      progress watchdog window (seconds, 0 disables)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds; sizes are human-readable strings parsed by sizex:
//
//	{
//	  "max_file_size": "50MB",
//	  "max_session_size": "256MB",
//	  "file_request_timeout": "10s",
//	  "default_mode": "single",
//	  "remember_preference": true,
//	  "accept": ".pdf",
//	  "watchdog_window": "0s",
//	  "entitlement_secret": "...",
//	  "s3": {"region": "...", "bucket": "...", "endpoint": "...",
//	         "access_key": "...", "secret_key": "..."}
//	}
package config
