package config

import "os"

// parseEnv overlays secret-bearing settings from the environment. Secrets
// belong in the environment rather than in argv or a checked-in JSON file,
// so this layer sits between the file and the flags.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("PDFSMALLER_ENTITLEMENT_SECRET"); ok {
		cfg.EntitlementSecret = v
	}
	if v, ok := os.LookupEnv("PDFSMALLER_SESSION_DSN"); ok {
		cfg.SessionDSN = v
	}
	if v, ok := os.LookupEnv("PDFSMALLER_S3_ACCESS_KEY"); ok {
		cfg.S3.AccessKey = v
	}
	if v, ok := os.LookupEnv("PDFSMALLER_S3_SECRET_KEY"); ok {
		cfg.S3.SecretKey = v
	}
}
