// Package config resolves runtime configuration for model backends from the
// environment into an explicit struct. Callers load once at startup and pass
// the resulting Config around; nothing else in the module reads environment
// variables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultLocation is used when no location variable is set.
const DefaultLocation = "us-central1"

// Config carries the resolved settings for Google model backends. A non-empty
// Project selects the Vertex AI backend; otherwise APIKey is used directly.
type Config struct {
	// CredentialsFile is the service account key path exported as
	// GOOGLE_APPLICATION_CREDENTIALS for client libraries.
	CredentialsFile string

	// Project is the Google Cloud project id.
	Project string

	// Location is the Google Cloud region.
	Location string

	// APIKey is the Gemini API key for the non-Vertex backend.
	APIKey string
}

// Options configures Load.
type Options struct {
	// DotenvPaths lists .env files to load before reading the environment.
	// Missing files are skipped silently.
	DotenvPaths []string

	// DefaultCredentialsFile is used when neither credentials variable is set.
	DefaultCredentialsFile string
}

// Load resolves a Config from the process environment. Variables already set
// in the environment win over .env file values.
//
// Precedence per field:
//   - credentials: GOOGLE_APPLICATION_CREDENTIALS, SERVICE_ACCOUNT_KEY_PATH,
//     then Options.DefaultCredentialsFile
//   - project: GOOGLE_CLOUD_PROJECT, GCP_PROJECT, PROJECT
//   - location: GOOGLE_CLOUD_LOCATION, GCP_LOCATION, LOCATION, DefaultLocation
//   - api key: GOOGLE_API_KEY, GEMINI_API_KEY
func Load(optFns ...func(o *Options)) (Config, error) {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	for _, path := range opts.DotenvPaths {
		if err := godotenv.Load(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := Config{
		CredentialsFile: firstEnv("GOOGLE_APPLICATION_CREDENTIALS", "SERVICE_ACCOUNT_KEY_PATH"),
		Project:         firstEnv("GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "PROJECT"),
		Location:        firstEnv("GOOGLE_CLOUD_LOCATION", "GCP_LOCATION", "LOCATION"),
		APIKey:          firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY"),
	}

	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = opts.DefaultCredentialsFile
	}

	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}

	return cfg, nil
}

// Apply exports the credentials file so Google client libraries pick it up.
// It is a no-op when no credentials file is configured.
func (c Config) Apply() error {
	if c.CredentialsFile == "" {
		return nil
	}
	if err := os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", c.CredentialsFile); err != nil {
		return fmt.Errorf("failed to set credentials: %w", err)
	}
	return nil
}

// UseVertex reports whether the Vertex AI backend should be used.
func (c Config) UseVertex() bool { return c.Project != "" }

// firstEnv returns the value of the first set, non-empty variable.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
