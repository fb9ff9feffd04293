package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// Environment variables that override file values.
const (
	EnvConfiguration   = "RUNBUILD_CONFIGURATION"
	EnvBuildBasePath   = "RUNBUILD_BUILD_BASE_PATH"
	EnvSolutionRoot    = "RUNBUILD_SOLUTION_ROOT"
	EnvPackagesRoot    = "RUNBUILD_PACKAGES_ROOT"
	EnvHostDirectory   = "RUNBUILD_HOST_DIR"
	EnvCompiler        = "RUNBUILD_COMPILER"
	EnvHistoryPath     = "RUNBUILD_HISTORY_PATH"
	EnvHistoryEnabled  = "RUNBUILD_HISTORY_ENABLED"
	EnvMetricsTextfile = "RUNBUILD_METRICS_TEXTFILE"
	EnvLogLevel        = "RUNBUILD_LOG_LEVEL"
	EnvLogFormat       = "RUNBUILD_LOG_FORMAT"
	EnvWatchDebounce   = "RUNBUILD_WATCH_DEBOUNCE"
	EnvConcurrency     = "RUNBUILD_CONCURRENCY"
)

// loadEnvFiles loads .env.local then .env from the config file's directory.
// godotenv never overrides variables that are already set, so the process
// environment wins over .env.local, which wins over .env.
func loadEnvFiles(configPath string) error {
	dir := filepath.Dir(configPath)
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.ConfigError("failed to load environment file").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
	}
	return nil
}

func applyEnvOverrides(c *Config) error {
	setString(&c.Configuration, EnvConfiguration)
	setString(&c.BuildBasePath, EnvBuildBasePath)
	setString(&c.SolutionRoot, EnvSolutionRoot)
	setString(&c.PackagesRoot, EnvPackagesRoot)
	setString(&c.Host.Directory, EnvHostDirectory)
	setString(&c.Compiler.Command, EnvCompiler)
	setString(&c.History.Path, EnvHistoryPath)
	setString(&c.Metrics.Textfile, EnvMetricsTextfile)

	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = LogLevel(v)
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		c.Log.Format = LogFormat(v)
	}

	if v, ok := os.LookupEnv(EnvHistoryEnabled); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalidEnv(EnvHistoryEnabled, v, err)
		}
		c.History.Enabled = &b
	}
	if v, ok := os.LookupEnv(EnvWatchDebounce); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return invalidEnv(EnvWatchDebounce, v, err)
		}
		c.Watch.Debounce = d
	}
	if v, ok := os.LookupEnv(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalidEnv(EnvConcurrency, v, err)
		}
		c.Concurrency = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func invalidEnv(key, value string, cause error) error {
	return errors.ConfigError("invalid environment override").
		WithCause(cause).
		WithContext("variable", key).
		WithContext("value", value).
		Build()
}
