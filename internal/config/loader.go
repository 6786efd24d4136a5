package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. THREADREPORT_REPORT_FORMAT.
const EnvPrefix = "THREADREPORT"

// configKeys lists every key that can be set from a file, the environment
// or a flag.
var configKeys = []string{
	"logging.level",
	"logging.format",
	"logging.enable_caller",
	"ingest.on_malformed",
	"report.format",
	"report.date_layout",
	"report.timezone",
	"report.stats_format",
	"database.busy_timeout_ms",
}

// Loader handles configuration loading with Viper.
type Loader struct {
	v           *viper.Viper
	configFile  string
	searchPaths []string
}

// NewLoader creates a new configuration loader that searches the default
// config directories.
func NewLoader() *Loader {
	return &Loader{
		v:           viper.New(),
		searchPaths: defaultSearchPaths(),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetSearchPaths replaces the directories searched for threadreport.yaml.
func (l *Loader) SetSearchPaths(paths ...string) {
	l.searchPaths = append([]string(nil), paths...)
}

// Set overrides a key with the highest precedence. Used for CLI flags.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load loads configuration with proper precedence:
// defaults < config file < env vars < CLI flags
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the config file that was loaded, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func defaultSearchPaths() []string {
	var paths []string
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, "threadreport"))
	}
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		paths = append(paths, filepath.Join(homeDir, ".config", "threadreport"))
	}
	return append(paths, ".")
}

func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("threadreport")
	v.SetConfigType("yaml")
	for _, path := range l.searchPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, cfg)
	bindEnvVars(v)
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.enable_caller", cfg.Logging.EnableCaller)

	v.SetDefault("ingest.on_malformed", cfg.Ingest.OnMalformed)

	v.SetDefault("report.format", cfg.Report.Format)
	v.SetDefault("report.date_layout", cfg.Report.DateLayout)
	v.SetDefault("report.timezone", cfg.Report.Timezone)
	v.SetDefault("report.stats_format", cfg.Report.StatsFormat)

	v.SetDefault("database.busy_timeout_ms", cfg.Database.BusyTimeoutMs)
}

// bindEnvVars binds THREADREPORT_* variables explicitly; Unmarshal misses
// nested keys that are only reachable through AutomaticEnv.
func bindEnvVars(v *viper.Viper) {
	for _, key := range configKeys {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envVar)
	}
}

func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		return l.v.ReadInConfig()
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}
