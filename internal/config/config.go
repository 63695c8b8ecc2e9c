package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/source"
	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appDirName = "fpa-forecast"

type Config struct {
	// Datasets are loaded once at startup and concatenated in order
	Datasets    []string `yaml:"datasets"`
	RecordsPath string   `yaml:"records_path,omitempty"`

	// Initial view
	Tab               string `yaml:"tab"`
	SortKey           string `yaml:"sort_key"`
	SortDirection     string `yaml:"sort_direction"`
	GroupByDepartment bool   `yaml:"group_by_department"`
	Variant           string `yaml:"variant"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	RequestTimeout time.Duration `yaml:"request_timeout"`

	S3           S3Config           `yaml:"s3,omitempty"`
	CostExplorer CostExplorerConfig `yaml:"cost_explorer,omitempty"`
}

type S3Config struct {
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

type CostExplorerConfig struct {
	Region string `yaml:"region,omitempty"`
	Metric string `yaml:"metric,omitempty"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Datasets:       []string{"data/forecast.json"},
		Tab:            string(types.SourceTooling),
		SortKey:        string(pipeline.KeyFYTotal),
		SortDirection:  string(pipeline.Desc),
		Variant:        string(types.VariantAuto),
		LogFile:        "forecast.log",
		LogLevel:       "info",
		RequestTimeout: source.DefaultRequestTimeout,
	}
}

// Dir returns the per-user configuration directory
func Dir() (string, error) {
	// Check for XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appDirName), nil
	}

	// Fall back to ~/.config on Unix-like systems
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", appDirName), nil
}

// DefaultPath is the config file read when no --config flag is given
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment (a .env file in the working directory is read first). An empty
// path means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := getEnv("FORECAST_DATASETS", ""); v != "" {
		c.Datasets = splitList(v)
	}
	c.RecordsPath = getEnv("FORECAST_RECORDS_PATH", c.RecordsPath)
	c.Tab = getEnv("FORECAST_TAB", c.Tab)
	c.SortKey = getEnv("FORECAST_SORT", c.SortKey)
	c.SortDirection = getEnv("FORECAST_SORT_DIRECTION", c.SortDirection)
	c.GroupByDepartment = getEnvBool("FORECAST_GROUP", c.GroupByDepartment)
	c.Variant = getEnv("FORECAST_VARIANT", c.Variant)
	c.LogFile = getEnv("FORECAST_LOG_FILE", c.LogFile)
	c.LogLevel = getEnv("FORECAST_LOG_LEVEL", c.LogLevel)
	c.RequestTimeout = getEnvDuration("FORECAST_REQUEST_TIMEOUT", c.RequestTimeout)
	c.S3.Region = getEnv("FORECAST_S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("FORECAST_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.PathStyle = getEnvBool("FORECAST_S3_PATH_STYLE", c.S3.PathStyle)
	c.CostExplorer.Region = getEnv("FORECAST_CE_REGION", c.CostExplorer.Region)
	c.CostExplorer.Metric = getEnv("FORECAST_CE_METRIC", c.CostExplorer.Metric)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if len(c.Datasets) == 0 {
		errs = append(errs, "at least one dataset is required")
	}
	for _, d := range c.Datasets {
		if strings.TrimSpace(d) == "" {
			errs = append(errs, "dataset entries cannot be empty")
		}
	}
	if _, ok := types.ParseSource(c.Tab); !ok {
		errs = append(errs, fmt.Sprintf("invalid tab '%s': must be one of %v", c.Tab, types.Sources()))
	}
	if _, ok := pipeline.ParseSortKey(c.SortKey); !ok {
		errs = append(errs, fmt.Sprintf("invalid sort key '%s': must be one of %v", c.SortKey, pipeline.SortKeys()))
	}
	if _, ok := pipeline.ParseDirection(c.SortDirection); !ok {
		errs = append(errs, fmt.Sprintf("invalid sort direction '%s': must be asc or desc", c.SortDirection))
	}
	switch types.Variant(c.Variant) {
	case types.VariantAuto, types.VariantVendor, types.VariantForecast:
	default:
		errs = append(errs, fmt.Sprintf("invalid variant '%s': must be auto, vendor or forecast", c.Variant))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid request timeout %s: must be positive", c.RequestTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ViewState is the initial view described by the configuration. Call after
// Validate; unknown values fall back to defaults.
func (c *Config) ViewState() pipeline.ViewState {
	state := pipeline.DefaultViewState()
	if tab, ok := types.ParseSource(c.Tab); ok {
		state.Tab = tab
	}
	if key, ok := pipeline.ParseSortKey(c.SortKey); ok {
		state.Sort.Key = key
	}
	if dir, ok := pipeline.ParseDirection(c.SortDirection); ok {
		state.Sort.Direction = dir
	}
	state.Grouped = c.GroupByDepartment
	if c.Variant != "" {
		state.Variant = types.Variant(c.Variant)
	}
	return state
}

// SourceOptions maps the configuration onto the dataset drivers
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		RecordsPath:    c.RecordsPath,
		RequestTimeout: c.RequestTimeout,
		S3: source.S3Options{
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			PathStyle: c.S3.PathStyle,
		},
		CostExplorer: source.CostExplorerOptions{
			Region: c.CostExplorer.Region,
			Metric: c.CostExplorer.Metric,
		},
	}
}

// Write stores the configuration as YAML at path, creating its directory
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
