package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"settlement-compare/internal/data"
	"settlement-compare/internal/model"
	"settlement-compare/internal/series"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. BMRS_DASHBOARD_ADDR.
const EnvPrefix = "BMRS"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Upstream   UpstreamConfig   `yaml:"upstream" envconfig:"UPSTREAM"`
	Imbalance  ImbalanceConfig  `yaml:"imbalance" envconfig:"IMBALANCE"`
	Generation GenerationConfig `yaml:"generation" envconfig:"GENERATION"`
	Dashboard  DashboardConfig  `yaml:"dashboard" envconfig:"DASHBOARD"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
}

type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL"`
	ImbalancePath  string        `yaml:"imbalance_path" envconfig:"IMBALANCE_PATH"`
	ForecastPath   string        `yaml:"forecast_path" envconfig:"FORECAST_PATH"`
	ActualPath     string        `yaml:"actual_path" envconfig:"ACTUAL_PATH"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
	Cache          CacheConfig   `yaml:"cache" envconfig:"CACHE"`
}

// CacheConfig controls the in-memory cache of historical responses.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED"`
	TTL     time.Duration `yaml:"ttl" envconfig:"TTL"`
}

type ImbalanceConfig struct {
	ReferenceDate string `yaml:"reference_date" envconfig:"REFERENCE_DATE"`
	// Date pins "today" for one-shot runs; empty means the current UTC date.
	Date         string        `yaml:"date" envconfig:"DATE"`
	FillMissing  bool          `yaml:"fill_missing" envconfig:"FILL_MISSING"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"POLL_INTERVAL"`
	CSVFile      string        `yaml:"csv_file" envconfig:"CSV_FILE"`
	ChartFile    string        `yaml:"chart_file" envconfig:"CHART_FILE"`
	RefColor     string        `yaml:"ref_color" envconfig:"REF_COLOR"`
	TodayColor   string        `yaml:"today_color" envconfig:"TODAY_COLOR"`
}

type GenerationConfig struct {
	Date     string           `yaml:"date" envconfig:"DATE"`
	Timezone string           `yaml:"timezone" envconfig:"TIMEZONE"`
	Tasks    []GenerationTask `yaml:"tasks" ignored:"true"`
}

// GenerationTask is one forecast-vs-actual comparison (wind, solar, ...).
type GenerationTask struct {
	Name          string `yaml:"name"`
	Label         string `yaml:"label"`  // "Wind", used in CSV headers and chart legends
	Filter        string `yaml:"filter"` // case-insensitive regexp on psrType
	CSVFile       string `yaml:"csv_file"`
	ChartFile     string `yaml:"chart_file"`
	ForecastColor string `yaml:"forecast_color"`
	ActualColor   string `yaml:"actual_color"`
}

type DashboardConfig struct {
	Addr           string   `yaml:"addr" envconfig:"ADDR"`
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

type OutputConfig struct {
	Dir  string `yaml:"dir" envconfig:"DIR"`
	PNG  bool   `yaml:"png" envconfig:"PNG"`
	XLSX bool   `yaml:"xlsx" envconfig:"XLSX"`
	PDF  bool   `yaml:"pdf" envconfig:"PDF"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	paths := data.DefaultPaths()
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:        data.DefaultBaseURL,
			ImbalancePath:  paths.Imbalance,
			ForecastPath:   paths.Forecast,
			ActualPath:     paths.Actual,
			Timeout:        30 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 2,
			Cache:          CacheConfig{Enabled: false, TTL: time.Hour},
		},
		Imbalance: ImbalanceConfig{
			ReferenceDate: "2025-11-12",
			PollInterval:  30 * time.Minute,
			CSVFile:       "imbalance_table.csv",
			ChartFile:     "imbalance_chart.png",
			RefColor:      "blue",
			TodayColor:    "red",
		},
		Generation: GenerationConfig{
			Date:     "2025-11-12",
			Timezone: "Europe/Paris",
			Tasks: []GenerationTask{
				{
					Name:          string(model.TaskWind),
					Label:         "Wind",
					Filter:        "WIND",
					CSVFile:       "wind_generation_forecast_vs_actual.csv",
					ChartFile:     "wind_generation_forecast_vs_actual.png",
					ForecastColor: "blue",
					ActualColor:   "cyan",
				},
				{
					Name:          string(model.TaskSolar),
					Label:         "Solar",
					Filter:        "SOLAR|PV",
					CSVFile:       "solar_generation_forecast_vs_actual.csv",
					ChartFile:     "solar_generation_forecast_vs_actual.png",
					ForecastColor: "orange",
					ActualColor:   "red",
				},
			},
		},
		Dashboard: DashboardConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:8080"},
		},
		Output: OutputConfig{
			Dir: ".",
			PNG: true,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path uses defaults plus environment.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if c.Upstream.RateLimitRPS < 0 {
		return errors.New("upstream.rate_limit_rps must be >= 0")
	}
	if _, err := model.ParseDate(c.Imbalance.ReferenceDate); err != nil {
		return fmt.Errorf("imbalance.reference_date: %w", err)
	}
	if c.Imbalance.Date != "" {
		if _, err := model.ParseDate(c.Imbalance.Date); err != nil {
			return fmt.Errorf("imbalance.date: %w", err)
		}
	}
	if c.Imbalance.PollInterval <= 0 {
		return errors.New("imbalance.poll_interval must be > 0")
	}
	if c.Imbalance.CSVFile == "" {
		return errors.New("imbalance.csv_file is required")
	}
	if _, err := model.ParseDate(c.Generation.Date); err != nil {
		return fmt.Errorf("generation.date: %w", err)
	}
	if _, err := time.LoadLocation(c.Generation.Timezone); err != nil {
		return fmt.Errorf("generation.timezone: %w", err)
	}
	if len(c.Generation.Tasks) == 0 {
		return errors.New("generation.tasks must not be empty")
	}
	seen := map[string]bool{}
	for i, t := range c.Generation.Tasks {
		if t.Name == "" {
			return fmt.Errorf("generation.tasks[%d].name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("generation.tasks[%d]: duplicate name %q", i, t.Name)
		}
		seen[t.Name] = true
		if _, err := series.NewCategoryFilter(t.Filter); err != nil {
			return fmt.Errorf("generation.tasks[%d]: %w", i, err)
		}
		if t.CSVFile == "" {
			return fmt.Errorf("generation.tasks[%d].csv_file is required", i)
		}
	}
	return nil
}

// Task returns the generation task with the given name.
func (g GenerationConfig) Task(name string) (GenerationTask, error) {
	for _, t := range g.Tasks {
		if t.Name == name {
			return t, nil
		}
	}
	return GenerationTask{}, fmt.Errorf("unknown generation task %q", name)
}

// Location returns the display timezone for generation charts.
func (g GenerationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Path resolves an output file name against the output directory.
// Empty names stay empty so optional outputs can be skipped.
func (o OutputConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// Paths converts the upstream section into client paths.
func (u UpstreamConfig) Paths() data.EndpointPaths {
	return data.EndpointPaths{
		Imbalance: u.ImbalancePath,
		Forecast:  u.ForecastPath,
		Actual:    u.ActualPath,
	}
}

// NewClient builds a BMRS client from the upstream section.
func (u UpstreamConfig) NewClient() *data.ElexonClient {
	opts := data.ClientOptions{
		Timeout:        u.Timeout,
		RateLimitRPS:   u.RateLimitRPS,
		RateLimitBurst: u.RateLimitBurst,
	}
	if u.Cache.Enabled {
		opts.Cache = data.NewResponseCache(u.Cache.TTL)
	}
	return data.NewElexonClient(u.BaseURL, u.Paths(), opts)
}
