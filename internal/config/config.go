package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Tiger  TigerConfig  `yaml:"tiger" mapstructure:"tiger"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// TigerConfig configures census block ingestion.
type TigerConfig struct {
	DataDir             string   `yaml:"data_dir" mapstructure:"data_dir"`
	CacheDir            string   `yaml:"cache_dir" mapstructure:"cache_dir"`
	URLFormat           string   `yaml:"url_format" mapstructure:"url_format"`
	PopulationField     string   `yaml:"population_field" mapstructure:"population_field"`
	Regions             []string `yaml:"regions" mapstructure:"regions"`
	PrefetchConcurrency int      `yaml:"prefetch_concurrency" mapstructure:"prefetch_concurrency"`
}

// MatchConfig configures the city search.
type MatchConfig struct {
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	MaxCities    int     `yaml:"max_cities" mapstructure:"max_cities"`
}

// OutputConfig configures the report document.
type OutputConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	Format      string `yaml:"format" mapstructure:"format"`
	Compression string `yaml:"compression" mapstructure:"compression"`
	Indent      bool   `yaml:"indent" mapstructure:"indent"`
}

// FetchConfig configures archive downloads.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and BLOCKPOP_* env vars.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BLOCKPOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("tiger.data_dir", "./data")
	v.SetDefault("tiger.cache_dir", "./data/cache")
	v.SetDefault("tiger.url_format", "https://www2.census.gov/geo/tiger/TIGER2010BLKPOPHU/tabblock2010_%02d_pophu.zip")
	v.SetDefault("tiger.population_field", "POP10")
	v.SetDefault("tiger.regions", []string{})
	v.SetDefault("tiger.prefetch_concurrency", 1)
	v.SetDefault("match.radius_meters", 80000.0)
	v.SetDefault("match.max_cities", 1000)
	v.SetDefault("output.path", "cities.json")
	v.SetDefault("output.format", "json")
	v.SetDefault("output.compression", "none")
	v.SetDefault("output.indent", false)
	v.SetDefault("fetch.user_agent", "blockpop/1.0")
	v.SetDefault("fetch.timeout_secs", 600)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Tiger.DataDir == "" {
		problems = append(problems, "tiger.data_dir is required")
	}
	if strings.Count(c.Tiger.URLFormat, "%") != 1 {
		problems = append(problems, "tiger.url_format must contain exactly one region verb")
	}
	if c.Tiger.PopulationField == "" {
		problems = append(problems, "tiger.population_field is required")
	}
	if c.Tiger.PrefetchConcurrency < 1 {
		problems = append(problems, "tiger.prefetch_concurrency must be at least 1")
	}
	if c.Match.RadiusMeters <= 0 {
		problems = append(problems, "match.radius_meters must be positive")
	}
	if c.Fetch.RatePerSec <= 0 {
		problems = append(problems, "fetch.rate_per_sec must be positive")
	}
	// Counts attempts, so 1 means no retry.
	if c.Fetch.MaxRetries < 1 {
		problems = append(problems, "fetch.max_retries must be at least 1")
	}

	if len(problems) > 0 {
		return eris.New(fmt.Sprintf("config: invalid: %s", strings.Join(problems, "; ")))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
