package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Chart  ChartConfig  `yaml:"chart" mapstructure:"chart"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int             `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string        `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	TrustProxy     bool            `yaml:"trust_proxy" mapstructure:"trust_proxy"`
}

// RateLimitConfig bounds requests per client IP over a window.
type RateLimitConfig struct {
	Requests   int `yaml:"requests" mapstructure:"requests"`
	WindowSecs int `yaml:"window_secs" mapstructure:"window_secs"`
}

// DataConfig locates the price table. Driver wins over URL, URL over Path.
type DataConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	DefaultPath string `yaml:"default_path" mapstructure:"default_path"`
	URL         string `yaml:"url" mapstructure:"url"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	// RetryAttempts is the total tries per remote download. 1 disables retries.
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// ChartConfig configures series building and server-side rendering.
type ChartConfig struct {
	Mode         string  `yaml:"mode" mapstructure:"mode"`
	HoverProxy   bool    `yaml:"hover_proxy" mapstructure:"hover_proxy"`
	RangeBars    bool    `yaml:"range_bars" mapstructure:"range_bars"`
	FillYears    bool    `yaml:"fill_years" mapstructure:"fill_years"`
	Width        int     `yaml:"width" mapstructure:"width"`
	Height       int     `yaml:"height" mapstructure:"height"`
	XTickStep    int     `yaml:"x_tick_step" mapstructure:"x_tick_step"`
	YMin         float64 `yaml:"y_min" mapstructure:"y_min"`
	YMax         float64 `yaml:"y_max" mapstructure:"y_max"`
	MarkerOffset float64 `yaml:"marker_offset" mapstructure:"marker_offset"`
	HitRadius    float64 `yaml:"hit_radius" mapstructure:"hit_radius"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. Besides the
// PRICECHART_ prefixed keys, PORT, ALLOWED_ORIGINS, and MCCHICKEN_CSV_PATH
// are honoured for existing deployments.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICECHART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range map[string]string{
		"server.port":            "PORT",
		"server.allowed_origins": "ALLOWED_ORIGINS",
		"data.path":              "MCCHICKEN_CSV_PATH",
	} {
		env := "PRICECHART_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit.requests", 100)
	v.SetDefault("server.rate_limit.window_secs", 900)
	v.SetDefault("server.trust_proxy", true)
	v.SetDefault("data.default_path", "data/prices.csv")
	v.SetDefault("data.url", "")
	v.SetDefault("data.sheet", "")
	v.SetDefault("data.driver", "")
	v.SetDefault("data.database_url", "")
	v.SetDefault("data.table", "prices")
	v.SetDefault("data.retry_attempts", 1)
	v.SetDefault("chart.mode", "gap")
	v.SetDefault("chart.hover_proxy", true)
	v.SetDefault("chart.range_bars", false)
	v.SetDefault("chart.fill_years", false)
	v.SetDefault("chart.width", 960)
	v.SetDefault("chart.height", 480)
	v.SetDefault("chart.x_tick_step", 5)
	v.SetDefault("chart.y_min", 0.0)
	v.SetDefault("chart.y_max", 5.0)
	v.SetDefault("chart.marker_offset", 0.25)
	v.SetDefault("chart.hit_radius", 12.0)
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
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	return &cfg, nil
}

// splitOrigins flattens comma-joined entries and drops blanks.
func splitOrigins(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, o := range strings.Split(entry, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Validate checks the settings a command depends on. mode is the subcommand
// name.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Chart.Mode {
	case "gap", "available":
	default:
		problems = append(problems, "chart.mode must be gap or available")
	}

	switch c.Data.Driver {
	case "":
	case "sqlite", "postgres":
		if c.Data.DatabaseURL == "" {
			problems = append(problems, "data.database_url is required when data.driver is set")
		}
	default:
		problems = append(problems, "data.driver must be sqlite or postgres")
	}

	if c.Data.RetryAttempts < 0 {
		problems = append(problems, "data.retry_attempts must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit.Requests <= 0 {
			problems = append(problems, "server.rate_limit.requests must be > 0")
		}
		if c.Server.RateLimit.WindowSecs <= 0 {
			problems = append(problems, "server.rate_limit.window_secs must be > 0")
		}
	case "render":
		if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
			problems = append(problems, "chart.width and chart.height must be > 0")
		}
		if c.Chart.YMax <= c.Chart.YMin {
			problems = append(problems, "chart.y_max must be > chart.y_min")
		}
	case "series", "validate":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
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
