package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration. It is loaded once at startup and
// not modified after Validate succeeds.
type Config struct {
	APIKey         string        `yaml:"api_key" validate:"required"`
	Line           string        `yaml:"line" validate:"required"`
	Stop           string        `yaml:"stop" validate:"required,len=3"`
	FeedURL        string        `yaml:"feed_url" validate:"omitempty,url"` // empty = MTA endpoint
	MaxTimes       int           `yaml:"max_times" validate:"gte=1"`
	ImminentText   string        `yaml:"imminent_text" validate:"required"`
	PollInterval   time.Duration `yaml:"poll_interval" validate:"gt=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxPolls       int           `yaml:"max_polls" validate:"gte=0"` // 0 = unlimited
	RunFor         time.Duration `yaml:"run_for" validate:"gte=0"`   // 0 = unlimited

	StationName string `yaml:"station_name"`
	NorthLabel  string `yaml:"north_label"`
	SouthLabel  string `yaml:"south_label"`
	PanelWidth  int    `yaml:"panel_width" validate:"gte=0"`
	Panel       bool   `yaml:"panel"` // draw the text panel on stdout

	Port     int    `yaml:"port" validate:"gte=0,lte=65535"` // 0 disables the web board
	DBPath   string `yaml:"db_path"`
	GTFSDir  string `yaml:"gtfs_dir"`
	GTFSURL  string `yaml:"gtfs_url" validate:"omitempty,url"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	ImportGTFS bool `yaml:"-"` // CLI flag: force GTFS re-import
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Line:           "G",
		Stop:           "G26",
		MaxTimes:       2,
		ImminentText:   "<1",
		PollInterval:   2 * time.Second,
		RequestTimeout: 10 * time.Second,
		StationName:    "Greenpoint Av",
		NorthLabel:     "Court Sq.",
		SouthLabel:     "Church Av.",
		PanelWidth:     0,
		Panel:          true,
		DBPath:         "./subwayboard.db",
		GTFSDir:        "./data",
		GTFSURL:        "http://web.mta.info/developers/data/nyct/subway/google_transit.zip",
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// SUBWAYBOARD_CONFIG, a .env file in the working directory and finally the
// environment. Later sources win.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("SUBWAYBOARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
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
	c.APIKey = envStr("SUBWAYBOARD_API_KEY", c.APIKey)
	c.Line = envStr("SUBWAYBOARD_LINE", c.Line)
	c.Stop = envStr("SUBWAYBOARD_STOP", c.Stop)
	c.FeedURL = envStr("SUBWAYBOARD_FEED_URL", c.FeedURL)
	c.MaxTimes = envInt("SUBWAYBOARD_MAX_TIMES", c.MaxTimes)
	c.ImminentText = envStr("SUBWAYBOARD_IMMINENT_TEXT", c.ImminentText)
	c.PollInterval = envDuration("SUBWAYBOARD_POLL_INTERVAL", c.PollInterval)
	c.RequestTimeout = envDuration("SUBWAYBOARD_REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxPolls = envInt("SUBWAYBOARD_MAX_POLLS", c.MaxPolls)
	c.RunFor = envDuration("SUBWAYBOARD_RUN_FOR", c.RunFor)
	c.StationName = envStr("SUBWAYBOARD_STATION_NAME", c.StationName)
	c.NorthLabel = envStr("SUBWAYBOARD_NORTH_LABEL", c.NorthLabel)
	c.SouthLabel = envStr("SUBWAYBOARD_SOUTH_LABEL", c.SouthLabel)
	c.PanelWidth = envInt("SUBWAYBOARD_PANEL_WIDTH", c.PanelWidth)
	c.Panel = envBool("SUBWAYBOARD_PANEL", c.Panel)
	c.Port = envInt("SUBWAYBOARD_PORT", c.Port)
	c.DBPath = envStr("SUBWAYBOARD_DB_PATH", c.DBPath)
	c.GTFSDir = envStr("SUBWAYBOARD_GTFS_DIR", c.GTFSDir)
	c.GTFSURL = envStr("SUBWAYBOARD_GTFS_URL", c.GTFSURL)
	c.LogLevel = envStr("SUBWAYBOARD_LOG_LEVEL", c.LogLevel)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.ImportGTFS && !c.StaticEnabled() {
		return errors.New("invalid config: ImportGTFS needs DBPath and GTFSURL")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StaticEnabled reports whether static GTFS stops should be imported.
func (c *Config) StaticEnabled() bool {
	return c.DBPath != "" && c.GTFSURL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
