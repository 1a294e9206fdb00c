package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Content source configuration
	Source     string `long:"source" env:"SOURCE" default:"fs" choice:"fs" choice:"feed" description:"Content source backend"`
	ContentDir string `long:"content-dir" env:"CONTENT_DIR" default:"./content" description:"Directory containing markdown post files (fs source)"`
	FeedURL    string `long:"feed-url" env:"FEED_URL" description:"RSS/Atom feed URL (feed source)"`

	// Build configuration
	OutputDir      string `long:"output-dir" env:"OUTPUT_DIR" default:"./public" description:"Directory for rendered HTML fragments and the build manifest"`
	DBPath         string `long:"db-path" env:"DB_PATH" default:"./pagegen.db" description:"Path to the sqlite page database"`
	WorkerCount    int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent render workers"`
	FeedTimeout    int    `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Timeout in seconds for feed HTTP requests"`
	Fallback       string `long:"fallback" env:"FALLBACK" default:"off" choice:"off" choice:"lazy" description:"Policy for ids unknown at build time"`

	// Server configuration
	Mode         string `long:"mode" env:"MODE" default:"build" choice:"build" choice:"serve" description:"Run a one-shot build or serve resolved pages over HTTP"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://blog.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`
	Dev          bool   `long:"dev" env:"DEV" description:"Development mode: resolve every request from source instead of the build cache"`

	// Application metadata
	Locale    string `long:"locale" env:"LOCALE" default:"en" description:"BCP 47 locale tag used for title casing"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"pagegen/1.0" description:"User agent string for feed requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Source:         raw.Source,
		ContentDir:     raw.ContentDir,
		FeedURL:        raw.FeedURL,
		OutputDir:      raw.OutputDir,
		DBPath:         raw.DBPath,
		WorkerCount:    raw.WorkerCount,
		FeedTimeout:    raw.FeedTimeout,
		Fallback:       raw.Fallback,
		Mode:           raw.Mode,
		Port:           raw.Port,
		BaseUrl:        raw.BaseUrl,
		APIAccessKey:   raw.APIAccessKey,
		Dev:            raw.Dev,
		Locale:         raw.Locale,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if cfg.Source == "feed" && cfg.FeedURL == "" {
		return nil, fmt.Errorf("--feed-url is required when --source=feed")
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
