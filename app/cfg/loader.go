package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Pipeline configuration
	OutlineFile   string `long:"outline" env:"OUTLINE_FILE" description:"Path to the OPML subscriptions file"`
	OutputDir     string `long:"output-dir" env:"OUTPUT_DIR" default:"./archive" description:"Directory for persisted feed documents"`
	Category      string `long:"category" env:"CATEGORY" description:"Only fetch feeds whose category path contains this name (exact match)"`
	MaxConcurrent int    `long:"max-concurrent" env:"MAX_CONCURRENT" default:"5" description:"Maximum number of simultaneous feed fetches"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-fetch timeout in seconds"`
	OverridesFile string `long:"overrides" env:"OVERRIDES_FILE" description:"Optional YAML file with per-feed overrides"`

	// Run history
	HistoryDB   string `long:"history-db" env:"HISTORY_DB" description:"Path to the sqlite run history database (history disabled when empty)"`
	ShowHistory int    `long:"show-history" description:"Print the last N recorded runs and exit"`

	// Summarization collaborator
	Summarize     bool   `long:"summarize" env:"SUMMARIZE" description:"Generate AI summaries for fetched items"`
	OpenAIAPIKey  string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key (required with --summarize)"`
	OpenAIBaseURL string `long:"openai-base-url" env:"OPENAI_BASE_URL" description:"Override the OpenAI API base URL"`
	SummaryModel  string `long:"summary-model" env:"SUMMARY_MODEL" default:"gpt-4o-mini" description:"Model used for item summaries"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"FeedStash/1.0" description:"User agent string for HTTP requests"`
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
		OutlineFile:   raw.OutlineFile,
		OutputDir:     raw.OutputDir,
		Category:      raw.Category,
		MaxConcurrent: raw.MaxConcurrent,
		FetchTimeout:  raw.FetchTimeout,
		OverridesFile: raw.OverridesFile,
		HistoryDB:     raw.HistoryDB,
		ShowHistory:   raw.ShowHistory,
		Summarize:     raw.Summarize,
		OpenAIAPIKey:  raw.OpenAIAPIKey,
		OpenAIBaseURL: raw.OpenAIBaseURL,
		SummaryModel:  raw.SummaryModel,
		UserAgent:     raw.UserAgent,
		Debug:         raw.Debug,
		Version:       GetVersion(),
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
