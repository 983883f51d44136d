package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedstash/feedstash/app/cfg"
	"github.com/feedstash/feedstash/app/fetch"
	"github.com/feedstash/feedstash/app/opml"
	"github.com/feedstash/feedstash/app/overrides"
	"github.com/feedstash/feedstash/app/storage"
	"github.com/feedstash/feedstash/app/summarize"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)
	slog.Info("Starting FeedStash", "version", appCfg.Version)

	if appCfg.ShowHistory > 0 {
		if err := showHistory(appCfg); err != nil {
			slog.Error("Failed to show run history", "error", err)
			os.Exit(1)
		}
		return
	}

	if appCfg.OutlineFile == "" {
		slog.Error("No outline file configured, pass --outline or set OUTLINE_FILE")
		os.Exit(1)
	}

	sources, err := loadSources(appCfg)
	if err != nil {
		slog.Error("Failed to load feed sources", "error", err)
		os.Exit(1)
	}

	var feedOverrides *overrides.Set
	if appCfg.OverridesFile != "" {
		feedOverrides, err = overrides.Load(appCfg.OverridesFile)
		if err != nil {
			slog.Error("Failed to load overrides", "error", err)
			os.Exit(1)
		}
	}

	enabled := make([]opml.Source, 0, len(sources))
	for _, src := range sources {
		if feedOverrides.Disabled(src.FeedURL) {
			slog.Info("Feed disabled, skipping", "feed", src.Title, "url", src.FeedURL)
			continue
		}
		enabled = append(enabled, src)
	}
	slog.Info("Feed sources loaded", "total", len(sources), "enabled", len(enabled))

	opts := fetch.Options{
		MaxConcurrent: appCfg.MaxConcurrent,
		Timeout:       appCfg.GetFetchTimeout(),
		UserAgent:     appCfg.UserAgent,
		Overrides:     feedOverrides,
	}
	if appCfg.Summarize {
		summarizer, err := summarize.NewOpenAISummarizer(appCfg.OpenAIAPIKey, appCfg.OpenAIBaseURL, appCfg.SummaryModel)
		if err != nil {
			slog.Error("Failed to configure summarizer", "error", err)
			os.Exit(1)
		}
		opts.Summarizer = summarizer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.NewFileStore(appCfg.OutputDir)
	orchestrator := fetch.NewOrchestrator(store, opts)

	startedAt := time.Now()
	summary, err := orchestrator.Run(ctx, enabled)
	if err != nil {
		slog.Error("Fetch run aborted", "error", err)
		os.Exit(1)
	}
	finishedAt := time.Now()

	for _, outcome := range summary.Outcomes {
		if outcome.Succeeded {
			continue
		}
		slog.Warn("Feed failed", "feed", outcome.Source.Title, "url", outcome.Source.FeedURL, "reason", outcome.Message)
	}
	slog.Info("Run summary",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", finishedAt.Sub(startedAt).Round(time.Millisecond).String(),
		"output_dir", store.Dir())

	if appCfg.HistoryDB != "" {
		if err := recordHistory(appCfg.HistoryDB, startedAt, finishedAt, summary); err != nil {
			slog.Warn("Failed to record run history", "error", err)
		}
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadSources(appCfg *cfg.Cfg) ([]opml.Source, error) {
	data, err := os.ReadFile(appCfg.OutlineFile)
	if err != nil {
		return nil, fmt.Errorf("read outline file: %w", err)
	}

	doc, err := opml.NewParser().Run(data)
	if err != nil {
		return nil, err
	}
	slog.Info("Outline parsed", "title", doc.Title)

	if appCfg.Category != "" {
		return doc.FilterByCategory(appCfg.Category), nil
	}
	return doc.Flatten(), nil
}

func recordHistory(path string, startedAt, finishedAt time.Time, summary *fetch.Summary) error {
	history, err := storage.OpenHistory(path)
	if err != nil {
		return err
	}
	defer history.Close()

	outcomes := make([]storage.RunOutcome, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		outcomes = append(outcomes, storage.RunOutcome{
			Title:       o.Source.Title,
			FeedURL:     o.Source.FeedURL,
			Succeeded:   o.Succeeded,
			Message:     o.Message,
			StoragePath: o.StoragePath,
		})
	}

	runID, err := history.RecordRun(storage.Run{
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Total:      summary.Total,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
	}, outcomes)
	if err != nil {
		return err
	}
	slog.Debug("Run recorded", "run_id", runID)
	return nil
}

func showHistory(appCfg *cfg.Cfg) error {
	if appCfg.HistoryDB == "" {
		return fmt.Errorf("run history requires --history-db")
	}

	history, err := storage.OpenHistory(appCfg.HistoryDB)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.RecentRuns(appCfg.ShowHistory)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("run %d: %s  total=%d succeeded=%d failed=%d (%s)\n",
			run.ID,
			run.StartedAt.Local().Format(time.RFC3339),
			run.Total, run.Succeeded, run.Failed,
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))

		if run.Failed == 0 {
			continue
		}
		outcomes, err := history.RunOutcomes(run.ID)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			if o.Succeeded {
				continue
			}
			fmt.Printf("  failed: %s (%s): %s\n", o.Title, o.FeedURL, o.Message)
		}
	}
	return nil
}
