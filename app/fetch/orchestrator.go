package fetch

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/feedstash/feedstash/app/opml"
	"github.com/feedstash/feedstash/app/sanitize"
	"github.com/feedstash/feedstash/app/storage"
	"github.com/feedstash/feedstash/app/summarize"
	"github.com/feedstash/feedstash/app/syndication"
)

// Orchestrator drives the ingestion pipeline: bounded-concurrency retrieval
// of feed sources, parsing, sanitizing and persistence, with per-source
// failure isolation.
type Orchestrator struct {
	parser    *syndication.Parser
	extractor *summarize.Extractor
	store     *storage.FileStore
	client    *http.Client
	opts      Options
}

func NewOrchestrator(store *storage.FileStore, opts Options) *Orchestrator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Orchestrator{
		parser:    syndication.NewParser(),
		extractor: summarize.NewExtractor(),
		store:     store,
		opts:      opts,
		client: &http.Client{
			// Per-fetch deadlines come from request contexts; a client-wide
			// timeout would race across workers.
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
	}
}

// Run processes every source through a bounded worker pool and returns the
// aggregate summary. Per-source failures (network, timeout, parse, storage)
// are recorded as failed outcomes and never abort the batch; the only fatal
// error is an output directory that cannot be created.
func (o *Orchestrator) Run(ctx context.Context, sources []opml.Source) (*Summary, error) {
	if err := o.store.Ensure(); err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(sources)}
	if len(sources) == 0 {
		return summary, nil
	}

	workers := min(o.opts.MaxConcurrent, len(sources))
	slog.Debug("Starting fetch pool", "sources", len(sources), "workers", workers)

	jobs := make(chan opml.Source)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				results <- o.process(ctx, src)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, src := range sources {
			jobs <- src
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		if outcome.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	slog.Info("Fetch run completed",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
	return summary, nil
}

// process runs the strictly sequential per-source cycle: fetch, parse,
// sanitize, persist.
func (o *Orchestrator) process(ctx context.Context, src opml.Source) Outcome {
	outcome := Outcome{Source: src}

	timeout := o.opts.Overrides.TimeoutFor(src.FeedURL, o.opts.Timeout)
	body, err := o.fetchBody(ctx, src.FeedURL, timeout)
	if err != nil {
		outcome.Message = err.Error()
		slog.Warn("Feed fetch failed", "feed", src.Title, "url", src.FeedURL, "error", err)
		return outcome
	}

	doc := o.parser.Run(body)
	o.enrich(ctx, doc)
	sanitize.Feed(doc)

	name := sanitize.ToSafeFilename(cmp.Or(doc.Title, src.Title))
	path, err := o.store.Write(name, storage.NewDocument(src, doc))
	if err != nil {
		outcome.Message = err.Error()
		slog.Warn("Feed store failed", "feed", src.Title, "url", src.FeedURL, "error", err)
		return outcome
	}

	outcome.Succeeded = true
	outcome.StoragePath = path
	outcome.Message = fmt.Sprintf("stored %d items", len(doc.Items))
	slog.Info("Feed stored", "feed", src.Title, "url", src.FeedURL, "items", len(doc.Items), "path", path)
	return outcome
}

func (o *Orchestrator) fetchBody(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", cmp.Or(o.opts.UserAgent, "FeedStash/1.0"))
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "xml") && !strings.Contains(ct, "rss") {
		slog.Debug("Unexpected content type", "url", url, "content_type", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return data, nil
}

// enrich asks the summarization collaborator for a summary of each item's
// plain-text body and attaches it to the item's Extra bag. Collaborator
// failures are logged and skipped.
func (o *Orchestrator) enrich(ctx context.Context, doc *syndication.Document) {
	if o.opts.Summarizer == nil {
		return
	}
	for i := range doc.Items {
		item := &doc.Items[i]
		text := o.extractor.Run(item.Summary)
		if text == "" {
			continue
		}
		generated, err := o.opts.Summarizer.Summarize(ctx, text)
		if err != nil {
			slog.Warn("Summarization failed", "item", item.Title, "error", err)
			continue
		}
		if item.Extra == nil {
			item.Extra = make(map[string]string)
		}
		item.Extra["ai_summary"] = generated
	}
}
