package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/feedstash/feedstash/app/opml"
	"github.com/feedstash/feedstash/app/storage"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Sample Feed</title>
    <link>https://example.com</link>
    <description>Sample description</description>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <description>Hello there</description>
      <guid>https://example.com/first</guid>
    </item>
  </channel>
</rss>`

func rssWithTitle(title string) string {
	return strings.Replace(rssSample, "Sample Feed", title, 1)
}

func TestRunPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok1":
			w.Write([]byte(rssWithTitle("Feed One")))
		case "/ok2":
			w.Write([]byte(rssWithTitle("Feed Two")))
		case "/missing":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	sources := []opml.Source{
		{Title: "One", FeedURL: server.URL + "/ok1"},
		{Title: "Gone", FeedURL: server.URL + "/missing"},
		{Title: "Two", FeedURL: server.URL + "/ok2"},
		{Title: "Broken", FeedURL: server.URL + "/error"},
	}

	store := storage.NewFileStore(t.TempDir())
	orchestrator := NewOrchestrator(store, Options{MaxConcurrent: 2})

	summary, err := orchestrator.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if summary.Total != 4 {
		t.Errorf("Expected total 4, got: %d", summary.Total)
	}
	if summary.Succeeded != 2 {
		t.Errorf("Expected 2 succeeded, got: %d", summary.Succeeded)
	}
	if summary.Failed != 2 {
		t.Errorf("Expected 2 failed, got: %d", summary.Failed)
	}
	if len(summary.Outcomes) != 4 {
		t.Fatalf("Expected one outcome per source, got: %d", len(summary.Outcomes))
	}

	for _, outcome := range summary.Outcomes {
		switch outcome.Source.Title {
		case "Gone":
			if outcome.Succeeded {
				t.Errorf("Expected missing feed to fail")
			}
			if !strings.Contains(outcome.Message, "404") {
				t.Errorf("Expected 404 in failure message, got: %s", outcome.Message)
			}
			if outcome.StoragePath != "" {
				t.Errorf("Expected no storage path for failed feed, got: %s", outcome.StoragePath)
			}
		case "Broken":
			if outcome.Succeeded {
				t.Errorf("Expected broken feed to fail")
			}
			if !strings.Contains(outcome.Message, "500") {
				t.Errorf("Expected 500 in failure message, got: %s", outcome.Message)
			}
		default:
			if !outcome.Succeeded {
				t.Errorf("Expected %s to succeed, got: %s", outcome.Source.Title, outcome.Message)
			}
			if _, err := os.Stat(outcome.StoragePath); err != nil {
				t.Errorf("Expected stored file at %s, got: %v", outcome.StoragePath, err)
			}
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte(rssSample))
	}))
	defer server.Close()

	sources := make([]opml.Source, 12)
	for i := range sources {
		sources[i] = opml.Source{Title: "Feed", FeedURL: server.URL}
	}

	store := storage.NewFileStore(t.TempDir())
	orchestrator := NewOrchestrator(store, Options{MaxConcurrent: 3})

	summary, err := orchestrator.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Succeeded != 12 {
		t.Errorf("Expected all 12 to succeed, got: %d", summary.Succeeded)
	}
	if got := peak.Load(); got > 3 {
		t.Errorf("Expected at most 3 concurrent fetches, observed: %d", got)
	}
}

func TestRunEmptySources(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	orchestrator := NewOrchestrator(store, Options{})

	summary, err := orchestrator.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Total != 0 || summary.Succeeded != 0 || summary.Failed != 0 {
		t.Errorf("Expected empty summary, got: %+v", summary)
	}
	if len(summary.Outcomes) != 0 {
		t.Errorf("Expected no outcomes, got: %d", len(summary.Outcomes))
	}
}

func TestRunTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte(rssSample))
	}))
	defer server.Close()

	store := storage.NewFileStore(t.TempDir())
	orchestrator := NewOrchestrator(store, Options{Timeout: 100 * time.Millisecond})

	summary, err := orchestrator.Run(context.Background(), []opml.Source{
		{Title: "Slow", FeedURL: server.URL},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("Expected the slow feed to fail, got: %+v", summary)
	}
	if summary.Outcomes[0].Message == "" {
		t.Errorf("Expected a failure message on the timed-out outcome")
	}
}

func TestRunEmptyBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := storage.NewFileStore(t.TempDir())
	orchestrator := NewOrchestrator(store, Options{})

	summary, err := orchestrator.Run(context.Background(), []opml.Source{
		{Title: "Empty", FeedURL: server.URL},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("Expected empty response to fail, got: %+v", summary)
	}
	if !strings.Contains(summary.Outcomes[0].Message, "empty response body") {
		t.Errorf("Unexpected failure message: %s", summary.Outcomes[0].Message)
	}
}

func TestRunFilenameCollision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssWithTitle("Shared Title")))
	}))
	defer server.Close()

	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	orchestrator := NewOrchestrator(store, Options{MaxConcurrent: 1})

	summary, err := orchestrator.Run(context.Background(), []opml.Source{
		{Title: "A", FeedURL: server.URL + "/a"},
		{Title: "B", FeedURL: server.URL + "/b"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("Expected both sources to succeed, got: %+v", summary)
	}

	expected := filepath.Join(dir, "shared_title.json")
	for _, outcome := range summary.Outcomes {
		if outcome.StoragePath != expected {
			t.Errorf("Expected colliding path %s, got: %s", expected, outcome.StoragePath)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Expected readable output directory, got: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected a single file after collision, got: %d", len(entries))
	}
}

func TestRunFromOutline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone.xml":
			http.NotFound(w, r)
		default:
			w.Write([]byte(rssWithTitle("Feed " + r.URL.Path)))
		}
	}))
	defer server.Close()

	outline := `<?xml version="1.0"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Technology">
      <outline text="Alpha" type="rss" xmlUrl="` + server.URL + `/alpha.xml"/>
      <outline text="Beta" type="rss" xmlUrl="` + server.URL + `/gone.xml"/>
    </outline>
    <outline text="Gamma" type="rss" xmlUrl="` + server.URL + `/gamma.xml"/>
  </body>
</opml>`

	doc, err := opml.NewParser().Run([]byte(outline))
	if err != nil {
		t.Fatalf("Expected no parse error, got: %v", err)
	}
	sources := doc.Flatten()
	if len(sources) != 3 {
		t.Fatalf("Expected 3 sources, got: %d", len(sources))
	}

	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	orchestrator := NewOrchestrator(store, Options{MaxConcurrent: 2})

	summary, err := orchestrator.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("Expected 3/2/1 summary, got: %d/%d/%d", summary.Total, summary.Succeeded, summary.Failed)
	}
	for _, outcome := range summary.Outcomes {
		if outcome.Succeeded {
			continue
		}
		if !strings.Contains(outcome.Message, "404") {
			t.Errorf("Expected 404 in failure message, got: %s", outcome.Message)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Expected readable output directory, got: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 stored files, got: %d", len(entries))
	}
}
