// Command feed is a terminal job-board client: it fetches the current
// listings once, then follows the engine's event stream and keeps a
// filtered, newest-first view printed to stdout.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/feed"
	"jobboard-engine/pkg/logging"
)

func main() {
	var (
		addr     = flag.String("addr", "http://localhost:8000", "engine base URL")
		title    = flag.String("title", "", "filter: job title substring")
		location = flag.String("location", "", "filter: location substring")
		types    = flag.String("types", "", "filter: comma list of full,part,contract,intern")
		cats     = flag.String("cats", "", "filter: comma list of stack,backend,devops,ui")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	log := logging.New(*logLevel)
	defer func() { _ = log.Sync() }()

	query := feed.SearchQuery{Title: *title, Location: *location}
	filters := parseFilters(*types, *cats)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f := feed.New()
	client := &http.Client{Timeout: 30 * time.Second}

	jobs, err := fetchJobs(ctx, client, *addr)
	if err != nil {
		log.Fatal("initial fetch failed", "addr", *addr, "err", err)
	}
	f.Replace(jobs)
	render(f, query, filters)

	for ctx.Err() == nil {
		if err := follow(ctx, *addr, f, query, filters); err != nil && ctx.Err() == nil {
			log.Warn("event stream dropped, reconnecting", "err", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
			}
		}
	}
}

func fetchJobs(ctx context.Context, client *http.Client, addr string) ([]domain.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/api/v1/jobs", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list jobs: status %d", resp.StatusCode)
	}
	var jobs []domain.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// follow consumes the SSE stream until the context ends or the connection
// drops. The stream client has no timeout: it is meant to stay open.
func follow(ctx context.Context, addr string, f *feed.Feed, q feed.SearchQuery, fl feed.Filters) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream: status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev events.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}
		if ev.Type != events.TypeNewJob {
			continue
		}
		var j domain.Job
		if err := json.Unmarshal(ev.Data, &j); err != nil {
			continue
		}
		if f.Prepend(j) {
			render(f, q, fl)
		}
	}
	return sc.Err()
}

func render(f *feed.Feed, q feed.SearchQuery, fl feed.Filters) {
	view := feed.Apply(f.Jobs(), q, fl)
	fmt.Printf("\n=== %d of %d jobs (%s) ===\n", len(view), f.Len(), time.Now().Format("15:04:05"))
	for _, j := range view {
		fmt.Fprintf(os.Stdout, "%-40.40s  %-24.24s  %s/%s  [%s]\n",
			j.Title, j.Location, money(j.Salary), strings.ToLower(j.SalaryType),
			strings.Join(j.JobType, ", "))
	}
}

func money(n int) string {
	return fmt.Sprintf("$%d", n)
}

func parseFilters(types, cats string) feed.Filters {
	var f feed.Filters
	for _, t := range strings.Split(types, ",") {
		switch strings.TrimSpace(strings.ToLower(t)) {
		case "full":
			f.FullTime = true
		case "part":
			f.PartTime = true
		case "contract":
			f.Contract = true
		case "intern":
			f.Internship = true
		}
	}
	for _, c := range strings.Split(cats, ",") {
		switch strings.TrimSpace(strings.ToLower(c)) {
		case "stack":
			f.FullStack = true
		case "backend":
			f.Backend = true
		case "devops":
			f.DevOps = true
		case "ui":
			f.UIUX = true
		}
	}
	return f
}
