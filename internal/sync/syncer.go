package sync

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/ingest/jsearch"
	"jobboard-engine/internal/store"
	"jobboard-engine/pkg/logging"
)

// DefaultQuery is used when the config names no queries, matching what the
// board has always synced.
const DefaultQuery = "Software Engineer"

// Provider is the single-page search the external API gives us.
type Provider interface {
	Search(ctx context.Context, query string) ([]jsearch.Listing, error)
}

// Status describes the most recent sync batch.
type Status struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastQuery   string `json:"last_query"`
	LastSynced  int    `json:"last_synced"`
	LastCreated int    `json:"last_created"`
	Running     bool   `json:"running"`
}

// Syncer runs one ingestion batch per query: fetch a page, upsert each
// listing by external id, broadcast the genuinely new ones.
type Syncer struct {
	db            *sql.DB
	provider      Provider
	hub           *events.Hub
	log           *logging.Logger
	serviceUserID string
	timeout       time.Duration

	group  singleflight.Group
	status atomic.Value // Status
}

func New(db *sql.DB, provider Provider, hub *events.Hub, log *logging.Logger, serviceUserID string, timeout time.Duration) *Syncer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Syncer{
		db:            db,
		provider:      provider,
		hub:           hub,
		log:           log,
		serviceUserID: serviceUserID,
		timeout:       timeout,
	}
	s.status.Store(Status{})
	return s
}

func (s *Syncer) Status() Status {
	return s.status.Load().(Status)
}

type runResult struct {
	synced  int
	created int
}

// Run executes one sync batch for the query. Concurrent calls for the same
// query collapse into a single batch, so two triggers cannot race on the
// same external ids.
func (s *Syncer) Run(ctx context.Context, query string) (synced, created int, err error) {
	if query == "" {
		query = DefaultQuery
	}

	v, err, _ := s.group.Do(query, func() (any, error) {
		res, err := s.runBatch(ctx, query)
		return res, err
	})
	if res, ok := v.(runResult); ok {
		synced, created = res.synced, res.created
	}
	return synced, created, err
}

func (s *Syncer) runBatch(ctx context.Context, query string) (runResult, error) {
	now := time.Now().Format(time.RFC3339)
	st := s.Status()
	st.Running = true
	st.LastRunAt = now
	st.LastQuery = query
	s.status.Store(st)

	res, err := s.sync(ctx, query)

	st = s.Status()
	st.Running = false
	st.LastSynced = res.synced
	st.LastCreated = res.created
	if err != nil {
		st.LastError = err.Error()
		s.log.Error("sync batch failed", "query", query, "err", err)
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
		s.log.Info("sync batch done", "query", query, "synced", res.synced, "created", res.created)
	}
	s.status.Store(st)

	return res, err
}

func (s *Syncer) sync(ctx context.Context, query string) (runResult, error) {
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// A provider failure (network, non-2xx, timeout) aborts the batch.
	listings, err := s.provider.Search(fctx, query)
	if err != nil {
		return runResult{}, err
	}
	if len(listings) == 0 {
		s.log.Warn("provider returned no listings", "query", query)
		return runResult{}, nil
	}

	var res runResult
	for _, l := range listings {
		if l.JobID == "" {
			s.log.Warn("listing without id skipped", "title", l.JobTitle)
			continue
		}

		job := ingest.MapListing(l, s.serviceUserID)

		// Upserts are independent per external id; one failing record
		// should not sink the rest of the batch.
		saved, isNew, err := store.UpsertExternalJob(ctx, s.db, job)
		if err != nil {
			s.log.Error("upsert listing failed", "external_id", l.JobID, "err", err)
			continue
		}
		res.synced++

		if isNew {
			res.created++
			s.hub.Publish(events.MakeEvent("", events.TypeNewJob, 1, saved))
			s.log.Info("broadcasting new job", "id", saved.ID, "title", saved.Title)
		}
	}

	return res, nil
}

// RunAll syncs every configured query in order. Errors are per batch; one
// failed query does not stop the others.
func (s *Syncer) RunAll(ctx context.Context, queries []string) {
	if len(queries) == 0 {
		queries = []string{DefaultQuery}
	}
	for _, q := range queries {
		if _, _, err := s.Run(ctx, q); err != nil && ctx.Err() != nil {
			return
		}
	}
}
