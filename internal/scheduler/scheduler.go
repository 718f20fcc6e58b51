// Package scheduler wires up the cron entry that triggers the recurring
// sync batch for every configured query.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	syncer "jobboard-engine/internal/sync"
	"jobboard-engine/pkg/logging"
)

// DefaultSpec runs once a day at midnight.
const DefaultSpec = "0 0 * * *"

type Scheduler struct {
	cron    *cron.Cron
	syncer  *syncer.Syncer
	queries []string
	spec    string
	log     *logging.Logger
}

func New(s *syncer.Syncer, queries []string, spec string, log *logging.Logger) *Scheduler {
	if strings.TrimSpace(spec) == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		cron:    cron.New(),
		syncer:  s,
		queries: queries,
		spec:    spec,
		log:     log,
	}
}

// Start registers the sync entry and starts the cron loop. With runOnStart
// the first batch fires immediately (non-blocking) so a fresh install has
// listings before the first tick.
func (s *Scheduler) Start(ctx context.Context, runOnStart bool) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.syncer.RunAll(ctx, s.queries)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("sync schedule started", "spec", s.spec, "queries", len(s.queries))

	if runOnStart {
		go s.syncer.RunAll(ctx, s.queries)
	}
	return nil
}

// Stop halts the cron loop; a batch already in flight finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("sync schedule stopped")
}
