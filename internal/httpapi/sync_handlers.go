package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"jobboard-engine/internal/config"
	syncer "jobboard-engine/internal/sync"
)

type SyncHandler struct {
	Syncer *syncer.Syncer
	CfgVal *atomic.Value // stores config.Config
}

func (h SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Syncer.Status())
}

// Run triggers an on-demand batch for every configured query. The batch
// outlives the request; progress is visible via Status.
func (h SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Syncer.Status().Running {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	go h.Syncer.RunAll(context.Background(), cfg.Sync.Queries)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
