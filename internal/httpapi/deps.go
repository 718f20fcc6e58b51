package httpapi

import (
	"database/sql"
	"sync/atomic"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/events"
	syncer "jobboard-engine/internal/sync"
)

// Deps is everything the router needs, constructed in main and passed down
// so tests can swap any piece.
type Deps struct {
	DB   *sql.DB
	Hub  *events.Hub
	Auth *Authenticator

	Syncer *syncer.Syncer

	// Atomic store so PUT /config takes effect without a restart.
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
