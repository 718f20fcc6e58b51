package httpapi

import "net/http"

// NewMux wires every route. Auth-gated mutations go through d.Auth.Require;
// reads stay open, matching the original surface.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	// Jobs
	jh := JobsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/api/v1/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: d.Auth.Require(jh.Create),
	}))
	mux.HandleFunc("/api/v1/jobs/search", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Search,
	}))
	mux.HandleFunc("/api/v1/jobs/user/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.ByUser,
	}))
	mux.HandleFunc("/api/v1/jobs/like/", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: d.Auth.Require(jh.Like),
	}))
	mux.HandleFunc("/api/v1/jobs/apply/", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: d.Auth.Require(jh.Apply),
	}))
	mux.HandleFunc("/api/v1/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    jh.GetByPath, // expects /api/v1/jobs/{id}
		http.MethodDelete: d.Auth.Require(jh.DeleteByPath),
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Sync
	sh := SyncHandler{Syncer: d.Syncer, CfgVal: d.CfgVal}
	mux.HandleFunc("/sync/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Status,
	}))
	mux.HandleFunc("/sync/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets
	mux.HandleFunc("/api/secrets/provider", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: SecretsHandler{}.SetProviderKey,
	}))

	return mux
}
