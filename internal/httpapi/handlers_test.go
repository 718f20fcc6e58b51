package httpapi_test

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/httpapi"
	"jobboard-engine/internal/ingest/jsearch"
	"jobboard-engine/internal/store"
	syncer "jobboard-engine/internal/sync"
	"jobboard-engine/pkg/logging"
)

var testSecret = []byte("test-secret")

type env struct {
	db  *sql.DB
	hub *events.Hub
	srv *httptest.Server
}

type noopProvider struct{}

func (noopProvider) Search(ctx context.Context, query string) ([]jsearch.Listing, error) {
	return nil, nil
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := store.EnsureServiceAccount(context.Background(), db)
	if err != nil {
		t.Fatalf("service account: %v", err)
	}

	hub := events.NewHub()
	log := logging.NewNop()

	var cfg config.Config
	cfg.App.Port = 8000
	cfg.Provider.BaseURL = "https://example.invalid"
	cfg.Provider.TimeoutSeconds = 5
	cfg.Provider.RequestsPerSec = 1
	cfg.Sync.Queries = []string{"Software Engineer"}

	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	cfgPath := filepath.Join(t.TempDir(), "config.yml")

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db,
		Hub:         hub,
		Auth:        &httpapi.Authenticator{DB: db, Secret: testSecret, Log: log},
		Syncer:      syncer.New(db, noopProvider{}, hub, log, svc.ID, time.Second),
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg: func() (config.Config, error) {
			c, err := config.Load(cfgPath)
			if err != nil {
				return c, err
			}
			out, _ := config.NormalizeAndValidate(c)
			return out, nil
		},
	})

	srv := httptest.NewServer(httpapi.Chain(mux, httpapi.RequestID))
	t.Cleanup(srv.Close)

	return &env{db: db, hub: hub, srv: srv}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	claims := httpapi.Claims{
		Name:  "Test User",
		Email: subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func (e *env) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func validJobBody() map[string]any {
	return map[string]any{
		"title":       "Go Engineer",
		"description": "Build the engine.",
		"location":    "London, UK",
		"salary":      75000,
		"jobType":     []string{"Full Time"},
		"tags":        []string{"Backend"},
	}
}

func TestListJobsEmpty(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/api/v1/jobs", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	jobs := decode[[]domain.Job](t, resp)
	if jobs == nil || len(jobs) != 0 {
		t.Fatalf("want empty array, got %v", jobs)
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodPost, "/api/v1/jobs", "", validJobBody())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateRejectsBadToken(t *testing.T) {
	e := newEnv(t)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "auth0|evil", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatal(err)
	}

	resp := e.do(t, http.MethodPost, "/api/v1/jobs", other, validJobBody())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)
	body := validJobBody()
	delete(body, "title")

	resp := e.do(t, http.MethodPost, "/api/v1/jobs", token(t, "auth0|alice"), body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	apiErr := decode[httpapi.APIError](t, resp)
	if apiErr.Error.Code != "validation" {
		t.Fatalf("code = %q", apiErr.Error.Code)
	}
}

func TestCreateBroadcastsNewJob(t *testing.T) {
	e := newEnv(t)
	ch := e.hub.Subscribe()
	defer e.hub.Unsubscribe(ch)

	resp := e.do(t, http.MethodPost, "/api/v1/jobs", token(t, "auth0|alice"), validJobBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	created := decode[domain.Job](t, resp)
	if created.ID == "" || created.CreatedBy == "" {
		t.Fatalf("created = %+v", created)
	}

	select {
	case raw := <-ch:
		var ev events.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil || ev.Type != events.TypeNewJob {
			t.Fatalf("event = %q (%v)", raw, err)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast after create")
	}
}

func TestGetJobNotFound(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/api/v1/jobs/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	apiErr := decode[httpapi.APIError](t, resp)
	if apiErr.Error.Code != "not_found" {
		t.Fatalf("code = %q", apiErr.Error.Code)
	}
}

func TestLikeToggleViaAPI(t *testing.T) {
	e := newEnv(t)
	tok := token(t, "auth0|alice")

	created := decode[domain.Job](t, e.do(t, http.MethodPost, "/api/v1/jobs", tok, validJobBody()))

	liked := decode[domain.Job](t, e.do(t, http.MethodPut, "/api/v1/jobs/like/"+created.ID, tok, nil))
	if len(liked.Likes) != 1 {
		t.Fatalf("likes = %v, want one entry", liked.Likes)
	}

	unliked := decode[domain.Job](t, e.do(t, http.MethodPut, "/api/v1/jobs/like/"+created.ID, tok, nil))
	if len(unliked.Likes) != 0 {
		t.Fatalf("likes = %v, want empty after second toggle", unliked.Likes)
	}
}

func TestApplyConflictViaAPI(t *testing.T) {
	e := newEnv(t)
	recruiter := token(t, "auth0|recruiter")
	seeker := token(t, "auth0|seeker")

	created := decode[domain.Job](t, e.do(t, http.MethodPost, "/api/v1/jobs", recruiter, validJobBody()))

	first := e.do(t, http.MethodPut, "/api/v1/jobs/apply/"+created.ID, seeker, nil)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first apply status = %d", first.StatusCode)
	}
	job := decode[domain.Job](t, first)
	if len(job.Applicants) != 1 {
		t.Fatalf("applicants = %v", job.Applicants)
	}

	second := e.do(t, http.MethodPut, "/api/v1/jobs/apply/"+created.ID, seeker, nil)
	if second.StatusCode != http.StatusConflict {
		t.Fatalf("second apply status = %d, want 409", second.StatusCode)
	}
	apiErr := decode[httpapi.APIError](t, second)
	if apiErr.Error.Code != "already_applied" {
		t.Fatalf("code = %q", apiErr.Error.Code)
	}
}

func TestDeleteOwnerOnlyViaAPI(t *testing.T) {
	e := newEnv(t)
	owner := token(t, "auth0|owner")
	other := token(t, "auth0|other")

	created := decode[domain.Job](t, e.do(t, http.MethodPost, "/api/v1/jobs", owner, validJobBody()))

	resp := e.do(t, http.MethodDelete, "/api/v1/jobs/"+created.ID, other, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	resp = e.do(t, http.MethodDelete, "/api/v1/jobs/"+created.ID, owner, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	resp = e.do(t, http.MethodGet, "/api/v1/jobs/"+created.ID, "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after delete", resp.StatusCode)
	}
}

func TestJobsByUnknownUser(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/api/v1/jobs/user/ghost", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	e := newEnv(t)
	tok := token(t, "auth0|alice")

	mk := func(title, location string, tags []string) {
		body := validJobBody()
		body["title"] = title
		body["location"] = location
		body["tags"] = tags
		resp := e.do(t, http.MethodPost, "/api/v1/jobs", tok, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed %q: status %d", title, resp.StatusCode)
		}
	}
	mk("Go Engineer", "London, UK", []string{"Backend"})
	mk("React Developer", "Berlin, Germany", []string{"Frontend"})

	jobs := decode[[]domain.Job](t, e.do(t, http.MethodGet, "/api/v1/jobs/search?title=go", "", nil))
	if len(jobs) != 1 || jobs[0].Title != "Go Engineer" {
		t.Fatalf("title search: %+v", jobs)
	}

	jobs = decode[[]domain.Job](t, e.do(t, http.MethodGet, "/api/v1/jobs/search?tags=Frontend,Design", "", nil))
	if len(jobs) != 1 || jobs[0].Title != "React Developer" {
		t.Fatalf("tags search: %+v", jobs)
	}

	jobs = decode[[]domain.Job](t, e.do(t, http.MethodGet, "/api/v1/jobs/search?location=tokyo", "", nil))
	if len(jobs) != 0 {
		t.Fatalf("location search: %+v", jobs)
	}
}

func TestEventStream(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resp, err := e.srv.Client().Do(req.WithContext(ctx))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	readEvent := func() events.Event {
		t.Helper()
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var ev events.Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatalf("bad event: %v", err)
			}
			return ev
		}
		t.Fatalf("stream ended: %v", sc.Err())
		return events.Event{}
	}

	if ev := readEvent(); ev.Type != "ping" {
		t.Fatalf("first event = %q, want ping", ev.Type)
	}

	e.hub.Publish(events.MakeEvent("", events.TypeNewJob, 1, map[string]string{"id": "j1"}))

	if ev := readEvent(); ev.Type != events.TypeNewJob {
		t.Fatalf("second event = %q, want %q", ev.Type, events.TypeNewJob)
	}
}

func TestSyncStatusEndpoint(t *testing.T) {
	e := newEnv(t)
	st := decode[syncer.Status](t, e.do(t, http.MethodGet, "/sync/status", "", nil))
	if st.Running {
		t.Fatal("fresh syncer should not be running")
	}
}

func TestConfigGetAndPut(t *testing.T) {
	e := newEnv(t)

	cur := decode[config.Config](t, e.do(t, http.MethodGet, "/config", "", nil))
	if cur.App.Port != 8000 {
		t.Fatalf("port = %d", cur.App.Port)
	}

	bad := cur
	bad.App.Port = 0
	resp := e.do(t, http.MethodPut, "/config", "", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid put status = %d, want 400", resp.StatusCode)
	}
	vr := decode[config.Validation](t, resp)
	if len(vr.Errors) == 0 {
		t.Fatal("expected structured validation errors")
	}

	good := cur
	good.App.Port = 9000
	saved := decode[config.Config](t, e.do(t, http.MethodPut, "/config", "", good))
	if saved.App.Port != 9000 {
		t.Fatalf("saved port = %d", saved.App.Port)
	}

	cur = decode[config.Config](t, e.do(t, http.MethodGet, "/config", "", nil))
	if cur.App.Port != 9000 {
		t.Fatal("reload did not take effect")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodDelete, "/api/v1/jobs", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	e := newEnv(t)
	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/api/v1/jobs/missing", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("header = %q", got)
	}
	apiErr := decode[httpapi.APIError](t, resp)
	if apiErr.Error.RequestID != "req-42" {
		t.Fatalf("body request id = %q", apiErr.Error.RequestID)
	}
}
