package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/store"
)

type JobsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs(r.Context(), h.DB)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

type createJobReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Salary      int      `json:"salary"`
	SalaryType  string   `json:"salaryType"`
	Negotiable  bool     `json:"negotiable"`
	JobType     []string `json:"jobType"`
	Tags        []string `json:"tags"`
	Skills      []string `json:"skills"`
}

// Create accepts a recruiter's posting and broadcasts it to every connected
// session.
func (h JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req createJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}

	job := domain.Job{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Salary:      req.Salary,
		SalaryType:  req.SalaryType,
		Negotiable:  req.Negotiable,
		JobType:     req.JobType,
		Tags:        req.Tags,
		Skills:      req.Skills,
		CreatedBy:   user.ID,
	}
	if err := job.Validate(); err != nil {
		writeStoreError(w, r, err)
		return
	}

	saved, err := store.CreateJob(r.Context(), h.DB, job)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeNewJob, 1, saved))
	writeJSON(w, http.StatusCreated, saved)
}

func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid job id")
		return
	}

	job, err := store.GetJob(r.Context(), h.DB, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h JobsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	id := pathID(r, "/api/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid job id")
		return
	}

	if err := store.DeleteJob(r.Context(), h.DB, id, user.ID); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (h JobsHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID := pathID(r, "/api/v1/jobs/user/")
	if userID == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid user id")
		return
	}

	if _, err := store.GetUser(r.Context(), h.DB, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "User not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}

	jobs, err := store.ListJobsByUser(r.Context(), h.DB, userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h JobsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tags []string
	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	jobs, err := store.SearchJobs(r.Context(), h.DB, store.SearchOpts{
		Tags:     tags,
		Location: q.Get("location"),
		Title:    q.Get("title"),
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Like toggles the caller's membership in the likes set and returns the
// updated job.
func (h JobsHandler) Like(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	id := pathID(r, "/api/v1/jobs/like/")
	if _, err := store.ToggleLike(r.Context(), h.DB, id, user.ID); err != nil {
		writeStoreError(w, r, err)
		return
	}

	job, err := store.GetJob(r.Context(), h.DB, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Apply records an application; a second attempt is a 409, not a silent
// no-op.
func (h JobsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	id := pathID(r, "/api/v1/jobs/apply/")
	if err := store.AddApplicant(r.Context(), h.DB, id, user.ID); err != nil {
		writeStoreError(w, r, err)
		return
	}

	job, err := store.GetJob(r.Context(), h.DB, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
