package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard-engine/internal/domain"
)

const jobColumns = `id, title, description, location, salary, salary_type, negotiable,
job_type, skills, tags, external_id, source, created_by, created_at, updated_at`

// CreateJob inserts a direct posting. The store assigns the id and timestamps.
func CreateJob(ctx context.Context, db *sql.DB, j domain.Job) (domain.Job, error) {
	j.ID = uuid.NewString()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.SalaryType == "" {
		j.SalaryType = "Year"
	}
	if j.Source == "" {
		j.Source = "Manual"
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO jobs(`+jobColumns+`)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		j.ID, j.Title, j.Description, j.Location, j.Salary, j.SalaryType, boolInt(j.Negotiable),
		marshalList(j.JobType), marshalList(j.Skills), marshalList(j.Tags),
		j.ExternalID, j.Source, j.CreatedBy,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	); err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

// GetJob returns one job with its likes and applicants populated.
func GetJob(ctx context.Context, db *sql.DB, id string) (domain.Job, error) {
	return getJob(ctx, db, id)
}

func getJob(ctx context.Context, q querier, id string) (domain.Job, error) {
	row := q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?;`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Job{}, ErrNotFound
		}
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}

	jobs := []domain.Job{j}
	if err := attachMembers(ctx, q, jobs); err != nil {
		return domain.Job{}, err
	}
	return jobs[0], nil
}

// ListJobs returns every posting, newest first.
func ListJobs(ctx context.Context, db *sql.DB) ([]domain.Job, error) {
	return queryJobs(ctx, db, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC;`)
}

// ListJobsByUser returns the postings created by one user, newest first.
func ListJobsByUser(ctx context.Context, db *sql.DB, userID string) ([]domain.Job, error) {
	return queryJobs(ctx, db, `
SELECT `+jobColumns+` FROM jobs WHERE created_by = ? ORDER BY created_at DESC;`, userID)
}

type SearchOpts struct {
	Tags     []string
	Location string
	Title    string
}

// SearchJobs filters by any-of tags plus case-insensitive substring match on
// title and location. Empty criteria are skipped.
func SearchJobs(ctx context.Context, db *sql.DB, opts SearchOpts) ([]domain.Job, error) {
	var where []string
	var args []any

	if len(opts.Tags) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(opts.Tags)), ",")
		where = append(where, `EXISTS (
  SELECT 1 FROM json_each(jobs.tags) WHERE json_each.value IN (`+ph+`)
)`)
		for _, t := range opts.Tags {
			args = append(args, t)
		}
	}
	if opts.Location != "" {
		where = append(where, `location LIKE '%' || ? || '%' COLLATE NOCASE`)
		args = append(args, opts.Location)
	}
	if opts.Title != "" {
		where = append(where, `title LIKE '%' || ? || '%' COLLATE NOCASE`)
		args = append(args, opts.Title)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC;`

	return queryJobs(ctx, db, query, args...)
}

// DeleteJob removes a posting and its membership rows. Only the creator may
// delete; everyone else gets ErrNotOwner.
func DeleteJob(ctx context.Context, db *sql.DB, id, userID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var createdBy string
	err = tx.QueryRowContext(ctx, `SELECT created_by FROM jobs WHERE id = ?;`, id).Scan(&createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if createdBy != userID {
		return ErrNotOwner
	}

	for _, stmt := range []string{
		`DELETE FROM job_likes WHERE job_id = ?;`,
		`DELETE FROM job_applicants WHERE job_id = ?;`,
		`DELETE FROM jobs WHERE id = ?;`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete job: %w", err)
		}
	}

	return tx.Commit()
}

// ---- row plumbing ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (domain.Job, error) {
	var j domain.Job
	var negotiable int
	var jobTypeJSON, skillsJSON, tagsJSON string
	var createdStr, updatedStr string

	if err := r.Scan(
		&j.ID, &j.Title, &j.Description, &j.Location, &j.Salary, &j.SalaryType, &negotiable,
		&jobTypeJSON, &skillsJSON, &tagsJSON, &j.ExternalID, &j.Source, &j.CreatedBy,
		&createdStr, &updatedStr,
	); err != nil {
		return domain.Job{}, err
	}

	j.Negotiable = negotiable != 0
	_ = json.Unmarshal([]byte(jobTypeJSON), &j.JobType)
	_ = json.Unmarshal([]byte(skillsJSON), &j.Skills)
	_ = json.Unmarshal([]byte(tagsJSON), &j.Tags)
	j.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	j.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return j, nil
}

func queryJobs(ctx context.Context, q querier, query string, args ...any) ([]domain.Job, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachMembers(ctx, q, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachMembers fills Likes and Applicants for the given jobs in two queries
// instead of two per job.
func attachMembers(ctx context.Context, q querier, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	idx := make(map[string]int, len(jobs))
	ids := make([]any, 0, len(jobs))
	for i, j := range jobs {
		idx[j.ID] = i
		ids = append(ids, j.ID)
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	collect := func(table string, assign func(i int, userID string)) error {
		rows, err := q.QueryContext(ctx,
			`SELECT job_id, user_id FROM `+table+` WHERE job_id IN (`+ph+`);`, ids...)
		if err != nil {
			return fmt.Errorf("query %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var jobID, userID string
			if err := rows.Scan(&jobID, &userID); err != nil {
				return err
			}
			if i, ok := idx[jobID]; ok {
				assign(i, userID)
			}
		}
		return rows.Err()
	}

	if err := collect("job_likes", func(i int, u string) {
		jobs[i].Likes = append(jobs[i].Likes, u)
	}); err != nil {
		return err
	}
	return collect("job_applicants", func(i int, u string) {
		jobs[i].Applicants = append(jobs[i].Applicants, u)
	})
}

func marshalList(xs []string) string {
	if xs == nil {
		xs = []string{}
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
