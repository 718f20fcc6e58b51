package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobboard-engine/internal/domain"
)

// UpsertExternalJob writes one ingested listing, keyed by external id.
// A listing never seen before becomes a new record; a known one gets every
// non-identity field overwritten (last write wins — user edits do not
// survive a re-sync). The internal id and creation time never change.
func UpsertExternalJob(ctx context.Context, db *sql.DB, j domain.Job) (saved domain.Job, created bool, err error) {
	if j.ExternalID == "" {
		return domain.Job{}, false, errors.New("upsert external job: external id is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Job{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE external_id = ?;`, j.ExternalID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		j.ID = uuid.NewString()
		j.CreatedAt = now
		j.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, `
INSERT INTO jobs(`+jobColumns+`)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
			j.ID, j.Title, j.Description, j.Location, j.Salary, j.SalaryType, boolInt(j.Negotiable),
			marshalList(j.JobType), marshalList(j.Skills), marshalList(j.Tags),
			j.ExternalID, j.Source, j.CreatedBy,
			now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
		); err != nil {
			return domain.Job{}, false, fmt.Errorf("insert external job: %w", err)
		}
		created = true

	case err != nil:
		return domain.Job{}, false, fmt.Errorf("lookup external id: %w", err)

	default:
		if _, err := tx.ExecContext(ctx, `
UPDATE jobs SET
  title = ?, description = ?, location = ?, salary = ?, salary_type = ?, negotiable = ?,
  job_type = ?, skills = ?, tags = ?, source = ?, created_by = ?, updated_at = ?
WHERE id = ?;`,
			j.Title, j.Description, j.Location, j.Salary, j.SalaryType, boolInt(j.Negotiable),
			marshalList(j.JobType), marshalList(j.Skills), marshalList(j.Tags),
			j.Source, j.CreatedBy, now.Format(time.RFC3339Nano),
			existingID,
		); err != nil {
			return domain.Job{}, false, fmt.Errorf("update external job: %w", err)
		}
		j.ID = existingID
	}

	saved, err = getJob(ctx, tx, j.ID)
	if err != nil {
		return domain.Job{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Job{}, false, err
	}
	return saved, created, nil
}
