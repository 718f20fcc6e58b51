package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ToggleLike flips the user's membership in the job's likes set. The insert
// and delete are single statements, so two concurrent toggles cannot
// duplicate an entry.
func ToggleLike(ctx context.Context, db *sql.DB, jobID, userID string) (liked bool, err error) {
	if err := jobExists(ctx, db, jobID); err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO job_likes(job_id, user_id) VALUES(?, ?);`, jobID, userID)
	if err != nil {
		return false, fmt.Errorf("like job: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		touchJob(ctx, db, jobID)
		return true, nil
	}

	// Already present: this toggle is an unlike.
	if _, err := db.ExecContext(ctx,
		`DELETE FROM job_likes WHERE job_id = ? AND user_id = ?;`, jobID, userID); err != nil {
		return false, fmt.Errorf("unlike job: %w", err)
	}
	touchJob(ctx, db, jobID)
	return false, nil
}

// AddApplicant records an application. Applying twice is a conflict, not a
// silent no-op.
func AddApplicant(ctx context.Context, db *sql.DB, jobID, userID string) error {
	if err := jobExists(ctx, db, jobID); err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO job_applicants(job_id, user_id, applied_at) VALUES(?, ?, ?);`,
		jobID, userID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("apply to job: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrAlreadyApplied
	}
	touchJob(ctx, db, jobID)
	return nil
}

func jobExists(ctx context.Context, db *sql.DB, jobID string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE id = ? LIMIT 1;`, jobID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func touchJob(ctx context.Context, db *sql.DB, jobID string) {
	_, _ = db.ExecContext(ctx, `UPDATE jobs SET updated_at = ? WHERE id = ?;`,
		time.Now().UTC().Format(time.RFC3339Nano), jobID)
}
