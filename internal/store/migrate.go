package store

import "database/sql"

// Migrate brings the schema to the current version. Versioned via
// PRAGMA user_version so re-running is a no-op.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  auth_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'jobseeker',
  profile_picture TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT 'Remote',
  salary INTEGER NOT NULL DEFAULT 0,
  salary_type TEXT NOT NULL DEFAULT 'Year',
  negotiable INTEGER NOT NULL DEFAULT 0,
  job_type TEXT NOT NULL DEFAULT '[]',
  skills TEXT NOT NULL DEFAULT '[]',
  tags TEXT NOT NULL DEFAULT '[]',
  external_id TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'Manual',
  created_by TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// Membership tables; the composite key is what makes like/apply atomic.
	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS job_likes (
  job_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  PRIMARY KEY (job_id, user_id)
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS job_applicants (
  job_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (job_id, user_id)
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	// external_id is unique-sparse: present and unique, or absent.
	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_external_id
ON jobs(external_id)
WHERE external_id != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_created_at
ON jobs(created_at DESC);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_created_by
ON jobs(created_by);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
