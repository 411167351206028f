package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
// Uniqueness constraints live here so they are enforced atomically with
// the write: the unique email on users and the composite unique
// (code, exam_board) on subjects.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		exam_board TEXT,
		subjects_json TEXT,
		avatar TEXT,
		is_email_verified INTEGER NOT NULL DEFAULT 0,
		email_verification_token TEXT,
		email_verification_expires DATETIME,
		reset_password_token TEXT,
		reset_password_expires DATETIME,
		subscription_json TEXT,
		preferences_json TEXT,
		last_login DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

	CREATE TABLE IF NOT EXISTS subjects (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL,
		exam_board TEXT NOT NULL,
		description TEXT NOT NULL,
		icon TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_subjects_code_board ON subjects(code, exam_board);
	CREATE INDEX IF NOT EXISTS idx_subjects_board ON subjects(exam_board);

	CREATE TABLE IF NOT EXISTS questions (
		id TEXT NOT NULL PRIMARY KEY,
		topic_id TEXT NOT NULL,
		type TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		question TEXT NOT NULL,
		options_json TEXT,
		answer TEXT NOT NULL,
		mark_scheme TEXT NOT NULL,
		marks INTEGER NOT NULL,
		exam_board TEXT NOT NULL,
		year INTEGER,
		tags_json TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic_id);
	CREATE INDEX IF NOT EXISTS idx_questions_difficulty ON questions(difficulty);
	CREATE INDEX IF NOT EXISTS idx_questions_type ON questions(type);
	CREATE INDEX IF NOT EXISTS idx_questions_board ON questions(exam_board);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
