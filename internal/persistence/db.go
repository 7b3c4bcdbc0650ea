// Package persistence provides SQLite-based storage for simulation jobs and
// the mission runs they produce.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
)

// ErrNotFound is returned when no job has the requested id.
var ErrNotFound = errors.New("simulation not found")

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one submitted simulation.
type Job struct {
	ID        string             `json:"id"`
	Status    Status             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Config    config.Simulation  `json:"config"`
	Result    *engine.MissionRun `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// jobRow mirrors the simulations table.
type jobRow struct {
	ID         string         `db:"id"`
	Status     string         `db:"status"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
	ConfigJSON string         `db:"config_json"`
	ResultJSON sql.NullString `db:"result_json"`
	Error      sql.NullString `db:"error"`
}

// DB wraps a SQLite connection for job storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		config_json TEXT NOT NULL,
		result_json TEXT,
		error TEXT
	);

	CREATE TABLE IF NOT EXISTS service_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_simulations_created ON simulations(created_at);
	CREATE INDEX IF NOT EXISTS idx_simulations_status ON simulations(status);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

// CreateJob records a new running job for cfg and returns it.
func (db *DB) CreateJob(cfg config.Simulation) (*Job, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	ts := now()
	row := jobRow{
		ID:         uuid.NewString(),
		Status:     string(StatusRunning),
		CreatedAt:  ts,
		UpdatedAt:  ts,
		ConfigJSON: string(cfgJSON),
	}
	_, err = db.conn.NamedExec(`INSERT INTO simulations
		(id, status, created_at, updated_at, config_json)
		VALUES (:id, :status, :created_at, :updated_at, :config_json)`, row)
	if err != nil {
		return nil, fmt.Errorf("insert simulation: %w", err)
	}
	return row.job()
}

// CompleteJob stores the run and marks the job completed.
func (db *DB) CompleteJob(id string, run *engine.MissionRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode mission run: %w", err)
	}
	return db.finish(id, StatusCompleted, sql.NullString{String: string(data), Valid: true}, sql.NullString{})
}

// FailJob records the error and marks the job failed.
func (db *DB) FailJob(id string, cause error) error {
	return db.finish(id, StatusFailed, sql.NullString{}, sql.NullString{String: cause.Error(), Valid: true})
}

func (db *DB) finish(id string, status Status, result, errText sql.NullString) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE simulations
		SET status = ?, updated_at = ?, result_json = ?, error = ?
		WHERE id = ?`,
		string(status), now(), result, errText, id,
	)
	if err != nil {
		return fmt.Errorf("update simulation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// GetJob loads a job with its result.
func (db *DB) GetJob(id string) (*Job, error) {
	var row jobRow
	err := db.conn.Get(&row, "SELECT * FROM simulations WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return row.job()
}

// ListJobs returns the most recent jobs, newest first, without results.
func (db *DB) ListJobs(limit int) ([]*Job, error) {
	var rows []jobRow
	err := db.conn.Select(&rows, `SELECT id, status, created_at, updated_at, config_json, error
		FROM simulations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	jobs := make([]*Job, 0, len(rows))
	for _, r := range rows {
		j, err := r.job()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// DeleteJob removes a job.
func (db *DB) DeleteJob(id string) error {
	res, err := db.conn.Exec("DELETE FROM simulations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// CountByStatus tallies jobs per status.
func (db *DB) CountByStatus() (map[Status]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := db.conn.Select(&rows, "SELECT status, COUNT(*) AS n FROM simulations GROUP BY status"); err != nil {
		return nil, err
	}
	out := make(map[Status]int, len(rows))
	for _, r := range rows {
		out[Status(r.Status)] = r.N
	}
	return out, nil
}

// FailInterrupted marks jobs left running by a previous process as failed.
func (db *DB) FailInterrupted() (int, error) {
	res, err := db.conn.Exec(`UPDATE simulations
		SET status = ?, updated_at = ?, error = ?
		WHERE status = ?`,
		string(StatusFailed), now(), "interrupted by restart", string(StatusRunning),
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.Warn("marked interrupted simulations failed", "count", n)
	}
	return int(n), nil
}

// SaveMeta stores a key-value pair in service metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO service_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM service_meta WHERE key = ?", key)
	return value, err
}

func (r jobRow) job() (*Job, error) {
	j := &Job{
		ID:     r.ID,
		Status: Status(r.Status),
		Error:  r.Error.String,
	}
	var err error
	if j.CreatedAt, err = time.Parse(timeLayout, r.CreatedAt); err != nil {
		return nil, fmt.Errorf("simulation %s created_at: %w", r.ID, err)
	}
	if j.UpdatedAt, err = time.Parse(timeLayout, r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("simulation %s updated_at: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.ConfigJSON), &j.Config); err != nil {
		return nil, fmt.Errorf("simulation %s config: %w", r.ID, err)
	}
	if r.ResultJSON.Valid {
		j.Result = &engine.MissionRun{}
		if err := json.Unmarshal([]byte(r.ResultJSON.String), j.Result); err != nil {
			return nil, fmt.Errorf("simulation %s result: %w", r.ID, err)
		}
	}
	return j, nil
}
