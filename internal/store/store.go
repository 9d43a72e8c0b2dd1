// Package store persists assessment subjects, runs and run flags in SQLite.
//
// The store holds no scoring logic. Lifecycle guards and version numbering
// come from the assessment package; derived fields arrive already computed
// and are written in one transaction.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/HendryAvila/trustlens/internal/recommend"
	"github.com/HendryAvila/trustlens/internal/risk"
	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/HendryAvila/trustlens/internal/trend"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// newID is a package-level var to allow deterministic ids in tests.
var newID = uuid.NewString

var (
	// ErrNotFound is returned when a subject or run does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRunCompleted is returned when writing answers to a completed run.
	ErrRunCompleted = assessment.ErrRunCompleted
	// ErrAdminFlagExists is returned when a run already carries an
	// administrator flag.
	ErrAdminFlagExists = errors.New("run already has an admin flag")
)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir string
}

// DBFile is the database file name inside DataDir.
const DBFile = "assessments.db"

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed assessment repository.
type Store struct {
	db  *sql.DB
	cfg Config
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// New creates a new Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, DBFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS subjects (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			kind           TEXT NOT NULL,
			frequency_days INTEGER,
			state          TEXT NOT NULL DEFAULT 'not_started',
			created_at     TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			subject_id    TEXT    NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			version       INTEGER NOT NULL,
			status        TEXT    NOT NULL,
			bank_version  TEXT    NOT NULL DEFAULT '',
			answers       TEXT    NOT NULL DEFAULT '{}',
			overall_score INTEGER,
			derived       TEXT,
			started_at    TEXT    NOT NULL,
			completed_at  TEXT,
			UNIQUE (subject_id, version)
		);

		CREATE TABLE IF NOT EXISTS run_flags (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			code        TEXT    NOT NULL,
			label       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			source      TEXT    NOT NULL,
			position    INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(subject_id, version);
		CREATE INDEX IF NOT EXISTS idx_run_flags_run ON run_flags(run_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_run_flags_one_admin
			ON run_flags(run_id) WHERE source = 'admin';
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Subjects ────────────────────────────────────────────────────────────────

// CreateSubject registers a new subject in state not_started. A nil
// frequency means the subject never expires.
func (s *Store) CreateSubject(name string, kind summary.Module, frequencyDays *int) (*assessment.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("subject name is required")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid subject kind %q: must be organisation or system", kind)
	}
	if frequencyDays != nil && *frequencyDays <= 0 {
		frequencyDays = nil
	}

	sub := &assessment.Subject{
		ID:                        newID(),
		Name:                      name,
		Kind:                      kind,
		ReassessmentFrequencyDays: frequencyDays,
		State:                     lifecycle.NotStarted,
		CreatedAt:                 timeNow(),
	}
	_, err := s.db.Exec(
		`INSERT INTO subjects (id, name, kind, frequency_days, state, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, string(sub.Kind), nullableInt(frequencyDays), string(sub.State), formatTime(sub.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating subject: %w", err)
	}
	return sub, nil
}

// GetSubject retrieves a subject by ID.
func (s *Store) GetSubject(id string) (*assessment.Subject, error) {
	return getSubject(s.db, id)
}

// ListSubjects returns every subject, oldest first.
func (s *Store) ListSubjects() ([]assessment.Subject, error) {
	rows, err := s.db.Query(
		`SELECT id, name, kind, frequency_days, state, created_at FROM subjects ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	defer rows.Close()

	var out []assessment.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

// SetSubjectState moves a subject to state to. The move is checked against
// the stored state and applied only if no one else changed it meanwhile.
func (s *Store) SetSubjectState(id string, to lifecycle.State) error {
	sub, err := getSubject(s.db, id)
	if err != nil {
		return err
	}
	return setState(s.db, id, sub.State, to)
}

func setState(db dbtx, id string, from, to lifecycle.State) error {
	if err := lifecycle.Transition(from, to); err != nil {
		return err
	}
	res, err := db.Exec(`UPDATE subjects SET state = ? WHERE id = ? AND state = ?`, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("updating subject state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &lifecycle.StaleTransitionError{From: from, To: to}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getSubject(db dbtx, id string) (*assessment.Subject, error) {
	row := db.QueryRow(
		`SELECT id, name, kind, frequency_days, state, created_at FROM subjects WHERE id = ?`, id,
	)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subject %s: %w", id, ErrNotFound)
	}
	return sub, err
}

func scanSubject(row rowScanner) (*assessment.Subject, error) {
	var (
		sub     assessment.Subject
		kind    string
		state   string
		freq    sql.NullInt64
		created string
	)
	if err := row.Scan(&sub.ID, &sub.Name, &kind, &freq, &state, &created); err != nil {
		return nil, err
	}
	sub.Kind = summary.Module(kind)
	sub.State = lifecycle.State(state)
	if freq.Valid {
		n := int(freq.Int64)
		sub.ReassessmentFrequencyDays = &n
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	sub.CreatedAt = t
	return &sub, nil
}

// ─── Runs ────────────────────────────────────────────────────────────────────

// derived is the JSON column holding run fields that have no column of
// their own.
type derived struct {
	DimensionScores   map[bank.Dimension]int               `json:"dimension_scores"`
	Recommendations   []recommend.Recommendation           `json:"recommendations"`
	Stability         trend.StabilityStatus                `json:"stability_status"`
	VarianceLast3     *float64                             `json:"variance_last_3,omitempty"`
	DriftFromPrevious *trend.DriftResult                   `json:"drift_from_previous,omitempty"`
	DimensionDrift    map[bank.Dimension]trend.DriftResult `json:"dimension_drift,omitempty"`
}

// StartRun opens the subject's next run and moves the subject to
// in_progress, in one transaction.
func (s *Store) StartRun(subjectID string) (*assessment.Run, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	sub, err := getSubject(tx, subjectID)
	if err != nil {
		return nil, err
	}
	runs, err := listRuns(tx, subjectID)
	if err != nil {
		return nil, err
	}
	run, err := assessment.Reassess(*sub, runs)
	if err != nil {
		return nil, err
	}
	run.ID = newID()

	answers, err := json.Marshal(run.Answers)
	if err != nil {
		return nil, fmt.Errorf("encoding answers: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO runs (id, subject_id, version, status, answers, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SubjectID, run.Version, string(run.Status), string(answers), formatTime(run.StartedAt),
	); err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}

	// Reassess already checked effective → in_progress; the stored state
	// may still read completed or stable for an overdue subject.
	if _, err := tx.Exec(`UPDATE subjects SET state = ? WHERE id = ?`, string(lifecycle.InProgress), subjectID); err != nil {
		return nil, fmt.Errorf("updating subject state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &run, nil
}

// SaveAnswers writes the run's answer map. Only in-progress runs accept
// answers.
func (s *Store) SaveAnswers(run *assessment.Run) error {
	answers, err := json.Marshal(run.Answers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE runs SET answers = ? WHERE id = ? AND status = ?`,
		string(answers), run.ID, string(assessment.RunInProgress),
	)
	if err != nil {
		return fmt.Errorf("saving answers: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetRun(run.ID); err != nil {
			return err
		}
		return ErrRunCompleted
	}
	return nil
}

// SaveDerived writes every derived field of run and replaces its computed
// flags. Administrator flags already stored are left alone.
func (s *Store) SaveDerived(run *assessment.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := saveDerived(tx, run, false); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CompleteRun persists a freshly completed run and walks its subject through
// states, in one transaction. The stored run must still be in progress, so
// a second submit of the same run fails with ErrRunCompleted and changes
// nothing.
func (s *Store) CompleteRun(run *assessment.Run, states []lifecycle.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := saveDerived(tx, run, true); err != nil {
		return err
	}

	sub, err := getSubject(tx, run.SubjectID)
	if err != nil {
		return err
	}
	from := sub.State
	for _, to := range states {
		if err := setState(tx, sub.ID, from, to); err != nil {
			return fmt.Errorf("subject %s: %w", sub.ID, err)
		}
		from = to
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// saveDerived writes the derived columns and computed flags of run. With
// fromInProgress set, only a run still stored as in progress is updated.
func saveDerived(db dbtx, run *assessment.Run, fromInProgress bool) error {
	if run.Status != assessment.RunCompleted || run.OverallScore == nil || run.CompletedAt == nil {
		return fmt.Errorf("run %s has no derived fields to save", run.ID)
	}
	d, err := json.Marshal(derived{
		DimensionScores:   run.DimensionScores,
		Recommendations:   run.Recommendations,
		Stability:         run.Stability,
		VarianceLast3:     run.VarianceLast3,
		DriftFromPrevious: run.DriftFromPrevious,
		DimensionDrift:    run.DimensionDrift,
	})
	if err != nil {
		return fmt.Errorf("encoding derived fields: %w", err)
	}

	query := `UPDATE runs
		 SET status = ?, bank_version = ?, overall_score = ?, derived = ?, completed_at = ?
		 WHERE id = ?`
	args := []any{string(run.Status), run.BankVersion, *run.OverallScore, string(d), formatTime(*run.CompletedAt), run.ID}
	if fromInProgress {
		query += ` AND status = ?`
		args = append(args, string(assessment.RunInProgress))
	}
	res, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("saving derived fields: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := db.QueryRow(`SELECT status FROM runs WHERE id = ?`, run.ID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("checking run %s: %w", run.ID, err)
		}
		return ErrRunCompleted
	}

	if _, err := db.Exec(`DELETE FROM run_flags WHERE run_id = ? AND source = ?`, run.ID, string(risk.SourceComputed)); err != nil {
		return fmt.Errorf("clearing computed flags: %w", err)
	}
	pos := 0
	for _, f := range run.RiskFlags {
		if f.Source == risk.SourceAdmin {
			continue
		}
		if _, err := db.Exec(
			`INSERT INTO run_flags (run_id, code, label, description, source, position) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, f.Code, f.Label, f.Description, string(risk.SourceComputed), pos,
		); err != nil {
			return fmt.Errorf("inserting flag %s: %w", f.Code, err)
		}
		pos++
	}
	return nil
}

// GetRun retrieves a run with its flags.
func (s *Store) GetRun(id string) (*assessment.Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if run.RiskFlags, err = flags(s.db, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// Runs returns every run of a subject, oldest version first.
func (s *Store) Runs(subjectID string) ([]assessment.Run, error) {
	return listRuns(s.db, subjectID)
}

// CompletedRuns returns the subject's completed runs, oldest first.
func (s *Store) CompletedRuns(subjectID string) ([]assessment.Run, error) {
	runs, err := listRuns(s.db, subjectID)
	if err != nil {
		return nil, err
	}
	out := make([]assessment.Run, 0, len(runs))
	for _, r := range runs {
		if r.Status == assessment.RunCompleted {
			out = append(out, r)
		}
	}
	return out, nil
}

// LatestRun returns the subject's highest-version run.
func (s *Store) LatestRun(subjectID string) (*assessment.Run, error) {
	runs, err := listRuns(s.db, subjectID)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("subject %s has no runs: %w", subjectID, ErrNotFound)
	}
	r := runs[len(runs)-1]
	return &r, nil
}

const runColumns = `id, subject_id, version, status, bank_version, answers, overall_score, derived, started_at, completed_at`

func listRuns(db dbtx, subjectID string) ([]assessment.Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs WHERE subject_id = ? ORDER BY version`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	var out []assessment.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].RiskFlags, err = flags(db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanRun(row rowScanner) (*assessment.Run, error) {
	var (
		r         assessment.Run
		status    string
		answers   string
		overall   sql.NullInt64
		derivedJS sql.NullString
		started   string
		completed sql.NullString
	)
	if err := row.Scan(&r.ID, &r.SubjectID, &r.Version, &status, &r.BankVersion,
		&answers, &overall, &derivedJS, &started, &completed); err != nil {
		return nil, err
	}
	r.Status = assessment.RunStatus(status)

	if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers of run %s: %w", r.ID, err)
	}
	if r.Answers == nil {
		r.Answers = bank.Answers{}
	}
	if overall.Valid {
		n := int(overall.Int64)
		r.OverallScore = &n
	}
	if derivedJS.Valid {
		var d derived
		if err := json.Unmarshal([]byte(derivedJS.String), &d); err != nil {
			return nil, fmt.Errorf("decoding derived fields of run %s: %w", r.ID, err)
		}
		r.DimensionScores = d.DimensionScores
		r.Recommendations = d.Recommendations
		r.Stability = d.Stability
		r.VarianceLast3 = d.VarianceLast3
		r.DriftFromPrevious = d.DriftFromPrevious
		r.DimensionDrift = d.DimensionDrift
	}

	t, err := parseTime(started)
	if err != nil {
		return nil, err
	}
	r.StartedAt = t
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		r.CompletedAt = &t
	}
	return &r, nil
}

// ─── Flags ───────────────────────────────────────────────────────────────────

// AddAdminFlag attaches an administrator flag to a run. A run carries at
// most one; recalculation never removes it.
func (s *Store) AddAdminFlag(runID string, f risk.Flag) error {
	if strings.TrimSpace(f.Code) == "" || strings.TrimSpace(f.Label) == "" {
		return fmt.Errorf("admin flag needs a code and a label")
	}
	if _, err := s.GetRun(runID); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO run_flags (run_id, code, label, description, source) VALUES (?, ?, ?, ?, ?)`,
		runID, f.Code, f.Label, f.Description, string(risk.SourceAdmin),
	)
	if isUniqueViolation(err) {
		return ErrAdminFlagExists
	}
	if err != nil {
		return fmt.Errorf("adding admin flag: %w", err)
	}
	return nil
}

// Flags returns a run's flags: computed in rule order, then admin.
func (s *Store) Flags(runID string) ([]risk.Flag, error) {
	return flags(s.db, runID)
}

func flags(db dbtx, runID string) ([]risk.Flag, error) {
	rows, err := db.Query(
		`SELECT code, label, description, source FROM run_flags
		 WHERE run_id = ?
		 ORDER BY CASE source WHEN 'computed' THEN 0 ELSE 1 END, position, id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing flags: %w", err)
	}
	defer rows.Close()

	out := make([]risk.Flag, 0)
	for rows.Next() {
		var (
			f      risk.Flag
			source string
		)
		if err := rows.Scan(&f.Code, &f.Label, &f.Description, &source); err != nil {
			return nil, err
		}
		f.Source = risk.Source(source)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
