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
	_ "modernc.org/sqlite"

	"github.com/socialtwin/trainer/internal/model/match"
	"github.com/socialtwin/trainer/internal/model/twin"
)

// ErrNotFound reports a twin or session id with no stored record.
var ErrNotFound = errors.New("record not found")

// timeLayout keeps nanoseconds fixed-width so lexicographic ORDER BY on the
// created_at column matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists twins and sessions in SQLite. It implements twin.Store
// and match.Store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS twins (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			personality         TEXT NOT NULL,
			interests           TEXT NOT NULL,
			communication_style TEXT NOT NULL,
			created_at          TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			twin_a     TEXT NOT NULL,
			twin_b     TEXT NOT NULL,
			plan       TEXT,
			sim_log    TEXT,
			score      REAL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (twin_a) REFERENCES twins(id),
			FOREIGN KEY (twin_b) REFERENCES twins(id)
		);
	`)
	return err
}

// newID returns a short opaque identifier.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// List returns all twins, newest first.
func (s *Store) List(ctx context.Context) ([]twin.Twin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, personality, interests, communication_style, created_at
		 FROM twins ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list twins: %w", err)
	}
	defer rows.Close()

	twins := make([]twin.Twin, 0, 8)
	for rows.Next() {
		t, err := scanTwin(rows)
		if err != nil {
			return nil, err
		}
		twins = append(twins, t)
	}
	return twins, rows.Err()
}

// Create stores a new twin and returns it with id and timestamp assigned.
func (s *Store) Create(ctx context.Context, in twin.CreateInput) (twin.Twin, error) {
	t := twin.Twin{
		ID:                 newID(),
		Name:               in.Name,
		Personality:        in.Personality,
		Interests:          in.Interests,
		CommunicationStyle: in.CommunicationStyle,
		CreatedAt:          time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO twins (id, name, personality, interests, communication_style, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Personality, t.Interests, t.CommunicationStyle,
		t.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return twin.Twin{}, fmt.Errorf("store: create twin: %w", err)
	}
	return t, nil
}

// Get retrieves a twin by id.
func (s *Store) Get(ctx context.Context, id string) (twin.Twin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, personality, interests, communication_style, created_at
		 FROM twins WHERE id = ?`, id)

	t, err := scanTwin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return twin.Twin{}, ErrNotFound
	}
	return t, err
}

// Delete removes a twin. No cascade and no referential check: sessions
// referencing the twin keep their ids and fail at read time instead.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM twins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete twin: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTwin(r rowScanner) (twin.Twin, error) {
	var t twin.Twin
	var createdAt string
	if err := r.Scan(&t.ID, &t.Name, &t.Personality, &t.Interests, &t.CommunicationStyle, &createdAt); err != nil {
		return twin.Twin{}, err
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return twin.Twin{}, fmt.Errorf("store: bad created_at %q: %w", createdAt, err)
	}
	t.CreatedAt = ts
	return t, nil
}

// CreateSession inserts a session referencing the two twin ids. Callers
// check twin existence first; the insert itself does not.
func (s *Store) CreateSession(ctx context.Context, twinA, twinB string) (match.Session, error) {
	sess := match.Session{
		ID:        newID(),
		TwinA:     twinA,
		TwinB:     twinB,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, twin_a, twin_b, created_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.TwinA, sess.TwinB, sess.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return match.Session{}, fmt.Errorf("store: create session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (match.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, twin_a, twin_b, plan, sim_log, score, created_at
		 FROM sessions WHERE id = ?`, id)

	var sess match.Session
	var plan, simLog sql.NullString
	var score sql.NullFloat64
	var createdAt string
	err := row.Scan(&sess.ID, &sess.TwinA, &sess.TwinB, &plan, &simLog, &score, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return match.Session{}, ErrNotFound
	}
	if err != nil {
		return match.Session{}, fmt.Errorf("store: get session: %w", err)
	}

	if plan.Valid {
		sess.Plan = json.RawMessage(plan.String)
	}
	if simLog.Valid {
		sess.SimLog = json.RawMessage(simLog.String)
	}
	if score.Valid {
		v := score.Float64
		sess.Score = &v
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return match.Session{}, fmt.Errorf("store: bad created_at %q: %w", createdAt, err)
	}
	sess.CreatedAt = ts
	return sess, nil
}

// UpdateSessionPlan overwrites the session's stored plan.
func (s *Store) UpdateSessionPlan(ctx context.Context, id string, plan json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET plan = ? WHERE id = ?`, string(plan), id)
	if err != nil {
		return fmt.Errorf("store: update plan: %w", err)
	}
	return requireRow(res)
}

// UpdateSessionSimulation overwrites the session's simulation log and score.
// A nil score clears the column.
func (s *Store) UpdateSessionSimulation(ctx context.Context, id string, simLog json.RawMessage, score *float64) error {
	var scoreVal any
	if score != nil {
		scoreVal = *score
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET sim_log = ?, score = ? WHERE id = ?`, string(simLog), scoreVal, id)
	if err != nil {
		return fmt.Errorf("store: update simulation: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
