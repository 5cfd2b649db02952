// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typerace/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DefaultAverageWPM is assumed for matchmaking when a user has no session
// history yet.
const DefaultAverageWPM = 40

// Store wraps SQLite access for sessions, keystroke logs, and race
// history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			target_text TEXT NOT NULL,
			hint_used INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS keystrokes (
			session_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			expected TEXT NOT NULL,
			actual TEXT NOT NULL,
			correct INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS races (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			max_players INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			started_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS race_participants (
			race_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			challenge_index INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			finished_at TEXT,
			rank INTEGER,
			PRIMARY KEY (race_id, user_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session and its full keystroke log in
// one transaction. The log is the canonical record; the session row's
// stats columns are a cached derivation.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, log []model.KeystrokeEvent) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	hintUsed := 0
	if rec.HintUsed {
		hintUsed = 1
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (user_id, started_at, target_text, hint_used, wpm, raw_wpm, accuracy, keystrokes, errors, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.TargetText,
		hintUsed,
		rec.Stats.WPM,
		rec.Stats.RawWPM,
		rec.Stats.Accuracy,
		rec.Stats.Keystrokes,
		rec.Stats.Errors,
		rec.Stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(log) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO keystrokes (session_id, seq, timestamp_ms, expected, actual, correct, latency_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for seq, ev := range log {
			correct := 0
			if ev.Correct {
				correct = 1
			}
			if _, err := stmt.ExecContext(ctx, id, seq, ev.TimestampMs, string(ev.Expected), string(ev.Actual), correct, ev.LatencyMs); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetSession loads one session row.
func (s *Store) GetSession(ctx context.Context, id int64) (model.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, started_at, target_text, hint_used, wpm, raw_wpm, accuracy, keystrokes, errors, duration_ms
		 FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return model.SessionRecord{}, fmt.Errorf("session %d not found", id)
	}
	return rec, err
}

// ListSessions returns sessions for a user, oldest first. A zero limit
// returns all; an empty userID returns every user's sessions.
func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]model.SessionRecord, error) {
	query := `SELECT id, user_id, started_at, target_text, hint_used, wpm, raw_wpm, accuracy, keystrokes, errors, duration_ms
		FROM sessions
		WHERE (? = '' OR user_id = ?)
		ORDER BY started_at`
	args := []any{userID, userID}
	if limit > 0 {
		// Most recent N, still reported oldest first.
		query = `SELECT * FROM (` + query + ` DESC LIMIT ?) ORDER BY started_at`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.SessionRecord, error) {
	var rec model.SessionRecord
	var startedAt string
	var hintUsed int
	if err := row.Scan(&rec.ID, &rec.UserID, &startedAt, &rec.TargetText, &hintUsed,
		&rec.Stats.WPM, &rec.Stats.RawWPM, &rec.Stats.Accuracy,
		&rec.Stats.Keystrokes, &rec.Stats.Errors, &rec.Stats.DurationMs); err != nil {
		return model.SessionRecord{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	rec.StartedAt = t
	rec.HintUsed = hintUsed != 0
	return rec, nil
}

// GetKeystrokes loads a session's keystroke log in recorded order.
func (s *Store) GetKeystrokes(ctx context.Context, sessionID int64) ([]model.KeystrokeEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp_ms, expected, actual, correct, latency_ms
		 FROM keystrokes WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var log []model.KeystrokeEvent
	for rows.Next() {
		var ev model.KeystrokeEvent
		var expected, actual string
		var correct int
		if err := rows.Scan(&ev.TimestampMs, &expected, &actual, &correct, &ev.LatencyMs); err != nil {
			return nil, err
		}
		ev.Expected = firstRune(expected)
		ev.Actual = firstRune(actual)
		ev.Correct = correct != 0
		log = append(log, ev)
	}
	return log, rows.Err()
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// RecentAverageWPM computes a user's average WPM over their most recent
// sessions, for matchmaking. Users without history get DefaultAverageWPM.
func (s *Store) RecentAverageWPM(ctx context.Context, userID string, lastN int) (int, error) {
	if lastN <= 0 {
		lastN = 10
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(wpm), -1) FROM (
			SELECT wpm FROM sessions WHERE user_id = ? ORDER BY started_at DESC LIMIT ?
		)`, userID, lastN)
	var avg float64
	if err := row.Scan(&avg); err != nil {
		return 0, err
	}
	if avg < 0 {
		return DefaultAverageWPM, nil
	}
	return int(avg + 0.5), nil
}

// SaveRace upserts a race row and its participants, keeping the stored
// race history in step with the coordinator's state.
func (s *Store) SaveRace(ctx context.Context, race model.Race, participants []model.RaceParticipant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var startedAt any
	if !race.StartedAt.IsZero() {
		startedAt = race.StartedAt.Format(time.RFC3339Nano)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO races (id, status, max_players, created_at, started_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, started_at = excluded.started_at`,
		race.ID, string(race.Status), race.MaxPlayers,
		race.CreatedAt.Format(time.RFC3339Nano), startedAt); err != nil {
		return err
	}

	for _, p := range participants {
		var finishedAt any
		var rank any
		if p.Finished() {
			finishedAt = p.FinishedAt.Format(time.RFC3339Nano)
			rank = p.Rank
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO race_participants (race_id, user_id, challenge_index, wpm, accuracy, finished_at, rank)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(race_id, user_id) DO UPDATE SET
				challenge_index = excluded.challenge_index,
				wpm = excluded.wpm,
				accuracy = excluded.accuracy,
				finished_at = excluded.finished_at,
				rank = excluded.rank`,
			race.ID, p.UserID, p.CurrentChallengeIndex, p.WPM, p.Accuracy, finishedAt, rank); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRace loads a stored race and its participants ordered by rank, with
// unfinished participants last.
func (s *Store) GetRace(ctx context.Context, raceID string) (model.Race, []model.RaceParticipant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, max_players, created_at, started_at FROM races WHERE id = ?`, raceID)
	var race model.Race
	var status, createdAt string
	var startedAt sql.NullString
	if err := row.Scan(&race.ID, &status, &race.MaxPlayers, &createdAt, &startedAt); err != nil {
		if err == sql.ErrNoRows {
			return model.Race{}, nil, fmt.Errorf("race %s not found", raceID)
		}
		return model.Race{}, nil, err
	}
	race.Status = model.RaceStatus(status)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Race{}, nil, fmt.Errorf("parse created_at: %w", err)
	}
	race.CreatedAt = t
	if startedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, startedAt.String)
		if err != nil {
			return model.Race{}, nil, fmt.Errorf("parse started_at: %w", err)
		}
		race.StartedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, challenge_index, wpm, accuracy, finished_at, rank
		 FROM race_participants WHERE race_id = ?
		 ORDER BY rank IS NULL, rank`, raceID)
	if err != nil {
		return model.Race{}, nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var participants []model.RaceParticipant
	for rows.Next() {
		var p model.RaceParticipant
		var finishedAt sql.NullString
		var rank sql.NullInt64
		if err := rows.Scan(&p.UserID, &p.CurrentChallengeIndex, &p.WPM, &p.Accuracy, &finishedAt, &rank); err != nil {
			return model.Race{}, nil, err
		}
		if finishedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
			if err != nil {
				return model.Race{}, nil, fmt.Errorf("parse finished_at: %w", err)
			}
			p.FinishedAt = t
		}
		if rank.Valid {
			p.Rank = int(rank.Int64)
		}
		participants = append(participants, p)
	}
	return race, participants, rows.Err()
}
