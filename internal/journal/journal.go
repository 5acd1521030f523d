// internal/journal/journal.go
//
// Append-only journal of finished rounds (won or given up).
// Rows are written best-effort by the HTTP layer and listed per session;
// session statistics are never rebuilt from them.
//
// Works on SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq); the only
// dialect difference the queries care about is the placeholder style.
// A nil *Journal is valid and does nothing, so the service runs without a DB.

package journal

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor picks the database/sql driver name and dialect for a DSN.
// postgres:// and postgresql:// URLs go to lib/pq, anything else is a SQLite path.
func DialectFor(dsn string) (driver string, d Dialect) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres", Postgres
	}
	return "sqlite3", SQLite
}

// Rebind rewrites '?' placeholders to $1..$n for Postgres.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeLayout is fixed-width so finished_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Outcome values stored in the journal.
const (
	OutcomeWon    = "won"
	OutcomeGaveUp = "gave_up"
)

// Entry is one finished round.
type Entry struct {
	RoundID    string    `json:"roundId"`
	SessionID  string    `json:"-"`
	PlayerName string    `json:"playerName,omitempty"`
	Level      int       `json:"level"`
	Target     int       `json:"target"`
	Attempts   int       `json:"attempts"`
	Score      int       `json:"score"`
	Outcome    string    `json:"outcome"`
	ElapsedMs  int       `json:"elapsedMs"`
	Daily      bool      `json:"daily"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Journal writes and reads round entries.
type Journal struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database.
func New(db *sql.DB, d Dialect) *Journal { return &Journal{db: db, dialect: d} }

// Record inserts a finished round. Re-recording the same round ID is an error.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}
	daily := 0
	if e.Daily {
		daily = 1
	}
	_, err := j.db.ExecContext(ctx, j.dialect.Rebind(`
        INSERT INTO rounds
            (id, session_id, player_name, level, target, attempts, score, outcome, elapsed_ms, daily, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.RoundID, e.SessionID, e.PlayerName, e.Level, e.Target, e.Attempts, e.Score,
		e.Outcome, e.ElapsedMs, daily, e.FinishedAt.UTC().Format(timeLayout),
	)
	return err
}

// Recent lists a session's latest rounds, newest first.
// Default limit is 50 if not specified.
func (j *Journal) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	out := []Entry{}
	if j == nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, j.dialect.Rebind(`
        SELECT id, session_id, player_name, level, target, attempts, score, outcome, elapsed_ms, daily, finished_at
        FROM rounds
        WHERE session_id=?
        ORDER BY finished_at DESC
        LIMIT ?`), sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var daily int
		var finished string
		if err := rows.Scan(&e.RoundID, &e.SessionID, &e.PlayerName, &e.Level, &e.Target,
			&e.Attempts, &e.Score, &e.Outcome, &e.ElapsedMs, &daily, &finished); err != nil {
			return nil, err
		}
		e.Daily = daily != 0
		e.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, e)
	}
	return out, rows.Err()
}
