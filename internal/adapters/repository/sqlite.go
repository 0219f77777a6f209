package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/skillview/internal/domain/model"
	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

//go:embed sql/schema.sql
var schema string

// SQLiteStore keeps records in a SQLite database file.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	s := &SQLiteStore{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		filepath.Clean(path), s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writers inside the process.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, records ...model.DetailedContributionScore) error {
	if len(records) == 0 {
		return ctx.Err()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO score_records (originator, contribution_id, skill, value, score_time, project, contributor)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (originator, contribution_id) DO UPDATE SET
			skill = excluded.skill,
			value = excluded.value,
			score_time = excluded.score_time,
			project = excluded.project,
			contributor = excluded.contributor`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var value sql.NullFloat64
		if v, ok := r.Value(); ok {
			value = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			string(r.Originator()),
			string(r.ContributionID()),
			string(r.Skill()),
			value,
			toNanos(r.ScoreTime()),
			string(r.Project()),
			string(r.Contributor()),
		); err != nil {
			return fmt.Errorf("insert %s/%s: %w", r.Originator(), r.ContributionID(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Scores implements Store.
func (s *SQLiteStore) Scores(ctx context.Context, startExclusive, endInclusive time.Time) ([]model.DetailedContributionScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT originator, contribution_id, skill, value, score_time, project, contributor
		FROM score_records
		WHERE score_time > ? AND score_time <= ?
		ORDER BY score_time, contribution_id, originator`,
		toNanos(startExclusive), toNanos(endInclusive))
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []model.DetailedContributionScore
	for rows.Next() {
		var (
			originator, contribution, skill, project, contributor string
			value                                                 sql.NullFloat64
			nanos                                                 int64
		)
		if err := rows.Scan(&originator, &contribution, &skill, &value, &nanos, &project, &contributor); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		score := model.NewContributionScore(model.SkillTag(skill), v)
		r, err := model.NewDetailedContributionScore(score, fromNanos(nanos),
			model.Project(project), model.ContributionID(contribution),
			model.Contributor(contributor), model.ScoreOriginator(originator))
		if err != nil {
			return nil, fmt.Errorf("decode score %s/%s: %w", originator, contribution, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM score_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return n, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
