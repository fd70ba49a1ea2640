package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bumuk-library/leadctl/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	identity_key      TEXT,
	full_name         TEXT NOT NULL DEFAULT '',
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	phone_number      TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	child_age         TEXT NOT NULL DEFAULT '',
	lead_type         TEXT NOT NULL DEFAULT '',
	lead_source       TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	source_sheet      TEXT NOT NULL DEFAULT '',
	extra             TEXT,
	score             INTEGER NOT NULL DEFAULT 0,
	priority          TEXT NOT NULL DEFAULT 'Low',
	status            TEXT NOT NULL DEFAULT 'New Lead',
	status_notes      TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	status_updated_at DATETIME NOT NULL,
	last_contact_at   DATETIME,
	follow_up_at      DATETIME,
	follow_up_count   INTEGER NOT NULL DEFAULT 0,
	enrichment        TEXT
);

CREATE INDEX IF NOT EXISTS idx_leads_identity_key ON leads(identity_key);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_leads_follow_up_at ON leads(follow_up_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	query := `INSERT OR REPLACE INTO leads (` + strings.Join(leadColumns, ", ") + `)
		VALUES (` + placeholders(len(leadColumns)) + `)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for i := range leads {
		if leads[i].ID == "" {
			leads[i].ID = uuid.New().String()
		}
		args, err := leadArgs(leads[i])
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %s", leads[i].ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(leads), nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+strings.Join(leadColumns, ", ")+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error) {
	query := `SELECT ` + strings.Join(leadColumns, ", ") + ` FROM leads`
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY score DESC, created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	return collectLeads(rows)
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		return eris.New("sqlite: update lead: missing id")
	}
	args, err := leadArgs(*lead)
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(leadColumns)-1)
	// Skip id; it is the WHERE key.
	for _, col := range leadColumns[1:] {
		sets = append(sets, col+" = ?")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		append(args[1:], lead.ID)...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", lead.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DueFollowUps(ctx context.Context, asOf time.Time) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(leadColumns, ", ")+` FROM leads
		 WHERE follow_up_at IS NOT NULL AND follow_up_at <= ?
		 ORDER BY follow_up_at ASC`, asOf.UTC())
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: due follow-ups")
	}
	defer rows.Close()

	return collectLeads(rows)
}
