package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bumuk-library/leadctl/internal/db"
	"github.com/bumuk-library/leadctl/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
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
	created_at        TIMESTAMPTZ NOT NULL,
	status_updated_at TIMESTAMPTZ NOT NULL,
	last_contact_at   TIMESTAMPTZ,
	follow_up_at      TIMESTAMPTZ,
	follow_up_count   INTEGER NOT NULL DEFAULT 0,
	enrichment        TEXT
);

CREATE INDEX IF NOT EXISTS idx_leads_identity_key ON leads(identity_key);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_leads_follow_up_at ON leads(follow_up_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveLeads bulk-upserts leads keyed by id using COPY into a temp table.
func (s *PostgresStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(leads))
	for i := range leads {
		if leads[i].ID == "" {
			leads[i].ID = uuid.New().String()
		}
		args, err := leadArgs(leads[i])
		if err != nil {
			return 0, err
		}
		rows[i] = args
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      leadColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save leads")
	}
	return int(n), nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+strings.Join(leadColumns, ", ")+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error) {
	query := `SELECT ` + strings.Join(leadColumns, ", ") + ` FROM leads`
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY score DESC, created_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	return collectPgxLeads(rows)
}

func (s *PostgresStore) UpdateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		return eris.New("postgres: update lead: missing id")
	}
	args, err := leadArgs(*lead)
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(leadColumns)-1)
	for i, col := range leadColumns[1:] {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET `+strings.Join(sets, ", ")+fmt.Sprintf(` WHERE id = $%d`, len(leadColumns)),
		append(args[1:], lead.ID)...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DueFollowUps(ctx context.Context, asOf time.Time) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+strings.Join(leadColumns, ", ")+` FROM leads
		 WHERE follow_up_at IS NOT NULL AND follow_up_at <= $1
		 ORDER BY follow_up_at ASC`, asOf.UTC())
	if err != nil {
		return nil, eris.Wrap(err, "postgres: due follow-ups")
	}
	defer rows.Close()

	return collectPgxLeads(rows)
}

func collectPgxLeads(rows pgx.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate leads")
	}
	return leads, nil
}
