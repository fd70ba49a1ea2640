package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/bumuk-library/leadctl/internal/model"
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// leadArgs flattens a lead into the leadColumns order. JSON columns and the
// identity key become NULL when empty.
func leadArgs(l model.Lead) ([]any, error) {
	var extraJSON any
	if len(l.Extra) > 0 {
		b, err := json.Marshal(l.Extra)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal extra")
		}
		extraJSON = string(b)
	}

	var enrichmentJSON any
	if l.Enrichment != nil {
		b, err := json.Marshal(l.Enrichment)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal enrichment")
		}
		enrichmentJSON = string(b)
	}

	var identityKey any
	if k := l.IdentityKey(); k != "" {
		identityKey = k
	}

	var lastContactAt, followUpAt any
	if l.LastContactAt != nil {
		lastContactAt = l.LastContactAt.UTC()
	}
	if l.FollowUpAt != nil {
		followUpAt = l.FollowUpAt.UTC()
	}

	return []any{
		l.ID, identityKey,
		l.FullName, l.FirstName, l.LastName,
		l.PhoneNumber, l.Email, l.City,
		l.ChildAge, l.LeadType, l.LeadSource, l.Notes,
		l.SourceSheet, extraJSON,
		l.Score, string(l.Priority), l.Status, l.StatusNotes,
		l.CreatedAt.UTC(), l.StatusUpdatedAt.UTC(), lastContactAt,
		followUpAt, l.FollowUpCount, enrichmentJSON,
	}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var identityKey, extraJSON, enrichmentJSON sql.NullString
	var priority string
	var lastContactAt, followUpAt sql.NullTime

	err := row.Scan(
		&l.ID, &identityKey,
		&l.FullName, &l.FirstName, &l.LastName,
		&l.PhoneNumber, &l.Email, &l.City,
		&l.ChildAge, &l.LeadType, &l.LeadSource, &l.Notes,
		&l.SourceSheet, &extraJSON,
		&l.Score, &priority, &l.Status, &l.StatusNotes,
		&l.CreatedAt, &l.StatusUpdatedAt, &lastContactAt,
		&followUpAt, &l.FollowUpCount, &enrichmentJSON,
	)
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan lead")
	}

	l.Priority = model.Priority(priority)
	if extraJSON.Valid && extraJSON.String != "" {
		if err := json.Unmarshal([]byte(extraJSON.String), &l.Extra); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal extra")
		}
	}
	if enrichmentJSON.Valid && enrichmentJSON.String != "" {
		l.Enrichment = &model.Enrichment{}
		if err := json.Unmarshal([]byte(enrichmentJSON.String), l.Enrichment); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal enrichment")
		}
	}
	if lastContactAt.Valid {
		t := lastContactAt.Time
		l.LastContactAt = &t
	}
	if followUpAt.Valid {
		t := followUpAt.Time
		l.FollowUpAt = &t
	}
	return &l, nil
}

func collectLeads(rows *sql.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate leads")
	}
	return leads, nil
}
