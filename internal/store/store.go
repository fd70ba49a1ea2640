// Package store persists cleaned leads behind a backend-agnostic interface
// with SQLite and Postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/bumuk-library/leadctl/internal/model"
)

// ErrNotFound is returned when a lead id does not exist.
var ErrNotFound = eris.New("lead not found")

// Filter specifies criteria for listing leads.
type Filter struct {
	Status   string         `json:"status,omitempty"`
	Priority model.Priority `json:"priority,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for leads.
type Store interface {
	// SaveLeads inserts or replaces leads by id, assigning ids to leads that
	// lack one. Returns the number of leads written.
	SaveLeads(ctx context.Context, leads []model.Lead) (int, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error)
	// UpdateLead replaces the stored row for lead.ID.
	UpdateLead(ctx context.Context, lead *model.Lead) error
	// DueFollowUps lists leads whose follow-up date is at or before asOf,
	// soonest first.
	DueFollowUps(ctx context.Context, asOf time.Time) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// leadColumns is the column order shared by both backends' scan helpers.
var leadColumns = []string{
	"id", "identity_key",
	"full_name", "first_name", "last_name",
	"phone_number", "email", "city",
	"child_age", "lead_type", "lead_source", "notes",
	"source_sheet", "extra",
	"score", "priority", "status", "status_notes",
	"created_at", "status_updated_at", "last_contact_at",
	"follow_up_at", "follow_up_count", "enrichment",
}
