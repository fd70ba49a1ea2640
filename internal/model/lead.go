// Package model defines the record types shared across the cleaning pipeline.
package model

import (
	"strings"
	"time"
)

// Canonical field names produced by the column normalizer. A Record may carry
// additional columns under sanitized source labels; these are the ones the
// pipeline understands.
const (
	FieldFullName    = "full_name"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldPhoneNumber = "phone_number"
	FieldEmail       = "email"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldState       = "state"
	FieldCountry     = "country"
	FieldPostalCode  = "postal_code"
	FieldChildAge    = "child_age"
	FieldLeadType    = "lead_type"
	FieldLeadSource  = "lead_source"
	FieldLeadDate    = "lead_date"
	FieldStatus      = "status"
	FieldNotes       = "notes"
)

// Record is one row from one source sheet after column normalization.
// Fields maps canonical (or sanitized) column names to cell text; a missing
// key means the value is absent, which is distinct from an empty string.
type Record struct {
	SourceSheet string
	Fields      map[string]string
}

// NewRecord creates an empty Record for the given source sheet.
func NewRecord(sheet string) Record {
	return Record{SourceSheet: sheet, Fields: make(map[string]string)}
}

// Get returns the value for a field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Set stores a field value.
func (r Record) Set(field, value string) {
	r.Fields[field] = value
}

// Has reports whether a field is present with a non-blank value.
func (r Record) Has(field string) bool {
	v, ok := r.Fields[field]
	return ok && strings.TrimSpace(v) != ""
}

// Clone returns a deep copy of the record. Pipeline stages are pure
// transforms, so they clone before mutating.
func (r Record) Clone() Record {
	out := Record{SourceSheet: r.SourceSheet, Fields: make(map[string]string, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Priority is the three-tier lead quality bucket derived from the lead score.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// PriorityFor buckets a lead score: High at 70+ (phone + email), Medium at
// 40+ (phone only), Low otherwise.
func PriorityFor(score int) Priority {
	switch {
	case score >= 70:
		return PriorityHigh
	case score >= 40:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// StatusNewLead is the initial status stamped by the scoring engine. The rest
// of the status vocabulary is configuration owned by the lead-management side.
const StatusNewLead = "New Lead"

// Enrichment holds the structured output of the AI enrichment call. All
// fields are additive; the pipeline never lets enrichment touch identity,
// score, or status.
type Enrichment struct {
	CustomerSegment    string   `json:"customer_segment"`
	PotentialValue     string   `json:"potential_value"`
	EngagementStrategy string   `json:"engagement_strategy"`
	Benefits           []string `json:"benefits,omitempty"`
}

// Lead is a deduplicated canonical record with scoring and tracking metadata
// attached, ready for persistence and export.
type Lead struct {
	ID          string `json:"id,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	City        string `json:"city,omitempty"`
	ChildAge    string `json:"child_age,omitempty"`
	LeadType    string `json:"lead_type,omitempty"`
	LeadSource  string `json:"lead_source,omitempty"`
	Notes       string `json:"notes,omitempty"`
	SourceSheet string `json:"source_sheet,omitempty"`

	// Columns the normalizer retained under sanitized labels.
	Extra map[string]string `json:"extra,omitempty"`

	Score    int      `json:"score"`
	Priority Priority `json:"priority"`
	Status   string   `json:"status"`

	CreatedAt       time.Time  `json:"created_at"`
	StatusUpdatedAt time.Time  `json:"status_updated_at"`
	StatusNotes     string     `json:"status_notes,omitempty"`
	LastContactAt   *time.Time `json:"last_contact_at,omitempty"`
	FollowUpAt      *time.Time `json:"follow_up_at,omitempty"`
	FollowUpCount   int        `json:"follow_up_count"`

	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// IdentityKey returns the tiered identity for duplicate detection: phone
// number, else email, else full name. An empty key means the record carries
// no identity information and must never be merged with another record.
func (l Lead) IdentityKey() string {
	if l.PhoneNumber != "" {
		return l.PhoneNumber
	}
	if l.Email != "" {
		return l.Email
	}
	return l.FullName
}
