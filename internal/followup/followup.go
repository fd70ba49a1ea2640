// Package followup manages lead status transitions and follow-up scheduling.
package followup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bumuk-library/leadctl/internal/model"
	"github.com/bumuk-library/leadctl/internal/store"
)

// NextDate computes when the next follow-up for a status is due. Status
// lookup is case-insensitive; statuses missing from the schedule get no
// follow-up date.
func NextDate(status string, schedule map[string]int, from time.Time) (time.Time, bool) {
	// Schedule keys arrive lowercased from viper, so folding the status is
	// enough for a direct hit.
	days, ok := schedule[strings.ToLower(status)]
	if !ok {
		return time.Time{}, false
	}
	return from.AddDate(0, 0, days), true
}

// Manager applies status changes with validation, note timelines, and
// follow-up bookkeeping.
type Manager struct {
	store    store.Store
	statuses []string
	schedule map[string]int
	now      func() time.Time
}

// NewManager creates a Manager over the given store with the configured
// status vocabulary and per-status follow-up schedule.
func NewManager(st store.Store, statuses []string, schedule map[string]int) *Manager {
	return &Manager{
		store:    st,
		statuses: statuses,
		schedule: schedule,
		now:      time.Now,
	}
}

// WithClock overrides the timestamp source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// ValidStatus reports whether status is in the configured vocabulary,
// ignoring case.
func (m *Manager) ValidStatus(status string) bool {
	for _, s := range m.statuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// canonicalStatus returns the vocabulary spelling for a status.
func (m *Manager) canonicalStatus(status string) string {
	for _, s := range m.statuses {
		if strings.EqualFold(s, status) {
			return s
		}
	}
	return status
}

// UpdateStatus transitions a lead to a new status. It validates the status
// against the vocabulary, appends a timestamped entry to the notes timeline,
// records the contact, bumps the follow-up counter on follow-up statuses,
// and schedules the next follow-up date.
func (m *Manager) UpdateStatus(ctx context.Context, leadID, status, note string) (*model.Lead, error) {
	if !m.ValidStatus(status) {
		return nil, eris.Errorf("followup: invalid status %q", status)
	}
	status = m.canonicalStatus(status)

	lead, err := m.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, eris.Wrapf(err, "followup: load lead %s", leadID)
	}

	now := m.now().UTC()
	lead.Status = status
	lead.StatusUpdatedAt = now
	lead.LastContactAt = &now

	entry := fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04"), status)
	if note != "" {
		entry += ": " + note
	}
	if lead.StatusNotes != "" {
		lead.StatusNotes += "\n"
	}
	lead.StatusNotes += entry

	if strings.Contains(strings.ToLower(status), "follow up") {
		lead.FollowUpCount++
	}

	if next, ok := NextDate(status, m.schedule, now); ok {
		lead.FollowUpAt = &next
	} else {
		lead.FollowUpAt = nil
	}

	if err := m.store.UpdateLead(ctx, lead); err != nil {
		return nil, eris.Wrapf(err, "followup: update lead %s", leadID)
	}

	zap.L().Info("followup: status updated",
		zap.String("lead_id", leadID),
		zap.String("status", status),
		zap.Int("follow_up_count", lead.FollowUpCount))

	return lead, nil
}

// DueLeads lists leads whose follow-up is due as of now, soonest first.
func (m *Manager) DueLeads(ctx context.Context) ([]model.Lead, error) {
	leads, err := m.store.DueFollowUps(ctx, m.now().UTC())
	if err != nil {
		return nil, eris.Wrap(err, "followup: list due leads")
	}
	return leads, nil
}
