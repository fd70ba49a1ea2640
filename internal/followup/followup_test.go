package followup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumuk-library/leadctl/internal/model"
	"github.com/bumuk-library/leadctl/internal/store"
)

var testStatuses = []string{
	"New Lead", "Initial Contact", "Follow Up 1", "Interested", "Member",
}

var testSchedule = map[string]int{
	// Lower-cased keys, the way viper delivers them.
	"new lead":        2,
	"initial contact": 3,
	"follow up 1":     5,
	"interested":      3,
}

func TestNextDate(t *testing.T) {
	from := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	next, ok := NextDate("New Lead", testSchedule, from)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC), next)

	// Status casing never matters against the lowercased schedule keys.
	next, ok = NextDate("FOLLOW UP 1", testSchedule, from)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC), next)

	_, ok = NextDate("Member", testSchedule, from)
	assert.False(t, ok)
}

func newTestManager(t *testing.T) (*Manager, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	m := NewManager(st, testStatuses, testSchedule).WithClock(func() time.Time { return now })
	return m, st
}

func saveLead(t *testing.T, st store.Store) string {
	t.Helper()
	leads := []model.Lead{{
		FullName:        "John Smith",
		PhoneNumber:     "(555) 123-4567",
		Status:          model.StatusNewLead,
		CreatedAt:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		StatusUpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	_, err := st.SaveLeads(context.Background(), leads)
	require.NoError(t, err)
	return leads[0].ID
}

func TestManager_UpdateStatus(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	lead, err := m.UpdateStatus(context.Background(), id, "Initial Contact", "left voicemail")
	require.NoError(t, err)

	assert.Equal(t, "Initial Contact", lead.Status)
	assert.Contains(t, lead.StatusNotes, "[2026-03-15 10:00] Initial Contact: left voicemail")
	require.NotNil(t, lead.LastContactAt)
	require.NotNil(t, lead.FollowUpAt)
	assert.Equal(t, time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC), lead.FollowUpAt.UTC())
	assert.Zero(t, lead.FollowUpCount)

	// Persisted, not just returned.
	got, err := st.GetLead(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Initial Contact", got.Status)
}

func TestManager_UpdateStatus_FollowUpBumpsCounter(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	lead, err := m.UpdateStatus(context.Background(), id, "Follow Up 1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, lead.FollowUpCount)
}

func TestManager_UpdateStatus_NotesAccumulate(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	_, err := m.UpdateStatus(context.Background(), id, "Initial Contact", "first call")
	require.NoError(t, err)
	lead, err := m.UpdateStatus(context.Background(), id, "Interested", "wants a tour")
	require.NoError(t, err)

	assert.Contains(t, lead.StatusNotes, "first call")
	assert.Contains(t, lead.StatusNotes, "wants a tour")
}

func TestManager_UpdateStatus_CaseInsensitive(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	lead, err := m.UpdateStatus(context.Background(), id, "interested", "")
	require.NoError(t, err)
	assert.Equal(t, "Interested", lead.Status)
}

func TestManager_UpdateStatus_InvalidStatus(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	_, err := m.UpdateStatus(context.Background(), id, "Abducted By Aliens", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestManager_UpdateStatus_UnscheduledStatusClearsFollowUp(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	_, err := m.UpdateStatus(context.Background(), id, "Initial Contact", "")
	require.NoError(t, err)
	lead, err := m.UpdateStatus(context.Background(), id, "Member", "joined")
	require.NoError(t, err)

	assert.Nil(t, lead.FollowUpAt)
}

func TestManager_DueLeads(t *testing.T) {
	m, st := newTestManager(t)
	id := saveLead(t, st)

	// Initial Contact schedules a follow-up 3 days out; nothing is due yet.
	_, err := m.UpdateStatus(context.Background(), id, "Initial Contact", "")
	require.NoError(t, err)

	due, err := m.DueLeads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, due)

	// Move the clock past the follow-up date.
	m.WithClock(func() time.Time { return time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC) })

	due, err = m.DueLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, id, due[0].ID)
}
