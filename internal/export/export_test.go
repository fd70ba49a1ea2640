package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/bumuk-library/leadctl/internal/model"
)

func exportLeads() []model.Lead {
	created := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	return []model.Lead{
		{
			FullName:    "John Smith",
			FirstName:   "John",
			LastName:    "Smith",
			PhoneNumber: "(555) 123-4567",
			Email:       "john@example.com",
			City:        "Springfield",
			SourceSheet: "Main Leads",
			Score:       75,
			Priority:    model.PriorityHigh,
			Status:      model.StatusNewLead,
			CreatedAt:   created,
			Enrichment: &model.Enrichment{
				CustomerSegment: "parent",
				PotentialValue:  "High",
				Benefits:        []string{"kids programs", "free wifi"},
			},
		},
		{
			FullName:  "Jane Doe",
			Email:     "jane@example.com",
			Score:     35,
			Priority:  model.PriorityLow,
			Status:    model.StatusNewLead,
			CreatedAt: created,
		},
	}
}

func TestExport_CSV(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 15, 14, 5, 9, 0, time.UTC)

	path, err := Export(exportLeads(), dir, "bumuk_leads", FormatCSV, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bumuk_leads_20260315_140509.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "John Smith", rows[1][0])
	assert.Equal(t, "(555) 123-4567", rows[1][3])
	assert.Equal(t, "75", rows[1][11])
	assert.Equal(t, "High", rows[1][12])
	assert.Equal(t, "kids programs; free wifi", rows[1][19])
	// Lead without enrichment leaves the AI columns blank.
	assert.Equal(t, "", rows[2][16])
}

func TestExport_XLSX(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 15, 14, 5, 9, 0, time.UTC)

	path, err := Export(exportLeads(), dir, "bumuk_leads", FormatXLSX, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bumuk_leads_20260315_140509.xlsx"), path)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, "Leads", f.Sheets[0].Name)
	require.Len(t, f.Sheets[0].Rows, 3)

	assert.Equal(t, "Full Name", f.Sheets[0].Rows[0].Cells[0].String())
	assert.Equal(t, "John Smith", f.Sheets[0].Rows[1].Cells[0].String())
	assert.Equal(t, "jane@example.com", f.Sheets[0].Rows[2].Cells[4].String())
}

// brokenWriter fails every write so buffered data can only error at flush.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("device full")
}

func TestWriteCSVTo_FlushErrorSurfaces(t *testing.T) {
	err := writeCSVTo(brokenWriter{}, exportLeads())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device full")
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := Export(nil, t.TempDir(), "bumuk_leads", "pdf", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExport_EmptyLeads(t *testing.T) {
	dir := t.TempDir()

	path, err := Export(nil, dir, "bumuk_leads", FormatCSV, time.Now())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	// Header only.
	require.Len(t, rows, 1)
}
