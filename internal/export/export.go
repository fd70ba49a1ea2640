// Package export writes cleaned leads to timestamped CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/bumuk-library/leadctl/internal/model"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = eris.New("export: unsupported format")

// columns defines the ordered output columns shared by both formats.
var columns = []string{
	"Full Name",
	"First Name",
	"Last Name",
	"Phone Number",
	"Email",
	"City",
	"Child Age",
	"Lead Type",
	"Lead Source",
	"Notes",
	"Source Sheet",
	"Score",
	"Priority",
	"Status",
	"Created At",
	"Follow Up At",
	"AI Segment",
	"AI Potential Value",
	"AI Engagement Strategy",
	"AI Benefits",
}

// Export writes leads to dir as "<prefix>_<YYYYMMDD_HHMMSS>.<format>" and
// returns the written path. Format must be FormatCSV or FormatXLSX.
func Export(leads []model.Lead, dir, prefix, format string, now time.Time) (string, error) {
	if format != FormatCSV && format != FormatXLSX {
		return "", eris.Wrapf(ErrUnsupportedFormat, "%q", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "export: create output dir")
	}

	name := fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), format)
	path := filepath.Join(dir, name)

	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(leads, path)
	case FormatXLSX:
		err = writeXLSX(leads, path)
	}
	if err != nil {
		return "", err
	}

	zap.L().Info("export: wrote leads",
		zap.String("path", path),
		zap.Int("leads", len(leads)))
	return path, nil
}

func writeCSV(leads []model.Lead, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()

	return writeCSVTo(f, leads)
}

func writeCSVTo(dst io.Writer, leads []model.Lead) error {
	w := csv.NewWriter(dst)

	if err := w.Write(columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for i := range leads {
		if err := w.Write(buildRow(leads[i])); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	// Flush before checking Error so failures surfacing only on the final
	// buffer drain are reported.
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush")
	}
	return nil
}

func writeXLSX(leads []model.Lead, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}
	for i := range leads {
		row := sheet.AddRow()
		for _, cell := range buildRow(leads[i]) {
			row.AddCell().SetString(cell)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func buildRow(l model.Lead) []string {
	var followUp string
	if l.FollowUpAt != nil {
		followUp = l.FollowUpAt.Format("2006-01-02")
	}

	var segment, value, strategy, benefits string
	if l.Enrichment != nil {
		segment = l.Enrichment.CustomerSegment
		value = l.Enrichment.PotentialValue
		strategy = l.Enrichment.EngagementStrategy
		benefits = strings.Join(l.Enrichment.Benefits, "; ")
	}

	return []string{
		l.FullName,
		l.FirstName,
		l.LastName,
		l.PhoneNumber,
		l.Email,
		l.City,
		l.ChildAge,
		l.LeadType,
		l.LeadSource,
		l.Notes,
		l.SourceSheet,
		strconv.Itoa(l.Score),
		string(l.Priority),
		l.Status,
		l.CreatedAt.Format("2006-01-02"),
		followUp,
		segment,
		value,
		strategy,
		benefits,
	}
}
