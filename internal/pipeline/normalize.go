// Package pipeline implements the lead-cleaning pipeline: column
// normalization, field cleaning, deduplication, scoring, and optional AI
// enrichment, sequenced as pure transforms over immutable record sets.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bumuk-library/leadctl/internal/model"
	"github.com/bumuk-library/leadctl/internal/sheet"
)

// ColumnRule maps any source label containing one of its keywords to a
// canonical field. Rules are evaluated in order; the first match wins.
type ColumnRule struct {
	Target   string
	Keywords []string
}

// DefaultColumnRules returns the ordered keyword groups for header matching.
// Order matters: a label like "phone number" must hit the phone group before
// the generic name group could ever see it.
func DefaultColumnRules() []ColumnRule {
	return []ColumnRule{
		{Target: model.FieldFullName, Keywords: []string{"name", "full_name", "first_name", "last_name"}},
		{Target: model.FieldPhoneNumber, Keywords: []string{"phone", "mobile", "telephone", "contact", "number"}},
		{Target: model.FieldEmail, Keywords: []string{"email", "e-mail", "mail"}},
		{Target: model.FieldCity, Keywords: []string{"city", "town", "location"}},
		{Target: model.FieldLeadDate, Keywords: []string{"date", "created", "timestamp", "contacted"}},
		{Target: model.FieldStatus, Keywords: []string{"status", "lead_status", "stage", "response"}},
		{Target: model.FieldLeadSource, Keywords: []string{"source", "lead_source", "origin"}},
		{Target: model.FieldChildAge, Keywords: []string{"age", "child_age", "group"}},
		{Target: model.FieldLeadType, Keywords: []string{"type", "lead_type"}},
		{Target: model.FieldNotes, Keywords: []string{"notes", "comments", "description"}},
	}
}

// SheetOverride fixes up a known irregular sheet layout where header labels
// do not describe their content. Overrides take precedence over keyword
// matching. SheetContains is matched case-insensitively against the sheet
// name; Columns maps the raw header label (trimmed) to a canonical field.
type SheetOverride struct {
	SheetContains string
	Columns       map[string]string
}

// DefaultSheetOverrides covers the known vendor export whose headers came
// through as positional artifacts rather than labels.
func DefaultSheetOverrides() []SheetOverride {
	return []SheetOverride{
		{
			SheetContains: "brightr lead",
			Columns: map[string]string{
				"Unnamed: 0":     model.FieldFullName,
				"Number":         model.FieldPhoneNumber,
				"Any response":   model.FieldStatus,
				"Date contacted": model.FieldLeadDate,
				"Age group":      model.FieldChildAge,
			},
		},
	}
}

// protectedColumnKeywords lists label fragments that exempt a column from the
// sparse-column drop. Date columns drive follow-up scheduling and stay even
// when mostly empty.
var protectedColumnKeywords = []string{"date", "created", "timestamp", "contacted"}

var nonLabelChars = regexp.MustCompile(`[^a-z0-9_]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// ColumnMapping records where one source column landed.
type ColumnMapping struct {
	Source string
	Target string
	Drop   bool // placeholder artifact, never carries data
}

// sparseDropThreshold drops a column when at least this fraction of records
// leave it blank.
const sparseDropThreshold = 0.95

// NormalizeColumns maps every sheet's free-text headers onto the canonical
// field set, combines all sheets into a single record set, and drops columns
// that carry no meaningful data. Returns ErrNoData when no sheet yielded a
// single row.
func NormalizeColumns(sheets []sheet.Sheet, rules []ColumnRule, overrides []SheetOverride) ([]model.Record, error) {
	var records []model.Record

	for _, s := range sheets {
		mappings := MapColumns(s.Name, s.Header, rules, overrides)

		for _, row := range s.Rows {
			rec := model.NewRecord(s.Name)
			for i, m := range mappings {
				if m.Drop || i >= len(row) {
					continue
				}
				value := strings.TrimSpace(row[i])
				if value == "" || strings.EqualFold(value, "none") {
					continue
				}
				rec.Set(m.Target, value)
			}
			records = append(records, rec)
		}

		zap.L().Info("normalize: standardized sheet",
			zap.String("sheet", s.Name),
			zap.Int("columns", len(mappings)),
			zap.Int("rows", len(s.Rows)),
		)
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}

	records = dropSparseColumns(records)
	return records, nil
}

// MapColumns resolves each source header label to its target column name for
// one sheet. Resolution order: sheet-specific override, then keyword rules,
// then the sanitized original label. Collisions get numeric suffixes in
// first-seen order so every output column is individually addressable.
func MapColumns(sheetName string, labels []string, rules []ColumnRule, overrides []SheetOverride) []ColumnMapping {
	override := findOverride(sheetName, overrides)

	mappings := make([]ColumnMapping, len(labels))
	seen := make(map[string]int, len(labels))

	for i, label := range labels {
		target, drop := resolveLabel(label, rules, override)
		if drop {
			mappings[i] = ColumnMapping{Source: label, Drop: true}
			continue
		}

		seen[target]++
		if n := seen[target]; n > 1 {
			target = fmt.Sprintf("%s_%d", target, n)
		}
		mappings[i] = ColumnMapping{Source: label, Target: target}
	}

	return mappings
}

func resolveLabel(label string, rules []ColumnRule, override map[string]string) (target string, drop bool) {
	if override != nil {
		if t, ok := override[strings.TrimSpace(label)]; ok {
			return t, false
		}
	}

	normalized := normalizeLabel(label)

	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				return rule.Target, false
			}
		}
	}

	sanitized := sanitizeLabel(label)
	if sanitized == "" || strings.HasPrefix(sanitized, "unnamed") {
		return "", true
	}
	return sanitized, false
}

func findOverride(sheetName string, overrides []SheetOverride) map[string]string {
	lower := strings.ToLower(sheetName)
	for _, o := range overrides {
		if o.SheetContains != "" && strings.Contains(lower, strings.ToLower(o.SheetContains)) {
			return o.Columns
		}
	}
	return nil
}

// normalizeLabel prepares a header label for keyword matching: lower-cased,
// control characters replaced by spaces, outer whitespace trimmed.
func normalizeLabel(label string) string {
	label = strings.ToLower(label)
	label = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, label)
	return strings.TrimSpace(label)
}

// sanitizeLabel converts an unmatched label into a safe column name:
// lower-case, whitespace runs to single underscores, everything outside
// [a-z0-9_] removed.
func sanitizeLabel(label string) string {
	s := normalizeLabel(label)
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = nonLabelChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "_")
	if len(s) >= 50 {
		// Extremely long labels are junk headers, not column names.
		return ""
	}
	return s
}

// dropSparseColumns removes columns that are blank in at least 95% of
// records, except protected date/timestamp columns which stay regardless of
// sparsity. Entirely empty columns always go.
func dropSparseColumns(records []model.Record) []model.Record {
	counts := make(map[string]int)
	for _, rec := range records {
		for col := range rec.Fields {
			if rec.Has(col) {
				counts[col]++
			}
		}
	}

	drop := make(map[string]bool)
	total := len(records)
	for _, rec := range records {
		for col := range rec.Fields {
			if drop[col] {
				continue
			}
			present := counts[col]
			if present == 0 {
				drop[col] = true
				continue
			}
			if float64(total-present)/float64(total) >= sparseDropThreshold && !isProtectedColumn(col) {
				drop[col] = true
			}
		}
	}

	if len(drop) == 0 {
		return records
	}

	dropped := make([]string, 0, len(drop))
	for col := range drop {
		dropped = append(dropped, col)
	}
	zap.L().Info("normalize: dropping sparse columns", zap.Strings("columns", dropped))

	out := make([]model.Record, len(records))
	for i, rec := range records {
		clone := rec.Clone()
		for col := range drop {
			delete(clone.Fields, col)
		}
		out[i] = clone
	}
	return out
}

func isProtectedColumn(col string) bool {
	for _, kw := range protectedColumnKeywords {
		if strings.Contains(col, kw) {
			return true
		}
	}
	return false
}
