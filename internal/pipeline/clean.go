package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bumuk-library/leadctl/internal/model"
)

// Field cleaners. Each is a pure transform over the whole record set:
// records missing the relevant field pass through untouched, and invalid
// values degrade to absent rather than failing the record.

var (
	nonDigits    = regexp.MustCompile(`[^\d]`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	titleCaser   = cases.Title(language.English)
)

// CleanPhones normalizes phone numbers. Ten digits format as
// (AAA) BBB-CCCC; eleven digits with a leading country code 1 drop the 1 and
// format the same; any other non-empty digit string passes through bare;
// digitless values become absent.
func CleanPhones(records []model.Record) []model.Record {
	return mapField(records, model.FieldPhoneNumber, cleanPhone)
}

func cleanPhone(raw string) (string, bool) {
	digits := nonDigits.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:], true
	case len(digits) == 11 && digits[0] == '1':
		return "(" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:], true
	case len(digits) > 0:
		return digits, true
	default:
		return "", false
	}
}

// CleanEmails lower-cases, trims, and validates addresses against a
// local@domain.tld pattern. Values that don't validate become absent.
func CleanEmails(records []model.Record) []model.Record {
	return mapField(records, model.FieldEmail, cleanEmail)
}

func cleanEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

// CleanNames collapses internal whitespace and title-cases full names, then
// derives first and last names for records that don't already carry them:
// first whitespace token and the remaining tokens respectively.
func CleanNames(records []model.Record) []model.Record {
	out := mapField(records, model.FieldFullName, cleanName)

	for i, rec := range out {
		full, ok := rec.Get(model.FieldFullName)
		if !ok || full == "" {
			continue
		}
		tokens := strings.Fields(full)
		if len(tokens) == 0 {
			continue
		}

		clone := rec.Clone()
		if !clone.Has(model.FieldFirstName) {
			clone.Set(model.FieldFirstName, tokens[0])
		}
		if !clone.Has(model.FieldLastName) && len(tokens) > 1 {
			clone.Set(model.FieldLastName, strings.Join(tokens[1:], " "))
		}
		out[i] = clone
	}
	return out
}

func cleanName(raw string) (string, bool) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", false
	}
	return titleCaser.String(name), true
}

// addressFields are cleaned independently; no cross-field validation.
var addressFields = []string{
	model.FieldAddress,
	model.FieldCity,
	model.FieldState,
	model.FieldCountry,
	model.FieldPostalCode,
}

// CleanAddresses trims and title-cases each address component.
func CleanAddresses(records []model.Record) []model.Record {
	out := records
	for _, field := range addressFields {
		out = mapField(out, field, func(raw string) (string, bool) {
			v := strings.TrimSpace(raw)
			if v == "" {
				return "", false
			}
			return titleCaser.String(v), true
		})
	}
	return out
}

// mapField applies fn to one field across all records, returning a new
// record set. Absent fields are a no-op; fn returning ok=false removes the
// field (degrades to absent).
func mapField(records []model.Record, field string, fn func(string) (string, bool)) []model.Record {
	out := make([]model.Record, len(records))
	for i, rec := range records {
		raw, ok := rec.Get(field)
		if !ok {
			out[i] = rec
			continue
		}

		clone := rec.Clone()
		if cleaned, keep := fn(raw); keep {
			clone.Set(field, cleaned)
		} else {
			delete(clone.Fields, field)
		}
		out[i] = clone
	}
	return out
}
