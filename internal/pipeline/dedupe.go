package pipeline

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bumuk-library/leadctl/internal/model"
)

// Completeness weights. These decide which duplicate survives, not how a
// lead is ranked for sales (see metadata.go for that).
const (
	completenessPhone = 40
	completenessEmail = 35
	completenessCity  = 15
	completenessName  = 10
)

// defaultSheetRank is assigned to sheets absent from the priority table.
const defaultSheetRank = 999

// IdentityKey computes the tiered identity of a record: normalized phone
// number, else email, else full name. The computation ignores origin sheet
// and column order entirely. An empty key means the record carries no
// identity information.
func IdentityKey(rec model.Record) string {
	for _, field := range []string{model.FieldPhoneNumber, model.FieldEmail, model.FieldFullName} {
		if v, ok := rec.Get(field); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CompletenessScore measures how much high-value contact data a record
// carries, in [0,100]. Used only to pick the survivor within a duplicate
// group.
func CompletenessScore(rec model.Record) int {
	score := 0
	if rec.Has(model.FieldPhoneNumber) {
		score += completenessPhone
	}
	if rec.Has(model.FieldEmail) {
		score += completenessEmail
	}
	if rec.Has(model.FieldCity) {
		score += completenessCity
	}
	if rec.Has(model.FieldFullName) {
		score += completenessName
	}
	return score
}

// SheetRank looks up a sheet's priority in the configured rank table. Table
// keys match as case-insensitive substrings of the sheet name; unknown sheets
// rank last. Lower is better.
func SheetRank(sheetName string, ranks map[string]int) int {
	lower := strings.ToLower(sheetName)
	best := defaultSheetRank
	for key, rank := range ranks {
		if strings.Contains(lower, strings.ToLower(key)) && rank < best {
			best = rank
		}
	}
	return best
}

// Deduplicate collapses records that denote the same real-world contact.
// Records are stable-sorted by completeness (descending) then sheet rank
// (ascending); within each identity group only the first survives. Two
// records tied on both score and rank keep their original load order, so the
// earlier-loaded one wins. Records with an empty identity key are never
// merged with each other: an empty key carries no identity, so each such
// record is kept as distinct.
func Deduplicate(records []model.Record, sheetRanks map[string]int) []model.Record {
	type ranked struct {
		rec   model.Record
		key   string
		score int
		rank  int
	}

	all := make([]ranked, len(records))
	for i, rec := range records {
		all[i] = ranked{
			rec:   rec,
			key:   IdentityKey(rec),
			score: CompletenessScore(rec),
			rank:  SheetRank(rec.SourceSheet, sheetRanks),
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].rank < all[j].rank
	})

	seen := make(map[string]bool)
	out := make([]model.Record, 0, len(all))
	for _, r := range all {
		if r.key == "" {
			// No identity information: keep every such record.
			out = append(out, r.rec)
			continue
		}
		if seen[r.key] {
			zap.L().Debug("dedupe: discarding duplicate",
				zap.String("identity_key", r.key),
				zap.String("sheet", r.rec.SourceSheet),
				zap.Int("completeness", r.score),
			)
			continue
		}
		seen[r.key] = true
		out = append(out, r.rec)
	}

	if removed := len(records) - len(out); removed > 0 {
		zap.L().Info("dedupe: removed duplicate records",
			zap.Int("removed", removed),
			zap.Int("kept", len(out)),
		)
	}
	return out
}
