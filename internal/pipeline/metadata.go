package pipeline

import (
	"time"

	"github.com/bumuk-library/leadctl/internal/config"
	"github.com/bumuk-library/leadctl/internal/model"
)

// LeadScore computes the quality score for one record in [0,100].
func LeadScore(rec model.Record, w config.ScoringWeights) int {
	score := 0
	if rec.Has(model.FieldPhoneNumber) {
		score += w.PhoneNumber
	}
	if rec.Has(model.FieldEmail) {
		score += w.Email
	}
	if rec.Has(model.FieldCity) {
		score += w.City
	}
	if rec.Has(model.FieldChildAge) || rec.Has(model.FieldLeadType) {
		score += w.Engagement
	}
	return score
}

// AttachMetadata converts deduplicated records into leads: score, priority
// tier, initial status, creation timestamp, and zeroed follow-up counters.
// Nothing here accumulates, so re-running on the same input produces the
// same output.
func AttachMetadata(records []model.Record, w config.ScoringWeights, now time.Time) []model.Lead {
	leads := make([]model.Lead, len(records))
	for i, rec := range records {
		score := LeadScore(rec, w)
		leads[i] = model.Lead{
			FullName:        field(rec, model.FieldFullName),
			FirstName:       field(rec, model.FieldFirstName),
			LastName:        field(rec, model.FieldLastName),
			PhoneNumber:     field(rec, model.FieldPhoneNumber),
			Email:           field(rec, model.FieldEmail),
			City:            field(rec, model.FieldCity),
			ChildAge:        field(rec, model.FieldChildAge),
			LeadType:        field(rec, model.FieldLeadType),
			LeadSource:      field(rec, model.FieldLeadSource),
			Notes:           field(rec, model.FieldNotes),
			SourceSheet:     rec.SourceSheet,
			Extra:           extraFields(rec),
			Score:           score,
			Priority:        model.PriorityFor(score),
			Status:          model.StatusNewLead,
			CreatedAt:       now,
			StatusUpdatedAt: now,
			FollowUpCount:   0,
		}
	}
	return leads
}

func field(rec model.Record, name string) string {
	v, _ := rec.Get(name)
	return v
}

// semanticFields are lifted onto the Lead struct; everything else the
// normalizer retained lands in Extra.
var semanticFields = map[string]bool{
	model.FieldFullName:    true,
	model.FieldFirstName:   true,
	model.FieldLastName:    true,
	model.FieldPhoneNumber: true,
	model.FieldEmail:       true,
	model.FieldCity:        true,
	model.FieldChildAge:    true,
	model.FieldLeadType:    true,
	model.FieldLeadSource:  true,
	model.FieldNotes:       true,
}

func extraFields(rec model.Record) map[string]string {
	var extra map[string]string
	for k, v := range rec.Fields {
		if semanticFields[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}
	return extra
}
