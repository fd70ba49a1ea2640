package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityFor(100))
	assert.Equal(t, PriorityHigh, PriorityFor(70))
	assert.Equal(t, PriorityMedium, PriorityFor(69))
	assert.Equal(t, PriorityMedium, PriorityFor(40))
	assert.Equal(t, PriorityLow, PriorityFor(39))
	assert.Equal(t, PriorityLow, PriorityFor(0))
}

func TestRecord_AbsentVsEmpty(t *testing.T) {
	r := NewRecord("Main")
	_, ok := r.Get(FieldEmail)
	assert.False(t, ok)

	r.Set(FieldEmail, "")
	_, ok = r.Get(FieldEmail)
	assert.True(t, ok, "empty string is present, not absent")
	assert.False(t, r.Has(FieldEmail), "but blank values don't count as populated")
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord("Leads")
	r.Set(FieldFullName, "Jane Doe")

	c := r.Clone()
	c.Set(FieldFullName, "Someone Else")

	v, _ := r.Get(FieldFullName)
	assert.Equal(t, "Jane Doe", v)
	assert.Equal(t, "Leads", c.SourceSheet)
}

func TestLead_IdentityKey_Tiered(t *testing.T) {
	l := Lead{PhoneNumber: "(555) 123-4567", Email: "a@b.com", FullName: "A B"}
	assert.Equal(t, "(555) 123-4567", l.IdentityKey())

	l.PhoneNumber = ""
	assert.Equal(t, "a@b.com", l.IdentityKey())

	l.Email = ""
	assert.Equal(t, "A B", l.IdentityKey())

	l.FullName = ""
	assert.Equal(t, "", l.IdentityKey())
}
