package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/coaching-portal/internal/models"
)

func TestLeadSelectionToggle(t *testing.T) {
	sel := NewLeadSelection([]int64{3, 3, 1})
	assert.Equal(t, []int64{3, 1}, sel.IDs())

	assert.True(t, sel.Toggle(7))
	assert.False(t, sel.Toggle(3))
	assert.Equal(t, []int64{1, 7}, sel.IDs())
	assert.True(t, sel.Contains(7))
	assert.False(t, sel.Contains(3))
}

func TestLeadSelectionSelectAllThenDeselectAll(t *testing.T) {
	sel := NewLeadSelection([]int64{99, 42})
	filtered := ApplyLeadQuery(sampleLeads(), LeadQuery{Role: "student"})

	sel.SelectAll(filtered)
	assert.Equal(t, leadIDs(filtered), sel.IDs())
	assert.True(t, sel.AllSelected(filtered))

	sel.DeselectAll()
	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.IDs())
}

func TestLeadSelectionAllSelectedState(t *testing.T) {
	leads := sampleLeads()
	sel := NewLeadSelection(nil)

	assert.False(t, sel.AllSelected(nil), "empty filtered list is never all selected")

	students := ApplyLeadQuery(leads, LeadQuery{Role: "student"})
	sel.SelectAll(students)
	assert.True(t, sel.AllSelected(students))

	parents := ApplyLeadQuery(leads, LeadQuery{Role: "parent"})
	assert.True(t, sel.AllSelected(parents), "size comparison only, as the header checkbox does")
	assert.Equal(t, 0, sel.VisibleCount(parents))

	everyone := ApplyLeadQuery(leads, LeadQuery{})
	assert.False(t, sel.AllSelected(everyone))
	assert.Equal(t, leadIDs(students), sel.IDs(), "changing filters never mutates the selection")
}

func TestLeadSelectionIDsIsCopy(t *testing.T) {
	sel := NewLeadSelection([]int64{1, 2})
	ids := sel.IDs()
	ids[0] = 100
	assert.Equal(t, []int64{1, 2}, sel.IDs())
	assert.False(t, sel.AllSelected([]models.Lead{}))
}

func TestLeadSelectionZeroValue(t *testing.T) {
	var sel LeadSelection
	assert.False(t, sel.Contains(4))
	assert.Equal(t, 0, sel.Len())

	assert.True(t, sel.Toggle(4))
	assert.True(t, sel.Toggle(2))
	assert.Equal(t, []int64{4, 2}, sel.IDs())
	assert.False(t, sel.Toggle(4))
	assert.Equal(t, []int64{2}, sel.IDs())
}
