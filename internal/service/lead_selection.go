package service

import "github.com/noah-isme/coaching-portal/internal/models"

// LeadSelection is an insertion-ordered set of lead ids. It is sticky across
// filter changes: filtering only changes what is visible, never membership.
// The zero value is an empty selection.
type LeadSelection struct {
	ids   []int64
	index map[int64]struct{}
}

// NewLeadSelection builds a selection from stored ids, dropping duplicates.
func NewLeadSelection(ids []int64) *LeadSelection {
	s := &LeadSelection{index: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *LeadSelection) add(id int64) {
	if s.index == nil {
		s.index = make(map[int64]struct{})
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Toggle adds id when absent and removes it when present. It returns whether
// id is selected afterwards.
func (s *LeadSelection) Toggle(id int64) bool {
	if _, ok := s.index[id]; !ok {
		s.add(id)
		return true
	}
	delete(s.index, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return false
}

// SelectAll replaces the selection with exactly the ids of filtered, in order.
func (s *LeadSelection) SelectAll(filtered []models.Lead) {
	s.ids = make([]int64, 0, len(filtered))
	s.index = make(map[int64]struct{}, len(filtered))
	for _, lead := range filtered {
		s.add(lead.ID)
	}
}

// DeselectAll empties the selection.
func (s *LeadSelection) DeselectAll() {
	s.ids = nil
	s.index = make(map[int64]struct{})
}

func (s *LeadSelection) Contains(id int64) bool {
	_, ok := s.index[id]
	return ok
}

func (s *LeadSelection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in insertion order.
func (s *LeadSelection) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// AllSelected drives the header checkbox: true iff the selection size equals
// the filtered size and the filtered list is non-empty.
func (s *LeadSelection) AllSelected(filtered []models.Lead) bool {
	return len(filtered) > 0 && s.Len() == len(filtered)
}

// VisibleCount counts selected ids that appear in filtered.
func (s *LeadSelection) VisibleCount(filtered []models.Lead) int {
	n := 0
	for _, lead := range filtered {
		if s.Contains(lead.ID) {
			n++
		}
	}
	return n
}
