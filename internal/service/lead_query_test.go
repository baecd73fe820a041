package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/coaching-portal/internal/models"
)

func strPtr(s string) *string { return &s }

func leadIDs(leads []models.Lead) []int64 {
	ids := make([]int64, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	return ids
}

func sampleLeads() []models.Lead {
	return []models.Lead{
		{ID: 1, Name: "Amy", Email: "amy@example.com", Phone: "9876543210", City: strPtr("Pune"), Role: models.LeadRoleStudent, Status: models.LeadStatusNew},
		{ID: 2, Name: "Zane", Email: "zane@example.com", Phone: "+919812345678", City: strPtr("Goa"), Role: models.LeadRoleParent, Status: models.LeadStatusNew},
		{ID: 3, Name: "émile", Email: "EMILE@Example.com", Phone: "9000000001", Role: models.LeadRoleStudent, Status: models.LeadStatusEnrolled},
		{ID: 4, Name: "bob", Email: "bob@example.com", Phone: "9000000002", City: strPtr("pune"), Role: models.LeadRoleParent},
	}
}

func TestApplyLeadQueryRoleFilter(t *testing.T) {
	leads := sampleLeads()[:2]

	result := ApplyLeadQuery(leads, LeadQuery{Role: "student"})

	assert.Equal(t, []int64{1}, leadIDs(result))
}

func TestApplyLeadQueryNameDescOnUnfiltered(t *testing.T) {
	leads := sampleLeads()[:2]

	result := ApplyLeadQuery(leads, LeadQuery{Sort: SortNameDesc})

	assert.Equal(t, []string{"Zane", "Amy"}, []string{result[0].Name, result[1].Name})
}

func TestApplyLeadQuerySearch(t *testing.T) {
	leads := sampleLeads()

	cases := []struct {
		name   string
		search string
		want   []int64
	}{
		{"name is case insensitive", "AMY", []int64{1}},
		{"email is case insensitive", "emile@example", []int64{3}},
		{"phone substring", "+9198", []int64{2}},
		{"phone digits", "900000000", []int64{4, 3}},
		{"no match", "nobody", []int64{}},
		{"empty matches all", "", []int64{4, 3, 2, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ApplyLeadQuery(leads, LeadQuery{Search: tc.search})
			assert.Equal(t, tc.want, leadIDs(result))
		})
	}
}

func TestApplyLeadQueryCityFilter(t *testing.T) {
	leads := sampleLeads()

	result := ApplyLeadQuery(leads, LeadQuery{City: "PUNE", Sort: SortOldest})
	assert.Equal(t, []int64{1, 4}, leadIDs(result))

	result = ApplyLeadQuery(leads, LeadQuery{City: "Mumbai"})
	assert.Empty(t, result)

	result = ApplyLeadQuery(leads, LeadQuery{City: FilterAll})
	assert.Len(t, result, 4, "leads without a city pass the all filter")
}

func TestApplyLeadQueryCombinedFilters(t *testing.T) {
	result := ApplyLeadQuery(sampleLeads(), LeadQuery{Search: "example", Role: "parent", City: "pune"})
	assert.Equal(t, []int64{4}, leadIDs(result))
}

func TestApplyLeadQuerySortOrders(t *testing.T) {
	leads := sampleLeads()

	assert.Equal(t, []int64{4, 3, 2, 1}, leadIDs(ApplyLeadQuery(leads, LeadQuery{Sort: SortNewest})))
	assert.Equal(t, []int64{1, 2, 3, 4}, leadIDs(ApplyLeadQuery(leads, LeadQuery{Sort: SortOldest})))
	assert.Equal(t, []int64{1, 4, 3, 2}, leadIDs(ApplyLeadQuery(leads, LeadQuery{Sort: SortNameAsc})), "collation ignores case and accents")
	assert.Equal(t, []int64{2, 3, 4, 1}, leadIDs(ApplyLeadQuery(leads, LeadQuery{Sort: SortNameDesc})))
	assert.Equal(t, []int64{1, 2, 3, 4}, leadIDs(ApplyLeadQuery(leads, LeadQuery{Sort: "shuffle"})), "unknown sort keeps input order")
}

func TestApplyLeadQueryDoesNotMutateInput(t *testing.T) {
	leads := sampleLeads()
	_ = ApplyLeadQuery(leads, LeadQuery{Sort: SortNameDesc})
	assert.Equal(t, []int64{1, 2, 3, 4}, leadIDs(leads))
}

func TestApplyLeadQueryEveryResultMatches(t *testing.T) {
	leads := sampleLeads()
	queries := []LeadQuery{
		{Role: "parent"},
		{City: "goa"},
		{Search: "e", Role: "student"},
		{Search: "zz"},
	}
	for _, q := range queries {
		result := ApplyLeadQuery(leads, q)
		count := 0
		for _, lead := range leads {
			if q.Matches(lead) {
				count++
			}
		}
		assert.Len(t, result, count)
		for _, lead := range result {
			assert.True(t, q.Matches(lead))
		}
	}
}

func TestParseLeadQueryDefaults(t *testing.T) {
	q := ParseLeadQuery(url.Values{})
	assert.Equal(t, LeadQuery{Role: FilterAll, City: FilterAll, Sort: SortNewest}, q)
	assert.Empty(t, q.Values())

	q = ParseLeadQuery(url.Values{"q": {"amy"}, "role": {"parent"}, "city": {"Goa"}, "sort": {"name_asc"}})
	assert.Equal(t, "amy", q.Search)
	assert.Equal(t, "city=Goa&q=amy&role=parent&sort=name_asc", q.Values().Encode())
}

func TestLeadCities(t *testing.T) {
	leads := sampleLeads()
	leads = append(leads, models.Lead{ID: 5, City: strPtr("")}, models.Lead{ID: 6, City: strPtr("Goa")})

	assert.Equal(t, []string{"Pune", "Goa", "pune"}, LeadCities(leads))
	assert.Empty(t, LeadCities(nil))
}
