package service

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// FilterAll disables the role or city filter.
const FilterAll = "all"

// LeadSort names an ordering of the lead list.
type LeadSort string

const (
	SortNewest   LeadSort = "newest"
	SortOldest   LeadSort = "oldest"
	SortNameAsc  LeadSort = "name_asc"
	SortNameDesc LeadSort = "name_desc"
)

// LeadQuery is the ephemeral view state of the lead table.
type LeadQuery struct {
	Search string   `json:"q" form:"q"`
	Role   string   `json:"role" form:"role"`
	City   string   `json:"city" form:"city"`
	Sort   LeadSort `json:"sort" form:"sort"`
}

// ParseLeadQuery reads q, role, city and sort from URL values. Empty filters
// mean "all" and an empty sort means newest first.
func ParseLeadQuery(values url.Values) LeadQuery {
	q := LeadQuery{
		Search: values.Get("q"),
		Role:   strings.TrimSpace(values.Get("role")),
		City:   strings.TrimSpace(values.Get("city")),
		Sort:   LeadSort(strings.TrimSpace(values.Get("sort"))),
	}
	return q.normalized()
}

func (q LeadQuery) normalized() LeadQuery {
	if q.Role == "" {
		q.Role = FilterAll
	}
	if q.City == "" {
		q.City = FilterAll
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	return q
}

// Values encodes the query back into URL form, omitting defaults.
func (q LeadQuery) Values() url.Values {
	q = q.normalized()
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Role != FilterAll {
		values.Set("role", q.Role)
	}
	if q.City != FilterAll {
		values.Set("city", q.City)
	}
	if q.Sort != SortNewest {
		values.Set("sort", string(q.Sort))
	}
	return values
}

// fold case-folds s. A Caser is stateful and must not be shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether a lead passes every active filter.
func (q LeadQuery) Matches(lead models.Lead) bool {
	q = q.normalized()

	if q.Search != "" {
		needle := fold(q.Search)
		if !strings.Contains(fold(lead.Name), needle) &&
			!strings.Contains(fold(lead.Email), needle) &&
			!strings.Contains(lead.Phone, q.Search) {
			return false
		}
	}

	if q.Role != FilterAll && string(lead.Role) != q.Role {
		return false
	}

	if q.City != FilterAll {
		if lead.City == nil || fold(*lead.City) != fold(q.City) {
			return false
		}
	}

	return true
}

// ApplyLeadQuery returns the leads that pass the query's filters, ordered by
// its sort key. The input slice is never modified. Unknown sort keys keep
// input order.
func ApplyLeadQuery(leads []models.Lead, query LeadQuery) []models.Lead {
	query = query.normalized()

	result := make([]models.Lead, 0, len(leads))
	for _, lead := range leads {
		if query.Matches(lead) {
			result = append(result, lead)
		}
	}

	switch query.Sort {
	case SortNewest:
		sort.SliceStable(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English, collate.Loose)
		desc := query.Sort == SortNameDesc
		sort.SliceStable(result, func(i, j int) bool {
			cmp := col.CompareString(result[i].Name, result[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	return result
}

// LeadCities lists the distinct non-empty cities of the unfiltered collection
// in first-seen order.
func LeadCities(leads []models.Lead) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, lead := range leads {
		city := lead.CityValue()
		if city == "" {
			continue
		}
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}
	return cities
}
