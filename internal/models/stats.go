package models

// AdminStats is the overview payload of `GET /admin/stats`.
type AdminStats struct {
	TotalLeads       int           `json:"total_leads"`
	TotalStudents    int           `json:"total_students"`
	TotalRevenue     float64       `json:"total_revenue"`
	ActiveBatches    int           `json:"active_batches"`
	LeadDistribution []NamedValue  `json:"lead_distribution"`
	EnrollmentTrend  []TrendBucket `json:"enrollment_trend"`
}

type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type TrendBucket struct {
	Name     string `json:"name"`
	Students int    `json:"students"`
}
