package repository

import (
	"context"

	"github.com/noah-isme/coaching-portal/internal/models"
)

type StatsRepository struct {
	client *BackendClient
}

func NewStatsRepository(client *BackendClient) *StatsRepository {
	return &StatsRepository{client: client}
}

// AdminStats loads the admin overview numbers.
func (r *StatsRepository) AdminStats(ctx context.Context, token string) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := r.client.Get(ctx, "admin.stats", token, "/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
