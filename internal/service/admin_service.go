package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
)

type statsRepository interface {
	AdminStats(ctx context.Context, token string) (*models.AdminStats, error)
}

type userDirectory interface {
	ListUsers(ctx context.Context, token string, role models.UserRole) ([]models.User, error)
}

type batchLister interface {
	BatchRows(ctx context.Context, sess *models.Session) ([]dto.BatchRow, error)
}

// AdminService serves the admin overview, student directory and support inbox.
type AdminService struct {
	stats   statsRepository
	users   userDirectory
	support supportRepository
	catalog batchLister
	cache   *CacheService
	logger  *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(stats statsRepository, users userDirectory, support supportRepository, catalog batchLister, cache *CacheService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{stats: stats, users: users, support: support, catalog: catalog, cache: cache, logger: logger}
}

// Stats returns the dashboard counters.
func (s *AdminService) Stats(ctx context.Context, sess *models.Session) (*models.AdminStats, error) {
	stats, err := cachedFetch(ctx, s.cache, CollectionStats, func() (models.AdminStats, error) {
		stats, err := s.stats.AdminStats(ctx, sess.Token)
		if err != nil {
			return models.AdminStats{}, err
		}
		return *stats, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Overview combines stats with the batch table.
func (s *AdminService) Overview(ctx context.Context, sess *models.Session) (*dto.AdminOverview, error) {
	stats, err := s.Stats(ctx, sess)
	if err != nil {
		return nil, err
	}
	batches, err := s.catalog.BatchRows(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &dto.AdminOverview{Stats: *stats, Batches: batches}, nil
}

// Students lists every student account.
func (s *AdminService) Students(ctx context.Context, sess *models.Session) ([]models.User, error) {
	return cachedFetch(ctx, s.cache, CollectionStudents, func() ([]models.User, error) {
		return s.users.ListUsers(ctx, sess.Token, models.RoleStudent)
	})
}

// Tickets lists every support ticket visible to the admin.
func (s *AdminService) Tickets(ctx context.Context, sess *models.Session) ([]models.SupportTicket, error) {
	return cachedFetch(ctx, s.cache, supportKey(sess), func() ([]models.SupportTicket, error) {
		return s.support.List(ctx, sess.Token)
	})
}
