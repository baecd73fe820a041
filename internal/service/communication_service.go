package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type communicationRepository interface {
	History(ctx context.Context, token string, leadID int64) ([]models.CommunicationLog, error)
	SendEmail(ctx context.Context, token string, req models.EmailRequest) error
}

// CommunicationService exposes per-lead message history and manual email.
type CommunicationService struct {
	repo      communicationRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommunicationService constructs a CommunicationService.
func NewCommunicationService(repo communicationRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CommunicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &CommunicationService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// History returns the messages exchanged with a lead.
func (s *CommunicationService) History(ctx context.Context, sess *models.Session, leadID int64) ([]models.CommunicationLog, error) {
	if leadID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid lead id")
	}
	return cachedFetch(ctx, s.cache, CommunicationsCollection(leadID), func() ([]models.CommunicationLog, error) {
		return s.repo.History(ctx, sess.Token, leadID)
	})
}

// SendEmail sends a manual email to a lead.
func (s *CommunicationService) SendEmail(ctx context.Context, sess *models.Session, req models.EmailRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	if err := s.repo.SendEmail(ctx, sess.Token, req); err != nil {
		return err
	}
	s.cache.InvalidateCollections(ctx, CommunicationsCollection(req.LeadID))
	return nil
}
