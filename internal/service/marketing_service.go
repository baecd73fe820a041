package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
)

type broadcastRepository interface {
	BroadcastNotify(ctx context.Context, token string, channel models.NotifyChannel, req models.BulkNotifyRequest) (string, error)
}

type leadLister interface {
	List(ctx context.Context, sess *models.Session) ([]models.Lead, error)
}

const defaultCampaignSubject = "Update from Python Pro"

// MarketingService generates campaign content with the AI assistant and
// broadcasts it through the backend's bulk notification endpoint.
type MarketingService struct {
	chat      chatRepository
	broadcast broadcastRepository
	leads     leadLister
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarketingService constructs a MarketingService.
func NewMarketingService(chat chatRepository, broadcast broadcastRepository, leads leadLister, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *MarketingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &MarketingService{chat: chat, broadcast: broadcast, leads: leads, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// CampaignPrompt is the instruction sent to the AI assistant.
func CampaignPrompt(req models.MarketingRequest) string {
	return fmt.Sprintf("Create a %s campaign for %s about: %s. Return only the content.", req.Channel, req.Audience, req.Topic)
}

// Generate drafts campaign content and resolves the audience it targets.
func (s *MarketingService) Generate(ctx context.Context, sess *models.Session, req models.MarketingRequest, audience string) (*dto.MarketingDraft, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.Audience = strings.TrimSpace(req.Audience)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	content, err := s.chat.Chat(ctx, sess.Token, CampaignPrompt(req))
	if err != nil {
		return nil, err
	}

	recipients, err := s.Audience(ctx, sess, audience)
	if err != nil {
		return nil, err
	}
	return &dto.MarketingDraft{Request: req, Content: content, Audience: recipients}, nil
}

// Audience lists the leads matching an audience filter.
func (s *MarketingService) Audience(ctx context.Context, sess *models.Session, audience string) ([]models.Lead, error) {
	leads, err := s.leads.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	return FilterAudience(leads, audience), nil
}

// FilterAudience keeps students, parents (every non-student) or everyone.
func FilterAudience(leads []models.Lead, audience string) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, lead := range leads {
		switch audience {
		case dto.AudienceStudents:
			if lead.Role != models.LeadRoleStudent {
				continue
			}
		case dto.AudienceParents:
			if lead.Role == models.LeadRoleStudent {
				continue
			}
		}
		out = append(out, lead)
	}
	return out
}

// Broadcast hands the content to the backend for delivery to every lead id.
func (s *MarketingService) Broadcast(ctx context.Context, sess *models.Session, req dto.BroadcastRequest) (string, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err)
	}

	payload := models.BulkNotifyRequest{LeadIDs: req.LeadIDs, Prompt: req.Content}
	if req.Channel == models.ChannelEmail {
		payload.Subject = req.Subject
		if payload.Subject == "" {
			payload.Subject = defaultCampaignSubject
		}
	}

	message, err := s.broadcast.BroadcastNotify(ctx, sess.Token, req.Channel, payload)
	if err != nil {
		s.metrics.RecordBulkDispatch(req.Channel, 0, len(req.LeadIDs))
		return "", err
	}
	s.metrics.RecordBulkDispatch(req.Channel, len(req.LeadIDs), 0)
	s.cache.InvalidateCollections(ctx, communicationKeys(req.LeadIDs)...)
	s.logger.Info("campaign broadcast queued", zap.String("channel", string(req.Channel)), zap.Int("recipients", len(req.LeadIDs)))
	return message, nil
}
