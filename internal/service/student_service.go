package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type learningRepository interface {
	Classes(ctx context.Context, token string) ([]models.ClassSession, error)
	Certificates(ctx context.Context, token string) ([]models.Certificate, error)
	DownloadCertificate(ctx context.Context, token string, id int64) (io.ReadCloser, string, error)
	Assignments(ctx context.Context, token string, batchID int64) ([]models.Assignment, error)
	Submissions(ctx context.Context, token string) ([]models.Submission, error)
	Submit(ctx context.Context, token string, req models.SubmissionRequest) (*models.Submission, error)
}

type chatRepository interface {
	Chat(ctx context.Context, token, prompt string) (string, error)
}

type supportRepository interface {
	List(ctx context.Context, token string) ([]models.SupportTicket, error)
	Create(ctx context.Context, token string, req models.SupportTicketRequest) (*models.SupportTicket, error)
}

const (
	// maxChatHistory bounds the tutor conversation kept in the session.
	maxChatHistory = 50
	chatApology    = "Sorry, I'm having trouble right now. Please try again."
)

// StudentService backs the student dashboard.
type StudentService struct {
	learning  learningRepository
	chat      chatRepository
	support   supportRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(learning learningRepository, chat chatRepository, support supportRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &StudentService{
		learning:  learning,
		chat:      chat,
		support:   support,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard loads every section. A section that fails is rendered empty and
// named in Unavailable, except for an expired session which aborts the page.
func (s *StudentService) Dashboard(ctx context.Context, sess *models.Session) (*dto.StudentDashboard, error) {
	view := &dto.StudentDashboard{Chat: sess.ChatHistory}
	if sess.User != nil {
		view.User = *sess.User
	}

	sections := []struct {
		name string
		load func() error
	}{
		{"classes", func() (err error) { view.Classes, err = s.learning.Classes(ctx, sess.Token); return }},
		{"certificates", func() (err error) { view.Certificates, err = s.learning.Certificates(ctx, sess.Token); return }},
		{"assignments", func() (err error) { view.Assignments, err = s.learning.Assignments(ctx, sess.Token, 0); return }},
		{"submissions", func() (err error) { view.Submissions, err = s.learning.Submissions(ctx, sess.Token); return }},
		{"support", func() (err error) { view.Tickets, err = s.Tickets(ctx, sess); return }},
	}
	for _, section := range sections {
		if err := section.load(); err != nil {
			if IsSessionExpired(err) {
				return nil, err
			}
			s.logger.Warn("dashboard section unavailable", zap.String("section", section.name), zap.Error(err))
			view.Unavailable = append(view.Unavailable, section.name)
		}
	}
	return view, nil
}

// DownloadCertificate streams a certificate PDF. The caller closes the reader.
func (s *StudentService) DownloadCertificate(ctx context.Context, sess *models.Session, id int64) (io.ReadCloser, string, error) {
	if id <= 0 {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "invalid certificate id")
	}
	return s.learning.DownloadCertificate(ctx, sess.Token, id)
}

// Submit turns in an assignment.
func (s *StudentService) Submit(ctx context.Context, sess *models.Session, req models.SubmissionRequest) (*models.Submission, error) {
	req.Content = strings.TrimSpace(req.Content)
	req.FileURL = strings.TrimSpace(req.FileURL)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	return s.learning.Submit(ctx, sess.Token, req)
}

// Chat sends prompt to the AI tutor and records both sides in the session.
// A failed call records an apology instead of surfacing the error, unless the
// session itself expired.
func (s *StudentService) Chat(ctx context.Context, sess *models.Session, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if err := s.validator.Struct(models.ChatRequest{Prompt: prompt}); err != nil {
		return "", validationError(err)
	}
	s.appendChat(sess, models.ChatRoleUser, prompt)

	reply, err := s.chat.Chat(ctx, sess.Token, prompt)
	if err != nil {
		if IsSessionExpired(err) {
			return "", err
		}
		s.logger.Warn("tutor chat failed", zap.Error(err))
		reply = chatApology
	}
	s.appendChat(sess, models.ChatRoleAssistant, reply)
	return reply, nil
}

// ClearChat forgets the tutor conversation.
func (s *StudentService) ClearChat(sess *models.Session) {
	sess.ChatHistory = nil
}

func (s *StudentService) appendChat(sess *models.Session, role models.ChatRole, content string) {
	sess.ChatHistory = append(sess.ChatHistory, models.ChatMessage{Role: role, Content: content, SentAt: s.now().UTC()})
	if overflow := len(sess.ChatHistory) - maxChatHistory; overflow > 0 {
		sess.ChatHistory = append([]models.ChatMessage(nil), sess.ChatHistory[overflow:]...)
	}
}

// Tickets lists the caller's support tickets.
func (s *StudentService) Tickets(ctx context.Context, sess *models.Session) ([]models.SupportTicket, error) {
	return cachedFetch(ctx, s.cache, supportKey(sess), func() ([]models.SupportTicket, error) {
		return s.support.List(ctx, sess.Token)
	})
}

// OpenTicket raises a support ticket.
func (s *StudentService) OpenTicket(ctx context.Context, sess *models.Session, req models.SupportTicketRequest) (*models.SupportTicket, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	ticket, err := s.support.Create(ctx, sess.Token, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionSupport)
	return ticket, nil
}

// supportKey scopes the ticket list to the signed-in user: the backend
// returns only the caller's tickets unless the caller is an admin.
func supportKey(sess *models.Session) string {
	if sess.User == nil {
		return CollectionSupport + ":anonymous"
	}
	return fmt.Sprintf("%s:%d", CollectionSupport, sess.User.ID)
}
