package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type authRepository interface {
	Token(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
}

type loginSessions interface {
	AcquireLoginGuard(ctx context.Context, sess *models.Session) (func(), error)
	Authenticate(sess *models.Session, token string, user *models.User)
}

// LoginResult tells the caller where to send a freshly authenticated user.
type LoginResult struct {
	User     models.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// AuthService drives the portal login flow against the backend.
type AuthService struct {
	repo      authRepository
	sessions  loginSessions
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authRepository, sessions loginSessions, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{repo: repo, sessions: sessions, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// SelectPortal records the visitor's portal choice.
func (s *AuthService) SelectPortal(sess *models.Session, portal models.Portal) error {
	flow := NewLoginFlow(sess.Flow)
	if err := flow.SelectPortal(portal); err != nil {
		return err
	}
	sess.Flow = flow.State()
	return nil
}

// Back returns the visitor to the portal choice.
func (s *AuthService) Back(sess *models.Session) {
	flow := NewLoginFlow(sess.Flow)
	flow.Back()
	sess.Flow = flow.State()
}

// Login exchanges credentials, resolves the identity and enforces the role
// compatibility check. On any failure the session holds no token and the flow
// stays on the credentials step with a message. A second submit while one is
// in flight fails with LOGIN_IN_PROGRESS and leaves the session untouched.
func (s *AuthService) Login(ctx context.Context, sess *models.Session, req models.LoginRequest) (*LoginResult, error) {
	flow := NewLoginFlow(sess.Flow)
	if !flow.CanSubmit() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Please choose a portal first.")
	}
	portal := flow.State().Portal

	release, err := s.sessions.AcquireLoginGuard(ctx, sess)
	if err != nil {
		if errors.Is(err, appErrors.ErrLoginInProgress) {
			s.metrics.RecordLogin(portal, LoginOutcomeBusy)
		}
		return nil, err
	}
	defer release()

	req.Email = strings.TrimSpace(req.Email)
	fail := func(err error, outcome, message string) (*LoginResult, error) {
		sess.ClearAuth()
		flow.Fail(req.Email, message)
		sess.Flow = flow.State()
		s.metrics.RecordLogin(portal, outcome)
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		verr := validationError(err)
		return fail(verr, LoginOutcomeError, appErrors.FromError(verr).Message)
	}

	token, err := s.repo.Token(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("portal", string(portal)), zap.Error(err))
		return fail(err, outcomeFor(err), loginFailureMessage(err))
	}
	sess.Token = token

	user, err := s.repo.Me(ctx, token)
	if err != nil {
		s.logger.Warn("identity lookup failed after login", zap.Error(err))
		return fail(err, outcomeFor(err), loginFailureMessage(err))
	}

	if !PortalAccepts(portal, user.Role) {
		s.logger.Info("portal role mismatch",
			zap.String("portal", string(portal)),
			zap.Int64("user_id", user.ID),
			zap.String("role", string(user.Role)),
		)
		return fail(appErrors.ErrRoleMismatch, LoginOutcomeRoleMismatch, appErrors.ErrRoleMismatch.Message)
	}

	s.sessions.Authenticate(sess, token, user)
	flow.Succeed()
	sess.Flow = flow.State()
	s.metrics.RecordLogin(portal, LoginOutcomeSuccess)

	return &LoginResult{User: *user, Redirect: HomeFor(user.Role)}, nil
}

// Signup registers a student account.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	user, err := s.repo.CreateUser(ctx, models.CreateUserRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleStudent,
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateCollections(ctx, CollectionStudents, CollectionStats)
	return user, nil
}

func outcomeFor(err error) string {
	if errors.Is(err, appErrors.ErrInvalidCredentials) {
		return LoginOutcomeInvalidCredentials
	}
	return LoginOutcomeError
}

// loginFailureMessage keeps the form's wording stable: only an unreachable
// backend gets its own message.
func loginFailureMessage(err error) string {
	if errors.Is(err, appErrors.ErrTransport) {
		return appErrors.FromError(err).Message
	}
	return appErrors.ErrInvalidCredentials.Message
}
