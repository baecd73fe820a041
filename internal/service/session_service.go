package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

// SessionRepository persists browser sessions and short-lived locks.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, id string) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// SessionService owns the lifecycle of the server-side session record that
// replaces ambient browser storage of the backend token.
type SessionService struct {
	repo     SessionRepository
	ttl      time.Duration
	guardTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs a session service.
func NewSessionService(repo SessionRepository, ttl, guardTTL time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if guardTTL <= 0 {
		guardTTL = 30 * time.Second
	}
	return &SessionService{repo: repo, ttl: ttl, guardTTL: guardTTL, logger: logger, now: time.Now}
}

// Start creates and stores a fresh anonymous session.
func (s *SessionService) Start(ctx context.Context) (*models.Session, error) {
	now := s.now().UTC()
	sess := &models.Session{
		ID:        uuid.NewString(),
		Flow:      models.LoginFlowState{Step: models.StepRoleSelect},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load fetches a session by id. Missing or expired sessions yield ErrNotFound.
func (s *SessionService) Load(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, appErrors.ErrNotFound
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		_ = s.repo.Delete(ctx, id)
		return nil, appErrors.ErrNotFound
	}
	return sess, nil
}

// Save persists the session.
func (s *SessionService) Save(ctx context.Context, sess *models.Session) error {
	return s.repo.Save(ctx, sess)
}

// Destroy removes the session record.
func (s *SessionService) Destroy(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return nil
	}
	return s.repo.Delete(ctx, sess.ID)
}

// Rotate moves the session under a new id, dropping the old record. Called
// when privileges change so a pre-login id cannot be replayed.
func (s *SessionService) Rotate(ctx context.Context, sess *models.Session) error {
	oldID := sess.ID
	sess.ID = uuid.NewString()
	if err := s.repo.Save(ctx, sess); err != nil {
		sess.ID = oldID
		return err
	}
	if err := s.repo.Delete(ctx, oldID); err != nil {
		s.logger.Warn("failed to drop rotated session", zap.Error(err))
	}
	return nil
}

// Authenticate stores the backend token and resolved identity, capping the
// session lifetime at the token's own expiry when the token carries one.
func (s *SessionService) Authenticate(sess *models.Session, token string, user *models.User) {
	sess.Token = token
	sess.User = user

	expires := s.now().UTC().Add(s.ttl)
	if exp, ok := tokenExpiry(token); ok && exp.Before(expires) {
		expires = exp.UTC()
	}
	sess.ExpiresAt = expires
}

// GuardName identifies a per-session operation that must not overlap with
// itself.
type GuardName string

const (
	GuardLogin    GuardName = "login"
	GuardBulk     GuardName = "bulk"
	GuardCheckout GuardName = "checkout"
)

// dispatchGuardTTL bounds guards held across many backend calls. The holder
// releases explicitly; the TTL only matters when a process dies mid-run.
const dispatchGuardTTL = 15 * time.Minute

var guardBusy = map[GuardName]*appErrors.Error{
	GuardLogin:    appErrors.ErrLoginInProgress,
	GuardBulk:     appErrors.ErrBulkInProgress,
	GuardCheckout: appErrors.ErrCheckoutInProgress,
}

// AcquireGuard makes the named operation non-reentrant per session. A
// concurrent attempt gets the guard's in-progress error. The returned release
// func must be called once the operation finishes.
func (s *SessionService) AcquireGuard(ctx context.Context, sess *models.Session, name GuardName) (func(), error) {
	ttl := s.guardTTL
	if name != GuardLogin && ttl < dispatchGuardTTL {
		ttl = dispatchGuardTTL
	}
	key := string(name) + ":" + sess.ID
	ok, err := s.repo.AcquireLock(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		if busy, known := guardBusy[name]; known {
			return nil, busy
		}
		return nil, appErrors.ErrConflict
	}
	return func() {
		// the request context may already be done
		if err := s.repo.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("failed to release session guard",
				zap.String("session_id", sess.ID),
				zap.String("guard", string(name)),
				zap.Error(err),
			)
		}
	}, nil
}

// AcquireLoginGuard makes credential submission non-reentrant per session.
func (s *SessionService) AcquireLoginGuard(ctx context.Context, sess *models.Session) (func(), error) {
	return s.AcquireGuard(ctx, sess, GuardLogin)
}

// tokenExpiry reads `exp` without verifying the signature. The backend stays
// the authority on validity; this only bounds how long the portal keeps it.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsSessionExpired reports whether err means the backend rejected the token.
func IsSessionExpired(err error) bool {
	return errors.Is(err, appErrors.ErrSessionExpired)
}
