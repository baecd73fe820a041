package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/dto"
	"github.com/noah-isme/coaching-portal/internal/models"
)

type paymentRepository interface {
	MockWebhook(ctx context.Context, payload models.PaymentWebhook) error
}

type checkoutGuard interface {
	AcquireGuard(ctx context.Context, sess *models.Session, name GuardName) (func(), error)
}

type batchFinder interface {
	FindBatch(ctx context.Context, sess *models.Session, id int64) (*dto.BatchRow, error)
}

// PaymentService runs the mocked checkout: it simulates provider latency and
// then posts the success webhook the real provider would send.
type PaymentService struct {
	repo      paymentRepository
	catalog   batchFinder
	sessions  checkoutGuard
	cache     *CacheService
	delay     time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	sleep     func(time.Duration)
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService. A nil sessions lets payments
// from the same session overlap.
func NewPaymentService(repo paymentRepository, catalog batchFinder, sessions checkoutGuard, cache *CacheService, delay time.Duration, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if delay < 0 {
		delay = 0
	}
	return &PaymentService{
		repo:      repo,
		catalog:   catalog,
		sessions:  sessions,
		cache:     cache,
		delay:     delay,
		validator: validate,
		logger:    logger,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Checkout resolves what the buyer is about to pay for.
func (s *PaymentService) Checkout(ctx context.Context, sess *models.Session, req models.CheckoutRequest) (*dto.CheckoutDetails, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	batch, err := s.catalog.FindBatch(ctx, sess, req.BatchID)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutDetails{
		BatchID:     batch.ID,
		CourseTitle: batch.CourseTitle,
		StartDate:   batch.StartDate,
		Timings:     batch.Timings,
		Amount:      batch.Price,
		Name:        req.Name,
		Email:       req.Email,
	}, nil
}

// Pay waits out the simulated processing delay and confirms the payment. The
// wait and the webhook ignore client disconnects: once started, a payment
// either completes or fails on its own. A second submit from the same
// session while one is processing gets ErrCheckoutInProgress.
func (s *PaymentService) Pay(ctx context.Context, sess *models.Session, req models.CheckoutRequest) (*models.PaymentWebhook, error) {
	details, err := s.Checkout(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		release, err := s.sessions.AcquireGuard(ctx, sess, GuardCheckout)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	s.sleep(s.delay)

	payload := models.PaymentWebhook{
		Status:  "success",
		OrderID: fmt.Sprintf("ORDER_%d", s.now().UnixMilli()),
		Email:   details.Email,
		Name:    details.Name,
		Amount:  details.Amount,
	}
	if err := s.repo.MockWebhook(context.WithoutCancel(ctx), payload); err != nil {
		s.logger.Warn("mock payment webhook failed", zap.String("order_id", payload.OrderID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("mock payment confirmed",
		zap.String("order_id", payload.OrderID),
		zap.Int64("batch_id", details.BatchID),
		zap.Float64("amount", payload.Amount),
	)
	s.cache.InvalidateCollections(context.WithoutCancel(ctx), CollectionLeads, CollectionStudents, CollectionStats, "enrolled")
	return &payload, nil
}
