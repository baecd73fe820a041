package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/internal/repository"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type fakePaymentRepo struct {
	payload *models.PaymentWebhook
	ctxErr  error
	err     error
}

func (f *fakePaymentRepo) MockWebhook(ctx context.Context, payload models.PaymentWebhook) error {
	f.payload = &payload
	f.ctxErr = ctx.Err()
	return f.err
}

func newPaymentFixture(repo *fakePaymentRepo) (*PaymentService, *[]time.Duration) {
	catalog := NewCatalogService(sampleCatalog(), nil, nil, nil, nil)
	svc := NewPaymentService(repo, catalog, nil, nil, 2*time.Second, nil, nil)
	slept := &[]time.Duration{}
	svc.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	svc.now = func() time.Time { return time.UnixMilli(1717000000123) }
	return svc, slept
}

var checkout = models.CheckoutRequest{BatchID: 10, Name: "Amy", Email: "amy@example.com"}

func TestCheckoutResolvesPrice(t *testing.T) {
	svc, _ := newPaymentFixture(&fakePaymentRepo{})

	details, err := svc.Checkout(context.Background(), &models.Session{}, checkout)
	require.NoError(t, err)
	assert.Equal(t, "Data Science", details.CourseTitle)
	assert.Equal(t, 9999.0, details.Amount)
}

func TestPayPostsWebhookAfterDelay(t *testing.T) {
	repo := &fakePaymentRepo{}
	svc, slept := newPaymentFixture(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload, err := svc.Pay(ctx, &models.Session{}, checkout)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
	assert.Equal(t, &models.PaymentWebhook{
		Status:  "success",
		OrderID: "ORDER_1717000000123",
		Email:   "amy@example.com",
		Name:    "Amy",
		Amount:  9999,
	}, repo.payload)
	assert.Equal(t, repo.payload, payload)
	assert.NoError(t, repo.ctxErr, "the webhook does not inherit client cancellation")
}

func TestPayFailures(t *testing.T) {
	repo := &fakePaymentRepo{err: appErrors.ErrUpstream}
	svc, _ := newPaymentFixture(repo)

	_, err := svc.Pay(context.Background(), &models.Session{}, checkout)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))

	repo.payload = nil
	_, err = svc.Pay(context.Background(), &models.Session{}, models.CheckoutRequest{BatchID: 10, Name: "Amy", Email: "nope"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.payload)

	_, err = svc.Pay(context.Background(), &models.Session{}, models.CheckoutRequest{BatchID: 77, Name: "Amy", Email: "amy@example.com"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestPayRejectsSecondSubmitWhileProcessing(t *testing.T) {
	repo := &fakePaymentRepo{}
	svc, _ := newPaymentFixture(repo)
	svc.sessions = NewSessionService(repository.NewMemorySessionRepository(), time.Hour, time.Minute, nil)

	entered := make(chan struct{})
	unblock := make(chan struct{})
	svc.sleep = func(time.Duration) {
		close(entered)
		<-unblock
	}

	sess := &models.Session{ID: "buyer"}
	done := make(chan error, 1)
	go func() {
		_, err := svc.Pay(context.Background(), sess, checkout)
		done <- err
	}()
	<-entered

	_, err := svc.Pay(context.Background(), sess, checkout)
	assert.True(t, errors.Is(err, appErrors.ErrCheckoutInProgress))

	close(unblock)
	require.NoError(t, <-done)
	assert.NotNil(t, repo.payload)

	// the guard is released once the first payment finishes
	svc.sleep = func(time.Duration) {}
	_, err = svc.Pay(context.Background(), sess, checkout)
	assert.NoError(t, err)
}

func TestPayInvalidatesLeadsAndDirectory(t *testing.T) {
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	catalog := NewCatalogService(sampleCatalog(), nil, nil, nil, nil)
	svc := NewPaymentService(&fakePaymentRepo{}, catalog, nil, cache, 0, nil, nil)
	svc.sleep = func(time.Duration) {}
	ctx := context.Background()

	for _, key := range []string{CollectionLeads, CollectionStudents, CollectionStats, CollectionCourses} {
		require.NoError(t, cache.Set(ctx, key, 1, 0))
	}

	_, err := svc.Pay(ctx, &models.Session{}, checkout)
	require.NoError(t, err)

	assert.False(t, cacheRepo.has(CollectionLeads))
	assert.False(t, cacheRepo.has(CollectionStudents))
	assert.False(t, cacheRepo.has(CollectionStats))
	assert.True(t, cacheRepo.has(CollectionCourses))
}
