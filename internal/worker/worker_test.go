package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunelark/storefront/internal/email"
	"github.com/dunelark/storefront/internal/jobs"
	"github.com/dunelark/storefront/internal/repository"
)

// stubStore overrides only the outbox queries the worker touches. The embedded
// interface panics on anything else, which is exactly what we want.
type stubStore struct {
	repository.Store
	claim      func(ctx context.Context) (repository.EmailJob, error)
	markSent   func(ctx context.Context, id pgtype.UUID) error
	markFailed func(ctx context.Context, arg repository.MarkEmailJobFailedParams) error
}

func (s *stubStore) ClaimNextEmailJob(ctx context.Context) (repository.EmailJob, error) {
	return s.claim(ctx)
}

func (s *stubStore) MarkEmailJobSent(ctx context.Context, id pgtype.UUID) error {
	return s.markSent(ctx, id)
}

func (s *stubStore) MarkEmailJobFailed(ctx context.Context, arg repository.MarkEmailJobFailedParams) error {
	return s.markFailed(ctx, arg)
}

func testWorker(store repository.Store, sender *email.MockSender) *Worker {
	emails := email.NewService(sender, "orders@example.com", "Dunelark")
	return NewWorker(store, emails, Config{}, slog.New(slog.DiscardHandler))
}

func confirmationJob(t *testing.T) repository.EmailJob {
	t.Helper()
	payload, err := json.Marshal(jobs.OrderConfirmationPayload{
		OrderID:       uuid.New(),
		Email:         "casey@example.com",
		OrderNumber:   "ORD-20250615-ABCDEF",
		OrderDate:     time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		SubtotalCents: 2500,
		ShippingCents: 1000,
		TotalCents:    3500,
	})
	require.NoError(t, err)
	return repository.EmailJob{
		ID:      pgtype.UUID{Bytes: uuid.New(), Valid: true},
		JobType: jobs.JobTypeOrderConfirmation,
		Payload: payload,
	}
}

func TestClaimAndProcess_SendsAndMarksSent(t *testing.T) {
	job := confirmationJob(t)

	var sentID pgtype.UUID
	store := &stubStore{
		claim: func(_ context.Context) (repository.EmailJob, error) {
			return job, nil
		},
		markSent: func(_ context.Context, id pgtype.UUID) error {
			sentID = id
			return nil
		},
	}
	sender := &email.MockSender{}
	w := testWorker(store, sender)

	w.claimAndProcess(context.Background())

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, []string{"casey@example.com"}, sender.Sent[0].To)
	assert.Equal(t, job.ID, sentID)
}

func TestClaimAndProcess_FailureRecordsError(t *testing.T) {
	job := confirmationJob(t)

	var failed repository.MarkEmailJobFailedParams
	store := &stubStore{
		claim: func(_ context.Context) (repository.EmailJob, error) {
			return job, nil
		},
		markFailed: func(_ context.Context, arg repository.MarkEmailJobFailedParams) error {
			failed = arg
			return nil
		},
	}
	sender := &email.MockSender{
		SendFunc: func(_ context.Context, _ *email.Email) (string, error) {
			return "", assert.AnError
		},
	}
	w := testWorker(store, sender)

	w.claimAndProcess(context.Background())

	assert.Equal(t, job.ID, failed.ID)
	assert.NotEmpty(t, failed.LastError)
}

func TestClaimAndProcess_EmptyOutboxIsQuiet(t *testing.T) {
	store := &stubStore{
		claim: func(_ context.Context) (repository.EmailJob, error) {
			return repository.EmailJob{}, pgx.ErrNoRows
		},
	}
	sender := &email.MockSender{}
	w := testWorker(store, sender)

	w.claimAndProcess(context.Background())
	assert.Empty(t, sender.Sent)
}

func TestProcessJob_DispatchesByType(t *testing.T) {
	sender := &email.MockSender{}
	w := testWorker(&stubStore{}, sender)

	statusPayload, err := json.Marshal(jobs.OrderStatusUpdatePayload{
		OrderID:     uuid.New(),
		Email:       "casey@example.com",
		OrderNumber: "ORD-20250615-ABCDEF",
		NewStatus:   "shipped",
	})
	require.NoError(t, err)
	err = w.processJob(context.Background(), repository.EmailJob{
		JobType: jobs.JobTypeOrderStatusUpdate,
		Payload: statusPayload,
	})
	require.NoError(t, err)

	invoicePayload, err := json.Marshal(jobs.InvoiceIssuedPayload{
		OrderID:       uuid.New(),
		Email:         "casey@example.com",
		OrderNumber:   "ORD-20250615-ABCDEF",
		InvoiceNumber: "INV-20250615-Q7XR2M",
		TotalCents:    3500,
		IssuedAt:      time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	err = w.processJob(context.Background(), repository.EmailJob{
		JobType: jobs.JobTypeInvoiceIssued,
		Payload: invoicePayload,
	})
	require.NoError(t, err)

	require.Len(t, sender.Sent, 2)
	assert.Equal(t, "Order Update - ORD-20250615-ABCDEF", sender.Sent[0].Subject)
	assert.Equal(t, "Invoice INV-20250615-Q7XR2M - ORD-20250615-ABCDEF", sender.Sent[1].Subject)
}

func TestProcessJob_UnknownType(t *testing.T) {
	w := testWorker(&stubStore{}, &email.MockSender{})

	err := w.processJob(context.Background(), repository.EmailJob{JobType: "email:unknown"})
	assert.Error(t, err)
}

func TestWorkerDefaults(t *testing.T) {
	w := testWorker(&stubStore{}, &email.MockSender{})
	assert.NotEmpty(t, w.config.WorkerID)
	assert.Equal(t, 1*time.Second, w.config.PollInterval)
	assert.Equal(t, 5, w.config.MaxConcurrency)
}
