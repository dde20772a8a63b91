// Package worker drains the email outbox. Orders enqueue notification jobs
// inside their own transactions; this worker claims committed jobs and sends
// them, so email delivery can never fail an order.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dunelark/storefront/internal/email"
	"github.com/dunelark/storefront/internal/jobs"
	"github.com/dunelark/storefront/internal/repository"
)

// Config holds worker configuration.
type Config struct {
	// WorkerID uniquely identifies this worker instance in logs.
	WorkerID string

	// PollInterval is how often to check for new jobs.
	PollInterval time.Duration

	// MaxConcurrency is the maximum number of jobs to process concurrently.
	MaxConcurrency int
}

// Worker processes outbox email jobs.
type Worker struct {
	config Config
	store  repository.Store
	emails *email.Service
	logger *slog.Logger
}

// NewWorker creates a new outbox worker.
func NewWorker(store repository.Store, emails *email.Service, config Config, logger *slog.Logger) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 5
	}

	return &Worker{
		config: config,
		store:  store,
		emails: emails,
		logger: logger,
	}
}

// Start begins processing jobs until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("outbox worker starting",
		"worker_id", w.config.WorkerID,
		"poll_interval", w.config.PollInterval,
		"max_concurrency", w.config.MaxConcurrency,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.config.MaxConcurrency)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker shutting down", "worker_id", w.config.WorkerID)
			return ctx.Err()

		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				go func() {
					defer func() { <-sem }()
					w.claimAndProcess(ctx)
				}()
			default:
				// At max concurrency, skip this poll.
			}
		}
	}
}

// claimAndProcess claims and processes a single job. The claim uses SKIP
// LOCKED, so concurrent workers never double-send.
func (w *Worker) claimAndProcess(ctx context.Context) {
	job, err := w.store.ClaimNextEmailJob(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			w.logger.Error("failed to claim email job", "error", err)
		}
		return
	}

	w.logger.Info("processing email job",
		"job_id", uuid.UUID(job.ID.Bytes),
		"job_type", job.JobType,
		"attempts", job.Attempts,
	)

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Error("email job failed",
			"job_id", uuid.UUID(job.ID.Bytes),
			"job_type", job.JobType,
			"error", err,
		)
		if markErr := w.store.MarkEmailJobFailed(ctx, repository.MarkEmailJobFailedParams{
			ID:        job.ID,
			LastError: err.Error(),
		}); markErr != nil {
			w.logger.Error("failed to mark email job failed", "job_id", uuid.UUID(job.ID.Bytes), "error", markErr)
		}
		return
	}

	if err := w.store.MarkEmailJobSent(ctx, job.ID); err != nil {
		w.logger.Error("failed to mark email job sent", "job_id", uuid.UUID(job.ID.Bytes), "error", err)
	}
}

func (w *Worker) processJob(ctx context.Context, job repository.EmailJob) error {
	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch job.JobType {
	case jobs.JobTypeOrderConfirmation:
		var payload jobs.OrderConfirmationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal order confirmation payload: %w", err)
		}
		return w.emails.SendOrderConfirmation(jobCtx, email.OrderConfirmationEmail{
			Email:         payload.Email,
			OrderNumber:   payload.OrderNumber,
			OrderDate:     payload.OrderDate,
			SubtotalCents: payload.SubtotalCents,
			ShippingCents: payload.ShippingCents,
			DiscountCents: payload.DiscountCents,
			TotalCents:    payload.TotalCents,
		})

	case jobs.JobTypeOrderStatusUpdate:
		var payload jobs.OrderStatusUpdatePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal order status payload: %w", err)
		}
		return w.emails.SendOrderStatusUpdate(jobCtx, email.OrderStatusUpdateEmail{
			Email:       payload.Email,
			OrderNumber: payload.OrderNumber,
			NewStatus:   payload.NewStatus,
			Reason:      payload.Reason,
		})

	case jobs.JobTypeInvoiceIssued:
		var payload jobs.InvoiceIssuedPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal invoice payload: %w", err)
		}
		return w.emails.SendInvoice(jobCtx, email.InvoiceEmail{
			Email:         payload.Email,
			OrderNumber:   payload.OrderNumber,
			InvoiceNumber: payload.InvoiceNumber,
			TotalCents:    payload.TotalCents,
			IssuedAt:      payload.IssuedAt,
		})

	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
