package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const emailJobColumns = `id, job_type, payload, status, attempts, last_error, created_at, processed_at`

const enqueueEmailJob = `
INSERT INTO email_jobs (job_type, payload)
VALUES ($1, $2)
RETURNING ` + emailJobColumns

type EnqueueEmailJobParams struct {
	JobType string
	Payload []byte
}

func (q *Queries) EnqueueEmailJob(ctx context.Context, arg EnqueueEmailJobParams) (EmailJob, error) {
	return scanEmailJob(q.db.QueryRow(ctx, enqueueEmailJob, arg.JobType, arg.Payload))
}

// claimNextEmailJob uses SKIP LOCKED so multiple workers never grab the same
// job.
const claimNextEmailJob = `
UPDATE email_jobs
SET status = 'processing', attempts = attempts + 1
WHERE id = (
	SELECT id FROM email_jobs
	WHERE status = 'pending'
	ORDER BY created_at
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING ` + emailJobColumns

func (q *Queries) ClaimNextEmailJob(ctx context.Context) (EmailJob, error) {
	return scanEmailJob(q.db.QueryRow(ctx, claimNextEmailJob))
}

const markEmailJobSent = `
UPDATE email_jobs
SET status = 'sent', processed_at = now()
WHERE id = $1
`

func (q *Queries) MarkEmailJobSent(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, markEmailJobSent, id)
	return err
}

const markEmailJobFailed = `
UPDATE email_jobs
SET status = 'failed', last_error = $2, processed_at = now()
WHERE id = $1
`

type MarkEmailJobFailedParams struct {
	ID        pgtype.UUID
	LastError string
}

func (q *Queries) MarkEmailJobFailed(ctx context.Context, arg MarkEmailJobFailedParams) error {
	_, err := q.db.Exec(ctx, markEmailJobFailed, arg.ID,
		pgtype.Text{String: arg.LastError, Valid: arg.LastError != ""})
	return err
}

type emailJobRow interface {
	Scan(dest ...interface{}) error
}

func scanEmailJob(row emailJobRow) (EmailJob, error) {
	var j EmailJob
	err := row.Scan(
		&j.ID,
		&j.JobType,
		&j.Payload,
		&j.Status,
		&j.Attempts,
		&j.LastError,
		&j.CreatedAt,
		&j.ProcessedAt,
	)
	return j, err
}
