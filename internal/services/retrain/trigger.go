package retrain

import (
	"context"
	"fmt"
	"time"

	domsvc "AstroPulse/internal/domain/service"
	applogger "AstroPulse/pkg/logger"
	"AstroPulse/pkg/queue"
)

// JobType is the queue message type for retraining requests.
const JobType = "retrain_model"

// JobPayload is the queued retraining request.
type JobPayload struct {
	Symbol string    `json:"symbol"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// QueueTrigger implements service.RetrainTrigger by enqueueing the job onto
// the Redis queue. The push is fast and synchronous; the training work
// itself happens in a queue worker, detached from the caller.
type QueueTrigger struct {
	q queue.QueueService
}

func NewQueueTrigger(q queue.QueueService) *QueueTrigger {
	return &QueueTrigger{q: q}
}

func (t *QueueTrigger) TriggerRetrain(ctx context.Context, symbol string, from, to time.Time) error {
	if err := t.q.PublishMessage(ctx, JobType, JobPayload{Symbol: symbol, From: from, To: to}); err != nil {
		return fmt.Errorf("enqueue retrain: %w", err)
	}
	return nil
}

var _ domsvc.RetrainTrigger = (*QueueTrigger)(nil)

// Job is the queue worker side: it posts the retraining request to the
// Python ML sidecar.
type Job struct {
	client *HTTPClient
	l      *applogger.Logger
}

func NewJob(client *HTTPClient, l *applogger.Logger) *Job {
	return &Job{client: client, l: l}
}

func (j *Job) Name() string { return "retrain-model" }
func (j *Job) Type() string { return JobType }

func (j *Job) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[JobPayload](payload)
	if err != nil {
		return fmt.Errorf("retrain payload: %w", err)
	}

	jobID, err := j.client.Retrain(ctx, p.Symbol, p.From, p.To)
	if err != nil {
		return err
	}
	j.l.Info("retrain job accepted",
		applogger.String("symbol", p.Symbol),
		applogger.String("job_id", jobID),
	)
	return nil
}

var _ queue.Job = (*Job)(nil)
