package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/helpers/utils"
)

// Job lifecycle states.
const (
	JobStatusQueued  = "queued"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// ErrJobNotFound is returned when a job ID is unknown or expired.
var ErrJobNotFound = errors.New("job not found")

// BatchJob is the queue payload for an asynchronous parse batch.
type BatchJob struct {
	ID        string    `json:"id"`
	Addresses []string  `json:"addresses"`
	CreatedAt time.Time `json:"created_at"`
}

// JobStatus is the progress document stored alongside each job.
type JobStatus struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobService queues parse batches on a Redis list and lets the worker
// process pick them up with BLPOP. Status and results live in Redis keys
// with the configured TTL.
type JobService struct {
	client    *redis.Client
	addresses *AddressService
	logger    *zap.Logger
	queueKey  string
	resultTTL time.Duration
}

func NewJobService(client *redis.Client, addresses *AddressService, logger *zap.Logger) *JobService {
	return &JobService{
		client:    client,
		addresses: addresses,
		logger:    logger,
		queueKey:  config.C.Jobs.QueueKey,
		resultTTL: config.C.JobResultTTL(),
	}
}

// Enqueue pushes a batch onto the queue and records its initial status.
func (js *JobService) Enqueue(ctx context.Context, addresses []string) (string, error) {
	if len(addresses) == 0 {
		return "", errors.New("empty batch")
	}
	if len(addresses) > config.C.Batch.MaxAsync {
		return "", fmt.Errorf("batch of %d exceeds limit %d", len(addresses), config.C.Batch.MaxAsync)
	}

	job := BatchJob{
		ID:        utils.GenerateUUID(),
		Addresses: addresses,
		CreatedAt: time.Now(),
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	if err := js.setStatus(ctx, &JobStatus{
		JobID:     job.ID,
		Status:    JobStatusQueued,
		Total:     len(addresses),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.CreatedAt,
	}); err != nil {
		return "", err
	}

	if err := js.client.RPush(ctx, js.queueKey, payload).Err(); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}

	js.logger.Info("batch job queued",
		zap.String("job_id", job.ID),
		zap.Int("addresses", len(addresses)))
	return job.ID, nil
}

// Dequeue blocks up to timeout for the next job. A nil job with nil error
// means the wait timed out.
func (js *JobService) Dequeue(ctx context.Context, timeout time.Duration) (*BatchJob, error) {
	vals, err := js.client.BLPop(ctx, timeout, js.queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}

	var job BatchJob
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Process parses every address in the job, updating progress as it goes,
// and stores the results under the job's result key.
func (js *JobService) Process(ctx context.Context, job *BatchJob) error {
	status := &JobStatus{
		JobID:     job.ID,
		Status:    JobStatusRunning,
		Total:     len(job.Addresses),
		CreatedAt: job.CreatedAt,
		UpdatedAt: time.Now(),
	}
	if err := js.setStatus(ctx, status); err != nil {
		return err
	}

	results := make([]*models.AddressResult, 0, len(job.Addresses))
	for i, address := range job.Addresses {
		result, err := js.addresses.ParseAddress(ctx, address)
		if err != nil {
			result = &models.AddressResult{
				Raw:              address,
				GazetteerVersion: js.addresses.GazetteerVersion(),
			}
		}
		results = append(results, result)

		// Write progress every 100 addresses to keep Redis traffic low.
		if (i+1)%100 == 0 {
			status.Processed = i + 1
			status.UpdatedAt = time.Now()
			if err := js.setStatus(ctx, status); err != nil {
				js.logger.Warn("progress update failed", zap.Error(err), zap.String("job_id", job.ID))
			}
		}
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return js.fail(ctx, status, fmt.Errorf("marshal results: %w", err))
	}
	if err := js.client.Set(ctx, js.resultKey(job.ID), payload, js.resultTTL).Err(); err != nil {
		return js.fail(ctx, status, fmt.Errorf("store results: %w", err))
	}

	status.Status = JobStatusDone
	status.Processed = len(job.Addresses)
	status.UpdatedAt = time.Now()
	if err := js.setStatus(ctx, status); err != nil {
		return err
	}

	js.logger.Info("batch job done",
		zap.String("job_id", job.ID),
		zap.Int("addresses", len(job.Addresses)))
	return nil
}

// Status fetches the progress document for a job.
func (js *JobService) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	val, err := js.client.Get(ctx, js.statusKey(jobID)).Result()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job status: %w", err)
	}

	var status JobStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("unmarshal job status: %w", err)
	}
	return &status, nil
}

// Results fetches the stored results of a finished job.
func (js *JobService) Results(ctx context.Context, jobID string) ([]*models.AddressResult, error) {
	val, err := js.client.Get(ctx, js.resultKey(jobID)).Result()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job results: %w", err)
	}

	var results []*models.AddressResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		return nil, fmt.Errorf("unmarshal job results: %w", err)
	}
	return results, nil
}

// Run consumes jobs until ctx is cancelled.
func (js *JobService) Run(ctx context.Context) error {
	poll := time.Duration(config.C.Jobs.PollSeconds) * time.Second

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, err := js.Dequeue(ctx, poll)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			js.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := js.Process(ctx, job); err != nil {
			js.logger.Error("job failed", zap.Error(err), zap.String("job_id", job.ID))
		}
	}
}

func (js *JobService) fail(ctx context.Context, status *JobStatus, cause error) error {
	status.Status = JobStatusFailed
	status.Error = cause.Error()
	status.UpdatedAt = time.Now()
	if err := js.setStatus(ctx, status); err != nil {
		js.logger.Warn("failure status update failed", zap.Error(err), zap.String("job_id", status.JobID))
	}
	return cause
}

func (js *JobService) setStatus(ctx context.Context, status *JobStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := js.client.Set(ctx, js.statusKey(status.JobID), payload, js.resultTTL).Err(); err != nil {
		return fmt.Errorf("store status: %w", err)
	}
	return nil
}

func (js *JobService) statusKey(jobID string) string { return "addr:job:" + jobID + ":status" }
func (js *JobService) resultKey(jobID string) string { return "addr:job:" + jobID + ":results" }
