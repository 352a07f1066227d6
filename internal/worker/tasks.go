package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskSubmitProfile           = "profile:submit"
	TaskSweepPendingSubmissions = "profile:sweep-pending"
)

type submitProfilePayload struct {
	SubmissionID uint `json:"submission_id"`
}

// TaskClient enqueues worker tasks.
type TaskClient struct {
	client *asynq.Client
}

// NewTaskClient connects an asynq client to redisURL.
func NewTaskClient(redisURL string) (*TaskClient, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &TaskClient{client: asynq.NewClient(opt)}, nil
}

// Close closes the Asynq client connection gracefully.
func (c *TaskClient) Close() error {
	return c.client.Close()
}

// EnqueueProfileSubmission schedules delivery of a submission. The task
// retries up to 3 times with a 2-minute timeout and is kept for 24 hours.
func (c *TaskClient) EnqueueProfileSubmission(ctx context.Context, submissionID uint) error {
	task, err := NewSubmitProfileTask(submissionID)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Already queued or retained; the existing task covers it.
		return nil
	}
	return err
}

// NewSubmitProfileTask builds the profile:submit task for submissionID.
func NewSubmitProfileTask(submissionID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(submitProfilePayload{SubmissionID: submissionID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskSubmitProfile,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.TaskID(fmt.Sprintf("profile-submission-%d", submissionID)),
	), nil
}
