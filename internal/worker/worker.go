package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/first-step/internal/config"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"github.com/jimdaga/first-step/internal/webhook"
	"gorm.io/gorm"
)

// pendingGracePeriod is how long a fresh submission may sit pending before
// the sweep re-enqueues it.
const pendingGracePeriod = 2 * time.Minute

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, db *gorm.DB, webhookClient *webhook.Client) error {
	srv, mux, client, err := newServer(cfg, db, webhookClient)
	if err != nil {
		return err
	}
	defer client.Close()

	// Run blocks and handles its own signal interception
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop function.
// Use this for embedded mode so the caller can coordinate shutdown.
func Start(cfg *config.Config, db *gorm.DB, webhookClient *webhook.Client) (stop func(), err error) {
	srv, mux, client, err := newServer(cfg, db, webhookClient)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() {
		srv.Shutdown()
		client.Close()
	}, nil
}

func newServer(cfg *config.Config, db *gorm.DB, webhookClient *webhook.Client) (*asynq.Server, *asynq.ServeMux, *TaskClient, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	client, err := NewTaskClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	profiles := onboarding.NewService(db, nil, nil)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSubmitProfile, handleSubmitProfile(logger, db, profiles, webhookClient))
	mux.HandleFunc(TaskSweepPendingSubmissions, handleSweepPending(logger, db, client))

	logger.Info("Worker starting", "concurrency", 5)
	return srv, mux, client, nil
}

// handleSubmitProfile snapshots the user's onboarding answers, stores the
// snapshot on the submission and delivers it to the matching webhook.
func handleSubmitProfile(logger *slog.Logger, db *gorm.DB, profiles *onboarding.Service, webhookClient *webhook.Client) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload submitProfilePayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		var submission models.ProfileSubmission
		if err := db.WithContext(ctx).First(&submission, payload.SubmissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Error("Profile submission not found", "submission_id", payload.SubmissionID)
				return fmt.Errorf("submission not found: %w", asynq.SkipRetry)
			}
			return fmt.Errorf("failed to fetch submission: %w", err)
		}

		if submission.Status == models.SubmissionStatusCompleted {
			logger.Info("Profile submission already completed", "submission_id", submission.ID)
			return nil
		}

		logger.Info("Processing profile:submit task",
			"submission_id", submission.ID,
			"user_id", submission.UserID,
		)

		if err := db.WithContext(ctx).Model(&submission).Update("status", models.SubmissionStatusProcessing).Error; err != nil {
			return fmt.Errorf("failed to mark submission processing: %w", err)
		}

		fail := func(msg string) {
			if err := db.WithContext(ctx).Model(&submission).Updates(map[string]interface{}{
				"status":        models.SubmissionStatusFailed,
				"error_message": msg,
			}).Error; err != nil {
				logger.Error("Failed to mark submission failed",
					"submission_id", submission.ID,
					"reason", msg,
					"error", err,
				)
			}
		}

		snapshot, err := profiles.Snapshot(ctx, submission.UserID)
		if errors.Is(err, onboarding.ErrUserNotFound) {
			fail("user no longer exists")
			return fmt.Errorf("user %d not found: %w", submission.UserID, asynq.SkipRetry)
		}
		if err != nil {
			fail(err.Error())
			return fmt.Errorf("failed to build snapshot: %w", err)
		}

		snapshotJSON, err := json.Marshal(snapshot)
		if err != nil {
			fail("failed to marshal snapshot")
			return fmt.Errorf("failed to marshal snapshot: %w", asynq.SkipRetry)
		}
		if err := db.WithContext(ctx).Model(&submission).Update("snapshot", snapshotJSON).Error; err != nil {
			return fmt.Errorf("failed to store snapshot: %w", err)
		}

		now := time.Now()
		receipt, err := webhookClient.SubmitProfile(ctx, webhook.SubmissionRequest{
			SubmissionID: submission.ID,
			UserID:       submission.UserID,
			SubmittedAt:  now.UTC(),
			Profile:      snapshotJSON,
		})
		if err != nil {
			fail(err.Error())
			logger.Error("Webhook delivery failed",
				"submission_id", submission.ID,
				"error", err.Error(),
			)
			return fmt.Errorf("webhook delivery failed: %w", err)
		}

		if err := db.WithContext(ctx).Model(&submission).Updates(map[string]interface{}{
			"status":        models.SubmissionStatusCompleted,
			"external_ref":  receipt.ReferenceID,
			"submitted_at":  now,
			"error_message": "",
		}).Error; err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}

		logger.Info("Profile submission completed",
			"submission_id", submission.ID,
			"reference_id", receipt.ReferenceID,
		)
		return nil
	}
}

type submissionEnqueuer interface {
	EnqueueProfileSubmission(ctx context.Context, submissionID uint) error
}

// handleSweepPending re-enqueues submissions that have been pending longer
// than the grace period, such as those saved while Redis was unreachable.
func handleSweepPending(logger *slog.Logger, db *gorm.DB, enqueuer submissionEnqueuer) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var ids []uint
		if err := db.WithContext(ctx).
			Model(&models.ProfileSubmission{}).
			Where("status = ? AND created_at < ?", models.SubmissionStatusPending, time.Now().Add(-pendingGracePeriod)).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list pending submissions: %w", err)
		}

		var enqueued int
		for _, id := range ids {
			if err := enqueuer.EnqueueProfileSubmission(ctx, id); err != nil {
				logger.Error("Failed to re-enqueue submission", "submission_id", id, "error", err)
				continue
			}
			enqueued++
		}

		logger.Info("Pending submission sweep finished", "pending", len(ids), "enqueued", enqueued)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
