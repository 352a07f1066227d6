package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/first-step/internal/dbtest"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"github.com/jimdaga/first-step/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createSubmission(t *testing.T, db *gorm.DB, userID uint) *models.ProfileSubmission {
	t.Helper()
	sub := &models.ProfileSubmission{UserID: userID, Status: models.SubmissionStatusPending}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func submitTask(t *testing.T, id uint) *asynq.Task {
	t.Helper()
	task, err := NewSubmitProfileTask(id)
	require.NoError(t, err)
	return task
}

func TestNewSubmitProfileTask(t *testing.T) {
	task := submitTask(t, 42)
	assert.Equal(t, TaskSubmitProfile, task.Type())

	var payload submitProfilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, uint(42), payload.SubmissionID)
}

func TestHandleSubmitProfile_InvalidPayloadSkipsRetry(t *testing.T) {
	db := dbtest.New(t)
	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient("", "", true))

	err := handler(context.Background(), asynq.NewTask(TaskSubmitProfile, []byte("not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleSubmitProfile_MissingSubmissionSkipsRetry(t *testing.T) {
	db := dbtest.New(t)
	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient("", "", true))

	err := handler(context.Background(), submitTask(t, 999))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleSubmitProfile_StubCompletes(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "stub@example.com")
	sub := createSubmission(t, db, user.ID)

	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient("", "", true))
	require.NoError(t, handler(context.Background(), submitTask(t, sub.ID)))

	var got models.ProfileSubmission
	require.NoError(t, db.First(&got, sub.ID).Error)
	assert.Equal(t, models.SubmissionStatusCompleted, got.Status)
	assert.Equal(t, "stub-"+itoa(sub.ID), got.ExternalRef)
	assert.NotNil(t, got.SubmittedAt)

	var snap onboarding.Snapshot
	require.NoError(t, json.Unmarshal(got.Snapshot, &snap))
	assert.Equal(t, user.ID, snap.UserID)
	assert.Equal(t, "stub@example.com", snap.Email)
}

func TestHandleSubmitProfile_DeliversToWebhook(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "live@example.com")
	sub := createSubmission(t, db, user.ID)

	var received webhook.SubmissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles", r.URL.Path)
		assert.Equal(t, "shh", r.Header.Get(webhook.SecretHeader))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"accepted":true,"reference_id":"match-7"}`))
	}))
	defer srv.Close()

	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient(srv.URL, "shh", false))
	require.NoError(t, handler(context.Background(), submitTask(t, sub.ID)))

	assert.Equal(t, sub.ID, received.SubmissionID)
	assert.Equal(t, user.ID, received.UserID)
	assert.Contains(t, string(received.Profile), "live@example.com")

	var got models.ProfileSubmission
	require.NoError(t, db.First(&got, sub.ID).Error)
	assert.Equal(t, models.SubmissionStatusCompleted, got.Status)
	assert.Equal(t, "match-7", got.ExternalRef)
}

func TestHandleSubmitProfile_WebhookFailureMarksFailed(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "down@example.com")
	sub := createSubmission(t, db, user.ID)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient(srv.URL, "", false))
	err := handler(context.Background(), submitTask(t, sub.ID))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "delivery failures should be retried")

	var got models.ProfileSubmission
	require.NoError(t, db.First(&got, sub.ID).Error)
	assert.Equal(t, models.SubmissionStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "503")
}

// failUpdates rejects every update whose new status satisfies fails.
func failUpdates(t *testing.T, db *gorm.DB, fails func(status interface{}) bool) {
	t.Helper()
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_status", func(tx *gorm.DB) {
		if m, ok := tx.Statement.Dest.(map[string]interface{}); ok && fails(m["status"]) {
			_ = tx.AddError(errors.New("database is read-only"))
		}
	}))
}

func TestHandleSubmitProfile_ProcessingWriteFailureRetries(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "ro@example.com")
	sub := createSubmission(t, db, user.ID)
	failUpdates(t, db, func(status interface{}) bool { return status == models.SubmissionStatusProcessing })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook should not be called when the submission cannot be claimed")
	}))
	defer srv.Close()

	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient(srv.URL, "", false))
	err := handler(context.Background(), submitTask(t, sub.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleSubmitProfile_LogsLostFailureStatus(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "lost@example.com")
	sub := createSubmission(t, db, user.ID)
	failUpdates(t, db, func(status interface{}) bool { return status == models.SubmissionStatusFailed })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handler := handleSubmitProfile(logger, db, onboarding.NewService(db, nil, nil), webhook.NewClient(srv.URL, "", false))
	require.Error(t, handler(context.Background(), submitTask(t, sub.ID)))

	assert.Contains(t, logs.String(), "Failed to mark submission failed")
	assert.Contains(t, logs.String(), "submission_id="+itoa(sub.ID))

	var got models.ProfileSubmission
	require.NoError(t, db.First(&got, sub.ID).Error)
	assert.Equal(t, models.SubmissionStatusProcessing, got.Status)
}

func TestHandleSubmitProfile_CompletedIsNoop(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "done@example.com")
	sub := &models.ProfileSubmission{UserID: user.ID, Status: models.SubmissionStatusCompleted, ExternalRef: "prior"}
	require.NoError(t, db.Create(sub).Error)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook should not be called for completed submissions")
	}))
	defer srv.Close()

	handler := handleSubmitProfile(discardLogger(), db, onboarding.NewService(db, nil, nil), webhook.NewClient(srv.URL, "", false))
	require.NoError(t, handler(context.Background(), submitTask(t, sub.ID)))

	var got models.ProfileSubmission
	require.NoError(t, db.First(&got, sub.ID).Error)
	assert.Equal(t, "prior", got.ExternalRef)
}

type recordingEnqueuer struct {
	ids []uint
}

func (r *recordingEnqueuer) EnqueueProfileSubmission(_ context.Context, id uint) error {
	r.ids = append(r.ids, id)
	return nil
}

func TestHandleSweepPending(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "sweep@example.com")

	stale := createSubmission(t, db, user.ID)
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-time.Hour)).Error)

	createSubmission(t, db, user.ID) // fresh, within grace period

	failed := &models.ProfileSubmission{UserID: user.ID, Status: models.SubmissionStatusFailed}
	require.NoError(t, db.Create(failed).Error)
	require.NoError(t, db.Model(failed).Update("created_at", time.Now().Add(-time.Hour)).Error)

	enq := &recordingEnqueuer{}
	handler := handleSweepPending(discardLogger(), db, enq)
	require.NoError(t, handler(context.Background(), asynq.NewTask(TaskSweepPendingSubmissions, nil)))

	assert.Equal(t, []uint{stale.ID}, enq.ids)
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
