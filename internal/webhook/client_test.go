package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() SubmissionRequest {
	return SubmissionRequest{
		SubmissionID: 7,
		UserID:       3,
		SubmittedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Profile:      json.RawMessage(`{"email":"a@example.com"}`),
	}
}

func TestSubmitProfileStubMode(t *testing.T) {
	receipt, err := NewClient("", "", true).SubmitProfile(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, receipt.Accepted)
	assert.Equal(t, "stub-7", receipt.ReferenceID)
}

func TestSubmitProfileDelivers(t *testing.T) {
	var got SubmissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles", r.URL.Path)
		assert.Equal(t, "s3cret", r.Header.Get(SecretHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"accepted":true,"reference_id":"match-42"}`))
	}))
	defer srv.Close()

	receipt, err := NewClient(srv.URL, "s3cret", false).SubmitProfile(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "match-42", receipt.ReferenceID)
	assert.Equal(t, uint(7), got.SubmissionID)
	assert.JSONEq(t, `{"email":"a@example.com"}`, string(got.Profile))
}

func TestSubmitProfileErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"rejected", http.StatusOK, `{"accepted":false}`},
		{"bad body", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", false).SubmitProfile(context.Background(), testRequest())
			assert.Error(t, err)
		})
	}
}
