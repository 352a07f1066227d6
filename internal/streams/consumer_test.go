package streams

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memGroup keeps a consumer group's pending list in memory.
type memGroup struct {
	mu       sync.Mutex
	incoming []redis.XMessage
	pending  []redis.XMessage
	acked    []string
}

func (g *memGroup) readNew(ctx context.Context) ([]redis.XMessage, error) {
	g.mu.Lock()
	msgs := g.incoming
	g.incoming = nil
	g.pending = append(g.pending, msgs...)
	g.mu.Unlock()

	if len(msgs) == 0 {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Millisecond):
		}
	}
	return msgs, nil
}

func (g *memGroup) claimStale(_ context.Context, _ time.Duration) ([]redis.XMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]redis.XMessage(nil), g.pending...), nil
}

func (g *memGroup) ack(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, m := range g.pending {
		if m.ID == id {
			g.pending = append(g.pending[:i], g.pending[i+1:]...)
			break
		}
	}
	g.acked = append(g.acked, id)
	return nil
}

func eventMessage(t *testing.T, id string, ev StepEvent) redis.XMessage {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return redis.XMessage{ID: id, Values: map[string]interface{}{"payload": string(payload)}}
}

func runConsumer(t *testing.T, g *memGroup, handler func(context.Context, StepEvent) error) {
	t.Helper()
	c := &StepConsumer{group: g}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.Consume(ctx, func(ctx context.Context, ev StepEvent) error {
			err := handler(ctx, ev)
			if err == nil || errors.Is(err, ErrDropEvent) {
				cancel()
			}
			return err
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumeRedeliversFailedEvents(t *testing.T) {
	ev := StepEvent{EventID: "evt-1", UserID: 7, Step: "profile", OnboardingStep: 5}
	g := &memGroup{incoming: []redis.XMessage{eventMessage(t, "1-0", ev)}}

	var calls []StepEvent
	runConsumer(t, g, func(_ context.Context, got StepEvent) error {
		calls = append(calls, got)
		if len(calls) == 1 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.Len(t, calls, 2, "the failed event is claimed and handled again")
	assert.Equal(t, calls[0], calls[1])
	assert.Equal(t, []string{"1-0"}, g.acked)
	assert.Empty(t, g.pending)
}

func TestConsumeAcksDroppedEvents(t *testing.T) {
	g := &memGroup{incoming: []redis.XMessage{
		{ID: "1-0", Values: map[string]interface{}{"payload": 42}},
		eventMessage(t, "2-0", StepEvent{Step: "profile"}),
	}}

	calls := 0
	runConsumer(t, g, func(ctx context.Context, ev StepEvent) error {
		calls++
		return RecordStepCompletion(nil)(ctx, ev)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"1-0", "2-0"}, g.acked)
	assert.Empty(t, g.pending)
}
