package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Pending entries idle for claimIdle are claimed and handled again. The
// check runs every claimInterval and once when the consumer starts.
const (
	claimIdle     = 30 * time.Second
	claimInterval = 30 * time.Second
	claimBatch    = 50
)

// group is the consumer-group view of the stream that StepConsumer needs.
type group interface {
	readNew(ctx context.Context) ([]redis.XMessage, error)
	claimStale(ctx context.Context, minIdle time.Duration) ([]redis.XMessage, error)
	ack(ctx context.Context, id string) error
}

// StepConsumer reads step events from the onboarding stream as part of a
// consumer group.
type StepConsumer struct {
	rdb           *redis.Client
	group         group
	claimIdle     time.Duration
	claimInterval time.Duration
}

// NewStepConsumer connects to Redis and makes sure the consumer group exists.
func NewStepConsumer(redisURL, consumerName string) (*StepConsumer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	// Read timeout must exceed the XReadGroup Block duration (5s)
	// to avoid spurious i/o timeout errors on idle streams.
	opts.ReadTimeout = 10 * time.Second

	client := redis.NewClient(opts)

	err = client.XGroupCreateMkStream(context.Background(), StreamOnboardingSteps, GroupStepHistory, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		client.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &StepConsumer{
		rdb:           client,
		group:         &redisGroup{rdb: client, name: GroupStepHistory, consumer: consumerName},
		claimIdle:     claimIdle,
		claimInterval: claimInterval,
	}, nil
}

// Consume blocks, passing each event to handler until ctx is cancelled.
// Events whose handler fails stay pending and are claimed again once they
// have been idle for claimIdle. Events the handler rejects with
// ErrDropEvent are acknowledged.
func (c *StepConsumer) Consume(ctx context.Context, handler func(context.Context, StepEvent) error) error {
	var lastClaim time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if time.Since(lastClaim) >= c.claimInterval {
			lastClaim = time.Now()
			messages, err := c.group.claimStale(ctx, c.claimIdle)
			if err != nil && ctx.Err() == nil {
				slog.Error("Failed to claim pending messages", "error", err)
			}
			if len(messages) > 0 {
				slog.Info("Claimed pending step events", "count", len(messages))
			}
			c.handleAll(ctx, messages, handler)
		}

		messages, err := c.group.readNew(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Failed to read from stream", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		c.handleAll(ctx, messages, handler)
	}
}

func (c *StepConsumer) handleAll(ctx context.Context, messages []redis.XMessage, handler func(context.Context, StepEvent) error) {
	for _, message := range messages {
		c.handleMessage(ctx, message, handler)
	}
}

func (c *StepConsumer) handleMessage(ctx context.Context, message redis.XMessage, handler func(context.Context, StepEvent) error) {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		// Undecodable messages are acknowledged so they do not stay pending.
		slog.Error("Invalid message payload", "message_id", message.ID)
		c.ack(ctx, message.ID)
		return
	}

	var ev StepEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.Error("Failed to unmarshal step event", "error", err, "message_id", message.ID)
		c.ack(ctx, message.ID)
		return
	}

	if err := handler(ctx, ev); err != nil {
		if errors.Is(err, ErrDropEvent) {
			slog.Warn("Dropping step event", "error", err, "event_id", ev.EventID, "message_id", message.ID)
			c.ack(ctx, message.ID)
			return
		}
		slog.Error("Handler failed, event left pending", "error", err, "event_id", ev.EventID)
		return
	}

	c.ack(ctx, message.ID)
}

func (c *StepConsumer) ack(ctx context.Context, id string) {
	if err := c.group.ack(ctx, id); err != nil {
		slog.Error("Failed to ACK message", "error", err, "message_id", id)
	}
}

// Close closes the Redis client connection
func (c *StepConsumer) Close() error {
	return c.rdb.Close()
}

// redisGroup reads the onboarding stream as one consumer of a group.
type redisGroup struct {
	rdb      *redis.Client
	name     string
	consumer string
}

func (g *redisGroup) readNew(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := g.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    g.name,
		Consumer: g.consumer,
		Streams:  []string{StreamOnboardingSteps, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		// Blocking reads time out on idle streams.
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil
		}
		return nil, err
	}

	var out []redis.XMessage
	for _, stream := range streams {
		out = append(out, stream.Messages...)
	}
	return out, nil
}

// claimStale takes over entries left pending by any consumer of the group,
// including earlier runs of this one under another hostname.
func (g *redisGroup) claimStale(ctx context.Context, minIdle time.Duration) ([]redis.XMessage, error) {
	messages, _, err := g.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamOnboardingSteps,
		Group:    g.name,
		Consumer: g.consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    claimBatch,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return messages, err
}

func (g *redisGroup) ack(ctx context.Context, id string) error {
	return g.rdb.XAck(ctx, StreamOnboardingSteps, g.name, id).Err()
}

// StartStepConsumer runs a StepConsumer recording history into db in a
// background goroutine and returns a stop function.
func StartStepConsumer(redisURL string, db *gorm.DB) (stop func(), err error) {
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = "step-history"
	}
	consumer, err := NewStepConsumer(redisURL, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create step consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := consumer.Consume(ctx, RecordStepCompletion(db)); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Step consumer stopped with error", "error", err)
		}
	}()

	slog.Info("Step consumer started", "stream", StreamOnboardingSteps)

	return func() {
		cancel()
		consumer.Close()
	}, nil
}
