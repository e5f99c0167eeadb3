// Package events publishes submission notifications to a Redis stream for
// downstream consumers (leaderboards, analytics).
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen bounds the stream; trimming is approximate.
const streamMaxLen = 10000

type SubmissionRecorded struct {
	SubmissionID int
	UserID       string
	ProblemID    int
	Status       string
	XPEarned     int
	CreatedAt    time.Time
}

// Values is the stream entry body.
func (e SubmissionRecorded) Values() map[string]interface{} {
	return map[string]interface{}{
		"submission_id": strconv.Itoa(e.SubmissionID),
		"user_id":       e.UserID,
		"problem_id":    strconv.Itoa(e.ProblemID),
		"status":        e.Status,
		"xp_earned":     strconv.Itoa(e.XPEarned),
		"created_at":    e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

func (p *RedisPublisher) PublishSubmission(ctx context.Context, event SubmissionRecorded) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		ID:     "*",
		Values: event.Values(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add submission %d to stream %s: %w", event.SubmissionID, p.stream, err)
	}
	return nil
}

// NoopPublisher drops every event. Used when Redis is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSubmission(context.Context, SubmissionRecorded) error { return nil }
