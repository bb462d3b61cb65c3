package redisq

import (
	"context"
	"errors"
	"time"

	"go-resume-screener/internal/domain"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "resume-screener:ingest:wake"

// signal is a Redis list used purely as a wake-up channel. The task table stays
// the source of truth; a lost signal only delays a task until the next poll.
type signal struct {
	client *redis.Client
	key    string
}

func NewTaskSignal(client *redis.Client, key string) domain.TaskSignal {
	if key == "" {
		key = defaultKey
	}
	return &signal{client: client, key: key}
}

func (s *signal) Notify(ctx context.Context, taskID string) error {
	return s.client.LPush(ctx, s.key, taskID).Err()
}

// Wait blocks up to timeout for a notification. It returns ("", nil) on timeout.
func (s *signal) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := s.client.BRPop(ctx, timeout, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

// nopSignal is used when Redis is not configured; workers fall back to polling.
type nopSignal struct{}

func NewNopSignal() domain.TaskSignal {
	return nopSignal{}
}

func (nopSignal) Notify(context.Context, string) error { return nil }

func (nopSignal) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.C:
		return "", nil
	}
}
