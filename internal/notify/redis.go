package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const streamMaxLen = 10000

// RedisNotifier appends notices to a Redis stream for the mail worker to consume.
type RedisNotifier struct {
	client redis.Cmdable
	stream string
}

func NewRedisNotifier(client redis.Cmdable, stream string) *RedisNotifier {
	return &RedisNotifier{client: client, stream: stream}
}

func (n *RedisNotifier) Notify(ctx context.Context, msg Message) error {
	args := &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: streamMaxLen,
		Values: map[string]any{
			"kind":       string(msg.Kind),
			"subject":    msg.Subject,
			"user_id":    msg.UserID.String(),
			"email":      msg.Email,
			"first_name": msg.FirstName,
			"reference":  msg.Reference,
			"amount":     msg.Amount.StringFixed(2),
			"created_at": msg.CreatedAt.Unix(),
		},
	}
	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		zap.L().Error("can't publish notification", zap.String("stream", n.stream), zap.Error(err))
		return fmt.Errorf("publish %s notification: %w", msg.Kind, err)
	}
	return nil
}
