package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anhtran/folio-api/internal/domain/inbox"
	"github.com/anhtran/folio-api/pkg/logger"
)

const inboxChannel = "inbox.changed"

type redisInboxNotifier struct {
	rdb    *redis.Client
	logger logger.Logger
}

// NewRedisInboxNotifier pushes message-collection change notifications over a
// redis pub/sub channel. Payloads carry no data; subscribers re-query.
func NewRedisInboxNotifier(rdb *redis.Client, logger logger.Logger) inbox.Notifier {
	return &redisInboxNotifier{rdb: rdb, logger: logger}
}

func (n *redisInboxNotifier) NotifyChanged(ctx context.Context) error {
	if err := n.rdb.Publish(ctx, inboxChannel, "changed").Err(); err != nil {
		return fmt.Errorf("failed to publish inbox notification: %w", err)
	}
	return nil
}

func (n *redisInboxNotifier) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	sub := n.rdb.Subscribe(ctx, inboxChannel)

	// Confirm the subscription before handing out the channel so no
	// notification published after this call is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe inbox channel: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range sub.Channel() {
			// Coalesce bursts: one pending tick is enough, the consumer
			// re-materializes the full list anyway.
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := sub.Close(); err != nil {
				n.logger.Warn("failed to close inbox subscription", zap.Error(err))
			}
		})
	}
	return out, release, nil
}
