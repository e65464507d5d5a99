package broker

import (
	"context"
	goerrors "errors"
	"log/slog"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"chat-backend/errors"
)

// RedisBroker delivers notifications over Redis pub/sub. The client is
// constructed once at process start and shared; each consumer connection
// gets its own RedisBroker so subscription state stays per-connection.
type RedisBroker struct {
	client   *goredis.Client
	log      *slog.Logger
	timeout  time.Duration
	pubsub   *goredis.PubSub
	channels map[string]struct{}
}

func NewRedisBroker(client *goredis.Client, log *slog.Logger, timeout time.Duration) *RedisBroker {
	return &RedisBroker{
		client:   client,
		log:      log,
		timeout:  timeout,
		channels: make(map[string]struct{}),
	}
}

func (b *RedisBroker) Start(ctx context.Context) error {
	if b.pubsub != nil {
		return nil
	}
	b.pubsub = b.client.Subscribe(ctx)
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) error {
	if b.pubsub == nil {
		return errors.ErrBrokerNotStarted
	}
	b.log.Debug("subscribing", "channel", channel)
	if err := b.pubsub.Subscribe(ctx, channel); err != nil {
		return err
	}
	b.channels[channel] = struct{}{}
	return nil
}

func (b *RedisBroker) Unsubscribe(ctx context.Context, channel string) error {
	if b.pubsub == nil {
		return errors.ErrBrokerNotStarted
	}
	b.log.Debug("unsubscribing", "channel", channel)
	if err := b.pubsub.Unsubscribe(ctx, channel); err != nil {
		return err
	}
	delete(b.channels, channel)
	return nil
}

func (b *RedisBroker) SendMessage(ctx context.Context, channel string, message []byte) error {
	return b.client.Publish(ctx, channel, message).Err()
}

// GetMessage polls the subscription with the configured timeout so callers
// can interleave liveness checks. Subscription confirmations are skipped.
func (b *RedisBroker) GetMessage(ctx context.Context) ([]byte, error) {
	if b.pubsub == nil {
		return nil, errors.ErrBrokerNotStarted
	}

	received, err := b.pubsub.ReceiveTimeout(ctx, b.timeout)
	if err != nil {
		var netErr net.Error
		if goerrors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil
		}
		return nil, err
	}

	switch message := received.(type) {
	case *goredis.Message:
		return []byte(message.Payload), nil
	default:
		// Subscription acks and pongs are not deliveries.
		return nil, nil
	}
}

func (b *RedisBroker) Stop(ctx context.Context) error {
	if b.pubsub == nil {
		return errors.ErrBrokerNotStarted
	}
	for channel := range b.channels {
		if err := b.pubsub.Unsubscribe(ctx, channel); err != nil {
			b.log.Error("failed to unsubscribe", "channel", channel, "err", err)
		}
		delete(b.channels, channel)
	}
	err := b.pubsub.Close()
	b.pubsub = nil
	return err
}
