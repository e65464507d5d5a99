//go:generate go run go.uber.org/mock/mockgen -source=broker.go -destination=../../mocks/mock_broker.go -package=mocks
// Package broker wraps the external pub/sub transport used to push
// serialized notifications to live connections. One channel per account id.
package broker

import "context"

// MessageBroker is scoped to one consumer connection: Start opens the
// underlying subscription state, GetMessage drains whatever channels the
// consumer subscribed to, and Stop releases everything that is left.
// Publishing through SendMessage works independently of Start.
type MessageBroker interface {
	Start(ctx context.Context) error
	Subscribe(ctx context.Context, channel string) error
	Unsubscribe(ctx context.Context, channel string) error
	SendMessage(ctx context.Context, channel string, message []byte) error
	// GetMessage polls with a bounded timeout and returns (nil, nil) when no
	// message arrived in time. It never blocks indefinitely.
	GetMessage(ctx context.Context) ([]byte, error)
	Stop(ctx context.Context) error
}
