package services

import (
	"context"
	"log/slog"
	"sync"

	"chat-backend/errors"
	"chat-backend/infrastructure/broker"
)

// BrokerFactory opens a fresh broker connection for one subscriber. Each
// live connection owns its own consumer state.
type BrokerFactory func() broker.MessageBroker

// SubscriptionService serves one live connection: Open binds it to the
// account's notification channel, WaitEvents polls for the next serialized
// notification, and the returned closer tears the subscription down.
type SubscriptionService struct {
	newBroker BrokerFactory
	log       *slog.Logger

	mu       sync.Mutex
	consumer broker.MessageBroker
	account  string
}

func NewSubscriptionService(newBroker BrokerFactory, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{newBroker: newBroker, log: log}
}

// Open starts a consumer and subscribes it to the account channel. The
// returned closer is safe to defer immediately; it stops the consumer and
// resets the service for reuse. Opening an already-open service fails; the
// previous subscription must be closed first.
func (s *SubscriptionService) Open(ctx context.Context, account string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumer != nil {
		return nil, errors.StartSubscriptionError{AccountID: account, Cause: errors.ErrSubscriptionOpen}
	}

	consumer := s.newBroker()
	if err := consumer.Start(ctx); err != nil {
		return nil, errors.StartSubscriptionError{AccountID: account, Cause: err}
	}
	if err := consumer.Subscribe(ctx, account); err != nil {
		if stopErr := consumer.Stop(ctx); stopErr != nil {
			s.log.Error("consumer stop failed", "account", account, "error", stopErr)
		}
		return nil, errors.StartSubscriptionError{AccountID: account, Cause: err}
	}

	s.consumer = consumer
	s.account = account
	s.log.Info("subscription opened", "account", account)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.consumer == nil {
			return
		}
		if err := s.consumer.Stop(context.Background()); err != nil {
			s.log.Error("subscription close failed", "account", s.account, "error", err)
		}
		s.consumer = nil
		s.account = ""
	}, nil
}

// WaitEvents returns the next notification for the subscribed account, or
// (nil, nil) when the poll window elapsed without one.
func (s *SubscriptionService) WaitEvents(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	consumer := s.consumer
	s.mu.Unlock()

	if consumer == nil {
		return nil, errors.ErrSubscriptionNotStarted
	}
	return consumer.GetMessage(ctx)
}
