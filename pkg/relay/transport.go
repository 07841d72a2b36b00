package relay

import (
	"context"
	"errors"
	"sync"
)

var ErrTransportUnavailable = errors.New("relay transport unavailable")

// Transport moves raw payloads between processes (or within one).
// Deliveries for one subscription are made sequentially, in the order received.
type Transport interface {
	Name() string
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, deliver func(payload []byte)) (Subscription, error)
	Close() error
}

// Subscription stops deliveries when closed. Close is safe to call more than once.
type Subscription interface {
	Close() error
}

type subscriptionFunc struct {
	once  sync.Once
	close func() error
	err   error
}

func newSubscription(close func() error) *subscriptionFunc {
	return &subscriptionFunc{close: close}
}

func (s *subscriptionFunc) Close() error {
	s.once.Do(func() {
		s.err = s.close()
	})
	return s.err
}

// multiSubscription closes several subscriptions together.
type multiSubscription []Subscription

func (m multiSubscription) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
