package eventfsm

import "sync"

// Subscription is returned by every registration call. Dispose removes exactly
// the entries the subscription was issued for.
//
// Disposal is idempotent and safe on a nil Subscription. A subscription does
// not keep its machine alive; disposing after the machine has been garbage
// collected is a no-op.
type Subscription struct {
	once    sync.Once
	release func()
}

func newSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Subscriptions returns a subscription that disposes every given subscription.
func Subscriptions(subs ...*Subscription) *Subscription {
	return newSubscription(func() {
		for _, sub := range subs {
			sub.Dispose()
		}
	})
}

// Dispose removes the registration. Calling it again has no effect.
func (s *Subscription) Dispose() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
		s.release = nil
	})
}
