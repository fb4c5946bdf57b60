// Package events fans domain events out to subscribers.
package events

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
	"quiz-rewards-engine/internal/domain"
)

// Observer receives events. The bus tells instances apart with ==, so use
// pointer receivers; observers whose dynamic type is not comparable are refused.
type Observer interface {
	Update(event domain.Event) error
}

// Bus delivers events synchronously in attachment order.
type Bus struct {
	log       logrus.FieldLogger
	mu        sync.RWMutex
	observers []Observer
}

func NewBus(log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{log: log}
}

// Attach registers obs once; attaching it again is a no-op. Nil and
// non-comparable observers are logged and ignored.
func (b *Bus) Attach(obs Observer) {
	if !isComparable(obs) {
		b.log.WithField("observer", fmt.Sprintf("%T", obs)).Warn("observer rejected: not comparable")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.observers {
		if existing == obs {
			return
		}
	}
	b.observers = append(b.observers, obs)
}

// Detach removes obs if present.
func (b *Bus) Detach(obs Observer) {
	if !isComparable(obs) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.observers {
		if existing == obs {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of attached observers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// Notify delivers event to a snapshot of the observers. A failing observer is
// logged and skipped; the rest still receive the event.
func (b *Bus) Notify(event domain.Event) {
	b.mu.RLock()
	snapshot := make([]Observer, len(b.observers))
	copy(snapshot, b.observers)
	b.mu.RUnlock()

	for _, obs := range snapshot {
		if err := deliver(obs, event); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"event":    event.Kind,
				"username": event.Username,
				"observer": fmt.Sprintf("%T", obs),
			}).Warn("observer failed")
		}
	}
}

func isComparable(obs Observer) bool {
	if obs == nil {
		return false
	}
	return reflect.TypeOf(obs).Comparable()
}

func deliver(obs Observer, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return obs.Update(event)
}
