// Package runtime owns the process-wide fan-out state: which users
// currently hold a live connection and where their events go.
package runtime

import (
	"sync"
	"sync/atomic"

	"chat-notify/domain"
	"chat-notify/domain/event"

	"github.com/google/uuid"
)

const DefaultSubscriberBuffer = 16

// Registry maps a user to their broadcast endpoint. Entries appear on
// the first Subscribe for a user and disappear only when a Publish
// finds no live receivers. Closing a subscription never removes the
// entry; cleanup is deliberately lazy so a publish racing a disconnect
// cannot reclaim an endpoint still in use.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[domain.UserID]*endpoint
	capacity  int
	dropped   atomic.Uint64
}

// endpoint is a single-sender, multi-receiver delivery point with one
// bounded buffer per receiver.
type endpoint struct {
	mu        sync.Mutex
	receivers map[uuid.UUID]chan event.AppEvent
}

// Subscription is one receiver bound to one live connection. It is
// owned exclusively by the gateway task serving that connection.
type Subscription struct {
	C <-chan event.AppEvent

	id   uuid.UUID
	ep   *endpoint
	once sync.Once
}

// Close detaches the receiver from its endpoint. The registry entry
// itself stays until a later publish finds it empty.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.ep.mu.Lock()
		defer s.ep.mu.Unlock()
		delete(s.ep.receivers, s.id)
	})
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultSubscriberBuffer
	}
	return &Registry{
		endpoints: make(map[domain.UserID]*endpoint),
		capacity:  capacity,
	}
}

// Subscribe returns a fresh receiver for the user, creating the
// endpoint on first connect. Additional connects for the same user
// share the endpoint and each get their own buffer.
func (r *Registry) Subscribe(userID domain.UserID) *Subscription {
	r.mu.Lock()
	ep, ok := r.endpoints[userID]
	if !ok {
		ep = &endpoint{receivers: make(map[uuid.UUID]chan event.AppEvent)}
		r.endpoints[userID] = ep
	}
	r.mu.Unlock()

	ch := make(chan event.AppEvent, r.capacity)
	id := uuid.New()

	ep.mu.Lock()
	ep.receivers[id] = ch
	ep.mu.Unlock()

	return &Subscription{C: ch, id: id, ep: ep}
}

// Publish delivers the event to every live receiver of the user. A
// user without an entry is simply not connected: the event is dropped.
// A publish that finds an entry with zero receivers reclaims it; this
// is the sole cleanup path.
func (r *Registry) Publish(userID domain.UserID, evt event.AppEvent) {
	r.mu.RLock()
	ep, ok := r.endpoints[userID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	if ep.broadcast(evt, &r.dropped) == 0 {
		r.reclaim(userID, ep)
	}
}

// broadcast sends to every receiver, discarding that receiver's oldest
// buffered event when its buffer is full (latest-wins, the publisher
// never blocks). Returns the number of live receivers.
func (ep *endpoint) broadcast(evt event.AppEvent, dropped *atomic.Uint64) int {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	for _, ch := range ep.receivers {
		select {
		case ch <- evt:
			continue
		default:
		}
		select {
		case <-ch:
			dropped.Add(1)
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
	return len(ep.receivers)
}

// reclaim removes a now-empty entry, rechecking under both locks: a
// concurrent Subscribe may have attached a receiver, or replaced the
// entry entirely, between the failed broadcast and this call.
func (r *Registry) reclaim(userID domain.UserID, ep *endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.endpoints[userID]
	if !ok || current != ep {
		return
	}
	ep.mu.Lock()
	empty := len(ep.receivers) == 0
	ep.mu.Unlock()
	if empty {
		delete(r.endpoints, userID)
	}
}

// Len reports how many users currently hold an entry, stale or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

// Dropped reports how many buffered events were discarded because a
// subscriber was too slow to drain its buffer.
func (r *Registry) Dropped() uint64 {
	return r.dropped.Load()
}
