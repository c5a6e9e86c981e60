// Package events fans dashboard updates out to the presentation layers.
package events

import (
	"sync"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
)

const subBufferSize = 16

// Kind says which part of the view an update changed.
type Kind string

const (
	KindEnvironment   Kind = "environment"
	KindNotifications Kind = "notifications"
	KindOverlay       Kind = "overlay"
	KindResolved      Kind = "resolved"
	KindFailure       Kind = "failure"
)

// Update is one change to the dashboard view. View is a full copy taken
// right after the change, so a subscriber that missed earlier updates can
// still render the latest state. Action is set only for KindOverlay.
type Update struct {
	Kind   Kind                 `json:"kind"`
	View   domain.View          `json:"view"`
	Action domain.OverlayAction `json:"action"`
	Error  string               `json:"error,omitempty"`
}

// Bus is a non-blocking publish-subscribe bus. Subscribers that are slow to
// consume updates have them dropped rather than blocking publishers.
type Bus struct {
	mu   sync.Mutex
	subs map[string]chan Update
}

// NewBus creates a new bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan Update),
	}
}

// Subscribe creates a subscription with the given ID. Call Unsubscribe when
// done. Subscribing twice with the same ID replaces the old subscription.
func (b *Bus) Subscribe(id string) <-chan Update {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	ch := make(chan Update, subBufferSize)
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// oneShot reports whether u triggers work that later updates do not repeat:
// the Show of a new permission request and its resolution.
func (u Update) oneShot() bool {
	return (u.Kind == KindOverlay && u.Action.IsShow()) || u.Kind == KindResolved
}

// Publish sends u to all subscribers. If a subscriber's channel is full,
// a routine update is dropped for that subscriber. A one-shot update instead
// evicts the oldest queued routine update, keeping delivery order.
func (b *Bus) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- u:
		default:
			if u.oneShot() {
				makeRoom(ch)
				select {
				case ch <- u:
				default:
				}
			}
		}
	}
}

// makeRoom removes the oldest routine update queued on ch, or the oldest
// update when all of them are one-shot. The caller holds the bus lock, so
// nothing else sends on ch meanwhile.
func makeRoom(ch chan Update) {
	queued := make([]Update, 0, cap(ch))
	for {
		select {
		case q := <-ch:
			queued = append(queued, q)
			continue
		default:
		}
		break
	}
	if len(queued) < cap(ch) {
		for _, q := range queued {
			ch <- q
		}
		return
	}
	drop := 0
	for i, q := range queued {
		if !q.oneShot() {
			drop = i
			break
		}
	}
	for i, q := range queued {
		if i != drop {
			ch <- q
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close unsubscribes everyone.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
