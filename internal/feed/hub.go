// Package feed fans out transcription row changes to per-user subscribers
// and provides the pure reduction that applies those changes to a local
// snapshot of the job list.
package feed

import (
	"log/slog"
	"sync"
	"time"

	"speechcraft/internal/domain"
)

const subscriberBuffer = 64

var _ domain.ChangePublisher = (*Hub)(nil)

// Hub distributes change events to subscribers of the affected user's feed.
// Events carry a hub-assigned monotonic sequence number. Delivery per
// subscriber is in-order but lossy: a subscriber that cannot keep up has
// events dropped rather than blocking writers.
type Hub struct {
	logger *slog.Logger

	mu   sync.Mutex
	seq  int64
	subs map[string]map[*Subscription]struct{}
}

// Subscription is one subscriber's handle on a user feed. Events arrives on
// C; Close releases the subscription.
type Subscription struct {
	C      <-chan domain.ChangeEvent
	ch     chan domain.ChangeEvent
	userID string
	hub    *Hub
	once   sync.Once
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "feed"),
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers for all future change events on a user's feed.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		ch:     make(chan domain.ChangeEvent, subscriberBuffer),
		userID: userID,
		hub:    h,
	}
	sub.C = sub.ch

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}

	return sub
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.userID], s)
		if len(s.hub.subs[s.userID]) == 0 {
			delete(s.hub.subs, s.userID)
		}
		close(s.ch)
	})
}

// Publish assigns the event a sequence number and timestamp, delivers it to
// the affected user's subscribers, and returns the stamped event.
func (h *Hub) Publish(ev domain.ChangeEvent) domain.ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	ev.Seq = h.seq
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	for sub := range h.subs[ev.UserID] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping feed event for slow subscriber",
				"user_id", ev.UserID, "job_id", ev.JobID, "seq", ev.Seq)
		}
	}

	return ev
}
