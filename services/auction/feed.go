package auction

import "sync"

// Feed event types.
const (
	FeedOfferSubmitted    = "offer_submitted"
	FeedOfferAccepted     = "offer_accepted"
	FeedOfferRejected     = "offer_rejected"
	FeedSessionExpired    = "session_expired"
	FeedSessionCancelled  = "session_cancelled"
	FeedSessionSuperseded = "session_superseded"
)

// FeedEvent is one entry in a session's live offer stream.
type FeedEvent struct {
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId"`
	OfferID   string            `json:"offerId,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Broker fans session events out to independent subscriber channels: one
// publisher per session, any number of consumers, each able to unsubscribe
// without affecting the others. Slow subscribers are dropped rather than
// allowed to block the publisher.
type Broker struct {
	mu    sync.Mutex
	feeds map[string]*sessionFeed
}

type sessionFeed struct {
	nextID int
	subs   map[int]chan FeedEvent
}

func NewBroker() *Broker {
	return &Broker{feeds: make(map[string]*sessionFeed)}
}

// Subscribe returns a buffered channel of events for one session and a
// cancel func. The channel is closed on unsubscribe or session close.
func (b *Broker) Subscribe(sessionID string) (<-chan FeedEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	feed, ok := b.feeds[sessionID]
	if !ok {
		feed = &sessionFeed{subs: make(map[int]chan FeedEvent)}
		b.feeds[sessionID] = feed
	}

	id := feed.nextID
	feed.nextID++
	ch := make(chan FeedEvent, 64)
	feed.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if f, ok := b.feeds[sessionID]; ok {
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the session. A subscriber
// whose buffer is full is evicted so the publisher never blocks.
func (b *Broker) Publish(sessionID string, event FeedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	feed, ok := b.feeds[sessionID]
	if !ok {
		return
	}
	for id, ch := range feed.subs {
		select {
		case ch <- event:
		default:
			delete(feed.subs, id)
			close(ch)
		}
	}
}

// CloseSession drops the session's feed and closes all remaining
// subscriber channels.
func (b *Broker) CloseSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	feed, ok := b.feeds[sessionID]
	if !ok {
		return
	}
	for id, ch := range feed.subs {
		delete(feed.subs, id)
		close(ch)
	}
	delete(b.feeds, sessionID)
}
