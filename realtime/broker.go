// Package realtime fans snapshots out to subscribers of a topic.
//
// Each subscription holds at most one undelivered snapshot. A newer snapshot
// replaces an unread older one, so a slow reader skips versions but never
// sees them out of order.
package realtime

import (
	"sync"
	"time"
)

// Kind says what a snapshot describes.
type Kind string

const (
	KindJobs    Kind = "jobs"
	KindChat    Kind = "chat"
	KindProfile Kind = "profile"
)

// Snapshot is the latest state of a topic at Version.
type Snapshot struct {
	Topic     string      `json:"topic"`
	Kind      Kind        `json:"kind"`
	Version   uint64      `json:"version"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

// JobsTopic carries an account's job list.
func JobsTopic(accountID string) string { return "jobs:" + accountID }

// ChatTopic carries new messages addressed to an account.
func ChatTopic(accountID string) string { return "chat:" + accountID }

// ProfileTopic carries changes to an account's profile.
func ProfileTopic(accountID string) string { return "profile:" + accountID }

// UserTopics lists every topic a signed-in account listens on.
func UserTopics(accountID string) []string {
	return []string{JobsTopic(accountID), ChatTopic(accountID), ProfileTopic(accountID)}
}

// Publisher is the write side used by services.
type Publisher interface {
	Publish(topic string, kind Kind, payload interface{}) Snapshot
}

// Broker is an in-process topic broker.
type Broker struct {
	mu       sync.Mutex
	versions map[string]uint64
	subs     map[string]map[*Subscription]struct{}
	closed   bool
	now      func() time.Time
}

func NewBroker() *Broker {
	return &Broker{
		versions: make(map[string]uint64),
		subs:     make(map[string]map[*Subscription]struct{}),
		now:      time.Now,
	}
}

// Publish stamps payload with the topic's next version and offers it to
// every current subscriber. It never blocks on readers.
func (b *Broker) Publish(topic string, kind Kind, payload interface{}) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.versions[topic]++
	snap := Snapshot{
		Topic:     topic,
		Kind:      kind,
		Version:   b.versions[topic],
		Payload:   payload,
		CreatedAt: b.now(),
	}
	if b.closed {
		return snap
	}
	for sub := range b.subs[topic] {
		sub.offer(snap)
	}
	return snap
}

// Version returns the last version published on topic.
func (b *Broker) Version(topic string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.versions[topic]
}

// Subscribe starts listening on topic. The caller must Close the
// subscription. Subscribing to a closed broker returns an already closed
// subscription.
func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{broker: b, topic: topic, ch: make(chan Snapshot, 1)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub
}

// Subscribers returns how many subscriptions are open on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close ends every subscription. Later publishes are dropped.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*Subscription
	for _, set := range b.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	b.subs = make(map[string]map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range all {
		sub.shut()
	}
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[sub.topic]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.topic)
		}
	}
}

// Subscription receives snapshots for one topic.
type Subscription struct {
	broker *Broker
	topic  string
	ch     chan Snapshot

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// C delivers snapshots in increasing version order. It is closed when the
// subscription or its broker is closed.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

func (s *Subscription) Topic() string { return s.topic }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.remove(s)
		s.shut()
	})
}

func (s *Subscription) offer(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (s *Subscription) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
