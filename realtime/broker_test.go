package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishDeliversLatest(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub := b.Subscribe(JobsTopic("a"))
	defer sub.Close()

	b.Publish(JobsTopic("a"), KindJobs, 1)
	b.Publish(JobsTopic("a"), KindJobs, 2)
	b.Publish(JobsTopic("b"), KindJobs, "other")

	snap := <-sub.C()
	assert.Equal(t, uint64(2), snap.Version)
	assert.Equal(t, 2, snap.Payload)

	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected snapshot %+v", extra)
	default:
	}
}

func TestVersionsNeverGoBackwards(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	topic := ChatTopic("x")
	sub := b.Subscribe(topic)

	const publishers, each = 4, 200
	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				b.Publish(topic, KindChat, i)
			}
		}()
	}

	done := make(chan struct{})
	var seen []uint64
	go func() {
		defer close(done)
		for snap := range sub.C() {
			seen = append(seen, snap.Version)
		}
	}()

	wg.Wait()
	sub.Close()
	<-done

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, uint64(publishers*each), b.Version(topic))
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(ProfileTopic("a"))
	assert.Equal(t, 1, b.Subscribers(ProfileTopic("a")))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, b.Subscribers(ProfileTopic("a")))

	_, ok := <-sub.C()
	assert.False(t, ok)

	b.Publish(ProfileTopic("a"), KindProfile, nil)
	b.Close()
	b.Close()
}

func TestBrokerCloseEndsSubscriptions(t *testing.T) {
	b := NewBroker()
	subs := make([]*Subscription, 0, 3)
	for _, topic := range UserTopics("a") {
		subs = append(subs, b.Subscribe(topic))
	}
	b.Close()

	for _, s := range subs {
		_, ok := <-s.C()
		assert.False(t, ok, s.Topic())
		s.Close()
	}

	late := b.Subscribe(JobsTopic("a"))
	_, ok := <-late.C()
	assert.False(t, ok)
	late.Close()
}
