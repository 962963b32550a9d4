package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement/pkg/logging"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (r *recordingSubscriber) Send(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSubscriber) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSubscriber) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingSubscriber) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func TestBrokerSubscribeBeforeRun(t *testing.T) {
	b := NewBroker(logging.NewNopLogger())
	sub := &recordingSubscriber{}

	done := make(chan struct{})
	go func() {
		b.Subscribe(sub)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscribe blocked before Run")
	}
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestBrokerDeliversInOrder(t *testing.T) {
	b := NewBroker(logging.NewNopLogger())
	sub := &recordingSubscriber{}
	b.Subscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(stopped)
	}()

	b.Publish(JobCreated, map[string]string{"job_id": "j1"})
	b.Publish(JobDeleted, map[string]string{"job_id": "j1"})

	require.Eventually(t, func() bool { return len(sub.types()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []EventType{JobCreated, JobDeleted}, sub.types())

	cancel()
	<-stopped
	assert.True(t, sub.isClosed())
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker(logging.NewNopLogger())
	a, c := &recordingSubscriber{}, &recordingSubscriber{}
	b.Subscribe(a)
	b.Subscribe(c)

	b.Unsubscribe(a)
	assert.True(t, a.isClosed())
	assert.False(t, c.isClosed())
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewBroker(logging.NewNopLogger())
	for range cap(b.events) + 10 {
		b.Publish(DriveUpdated, nil)
	}
	assert.Len(t, b.events, cap(b.events))
}
