package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeStream struct {
	ch     chan domain.ChatMessage
	once   sync.Once
	closed chan struct{}
}

func (s *fakeStream) Messages() <-chan domain.ChatMessage { return s.ch }

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeTransport struct {
	mu           sync.Mutex
	streams      map[string][]*fakeStream
	subscribeErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{streams: map[string][]*fakeStream{}}
}

func (t *fakeTransport) Subscribe(_ context.Context, ticketID string) (Stream, error) {
	if t.subscribeErr != nil {
		return nil, t.subscribeErr
	}
	s := &fakeStream{ch: make(chan domain.ChatMessage), closed: make(chan struct{})}
	t.mu.Lock()
	t.streams[ticketID] = append(t.streams[ticketID], s)
	t.mu.Unlock()
	return s, nil
}

// Publish delivers to every open stream for the ticket.
func (t *fakeTransport) Publish(_ context.Context, msg domain.ChatMessage) error {
	t.mu.Lock()
	streams := append([]*fakeStream{}, t.streams[msg.TicketID]...)
	t.mu.Unlock()
	for _, s := range streams {
		select {
		case s.ch <- msg:
		case <-s.closed:
		}
	}
	return nil
}

func (t *fakeTransport) stream(ticketID string, i int) *fakeStream {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streams[ticketID][i]
}

func collect(t *testing.T) (Handler, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var got []string
	handler := func(msg domain.ChatMessage) {
		mu.Lock()
		got = append(got, msg.Message)
		mu.Unlock()
	}
	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string{}, got...)
	}
	return handler, snapshot
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not end")
	}
}

func TestRegistryDeliversInOrder(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)
	defer reg.Close()

	handler, got := collect(t)
	_, err := reg.Subscribe(context.Background(), "t-1", handler)
	require.NoError(t, err)

	for _, body := range []string{"one", "two", "three"} {
		require.NoError(t, reg.PublishChatMessage(context.Background(), domain.ChatMessage{TicketID: "t-1", Message: body}))
	}
	assert.Eventually(t, func() bool { return len(got()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, got())
}

func TestRegistryReplacesExistingSubscription(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)
	defer reg.Close()

	firstHandler, first := collect(t)
	firstHandle, err := reg.Subscribe(context.Background(), "t-1", firstHandler)
	require.NoError(t, err)

	secondHandler, second := collect(t)
	_, err = reg.Subscribe(context.Background(), "t-1", secondHandler)
	require.NoError(t, err)

	waitDone(t, firstHandle)
	assert.True(t, transport.stream("t-1", 0).isClosed())
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, reg.PublishChatMessage(context.Background(), domain.ChatMessage{TicketID: "t-1", Message: "hello"}))
	assert.Eventually(t, func() bool { return len(second()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, first())
}

func TestReleaseOfReplacedHandleKeepsSuccessor(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)
	defer reg.Close()

	noop := func(domain.ChatMessage) {}
	old, err := reg.Subscribe(context.Background(), "t-1", noop)
	require.NoError(t, err)
	_, err = reg.Subscribe(context.Background(), "t-1", noop)
	require.NoError(t, err)

	reg.Release(old)
	assert.True(t, reg.Active("t-1"))
	assert.False(t, transport.stream("t-1", 1).isClosed())
}

func TestUnsubscribeReleasesStream(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)
	defer reg.Close()

	h, err := reg.Subscribe(context.Background(), "t-1", func(domain.ChatMessage) {})
	require.NoError(t, err)
	reg.Unsubscribe("t-1")
	reg.Unsubscribe("unknown")

	waitDone(t, h)
	assert.False(t, reg.Active("t-1"))
	assert.True(t, transport.stream("t-1", 0).isClosed())
}

func TestContextCancelEndsSubscription(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)
	defer reg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	h, err := reg.Subscribe(ctx, "t-1", func(domain.ChatMessage) {})
	require.NoError(t, err)
	cancel()

	waitDone(t, h)
	assert.Eventually(t, func() bool { return !reg.Active("t-1") }, time.Second, 5*time.Millisecond)
}

func TestCloseReleasesEverything(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)

	var handles []*Handle
	for _, id := range []string{"a", "b", "c"} {
		h, err := reg.Subscribe(context.Background(), id, func(domain.ChatMessage) {})
		require.NoError(t, err)
		handles = append(handles, h)
	}
	reg.Close()

	for _, h := range handles {
		waitDone(t, h)
	}
	assert.Zero(t, reg.Len())

	_, err := reg.Subscribe(context.Background(), "d", func(domain.ChatMessage) {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, transport.stream("d", 0).isClosed())
}

func TestSubscribeConcurrently(t *testing.T) {
	transport := newFakeTransport()
	reg := NewRegistry(transport, nil)
	defer reg.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Subscribe(context.Background(), "t-1", func(domain.ChatMessage) {})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, reg.Len())
}

func TestSubscribeTransportError(t *testing.T) {
	transport := newFakeTransport()
	transport.subscribeErr = errors.New("redis down")
	reg := NewRegistry(transport, nil)

	_, err := reg.Subscribe(context.Background(), "t-1", func(domain.ChatMessage) {})
	assert.Error(t, err)
	assert.False(t, reg.Active("t-1"))
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "ticket:abc:messages", ChannelName("abc"))
}
