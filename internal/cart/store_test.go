package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(_, message string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, message)
	r.mu.Unlock()
}

func TestSessionStore_StartGetEnd(t *testing.T) {
	s := NewSessionStore(time.Hour)

	sess := s.Start()
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 0, sess.Cart().Len())

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	assert.True(t, s.End(sess.ID))
	assert.False(t, s.End(sess.ID))
	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
}

func TestSessionStore_SessionsAreIsolated(t *testing.T) {
	s := NewSessionStore(time.Hour)
	a, b := s.Start(), s.Start()
	require.NotEqual(t, a.ID, b.ID)

	a.Add(item(1, "Apple", "5.00"), 2)
	assert.Equal(t, 0, b.Cart().Len())
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	s := NewSessionStore(30*time.Minute, WithClock(clk.Now))

	kept, dropped := s.Start(), s.Start()

	clk.Advance(20 * time.Minute)
	_, ok := s.Get(kept.ID) // refreshes the idle timer
	require.True(t, ok)

	clk.Advance(20 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get(dropped.ID)
	assert.False(t, ok)

	clk.Advance(31 * time.Minute)
	_, ok = s.Get(kept.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSessionStore_Notifications(t *testing.T) {
	rec := &recorder{}
	s := NewSessionStore(time.Hour, WithNotifier(rec))
	sess := s.Start()

	sess.Add(item(1, "Apple", "5.00"), 1)
	sess.Add(item(1, "Apple", "5.00"), 1)
	sess.SetQuantity(1, 3)
	sess.Remove(1)
	sess.Remove(1)

	assert.Equal(t, []string{
		"Apple added to cart!",
		"Added another Apple to cart!",
		"Apple removed from cart",
	}, rec.msgs)
}

func TestSession_SetQuantityZeroNotifiesRemoval(t *testing.T) {
	rec := &recorder{}
	sess := NewSessionStore(time.Hour, WithNotifier(rec)).Start()

	sess.Add(item(2, "Pear", "3.00"), 2)
	c := sess.SetQuantity(2, 0)

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "Pear removed from cart", rec.msgs[len(rec.msgs)-1])
}

func TestSession_ConcurrentAdds(t *testing.T) {
	sess := NewSessionStore(time.Hour).Start()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.Add(item(1, "Apple", "5.00"), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, sess.Cart().Totals().ItemCount)
}

func TestSessionStore_RunStopsWithContext(t *testing.T) {
	s := NewSessionStore(time.Millisecond)
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
