package cart

import (
	"fmt"
	"sync"
	"time"
)

// Notifier receives the toast messages a session emits on add and remove.
// Calls are fire-and-forget.
type Notifier interface {
	Notify(sessionID, message string)
}

type NotifierFunc func(sessionID, message string)

func (f NotifierFunc) Notify(sessionID, message string) { f(sessionID, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

// Session owns the cart of one browsing session. It is created by a
// SessionStore and discarded when the session ends or goes idle.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	cart     Cart
	lastSeen time.Time
	notifier Notifier
}

func newSession(id string, now time.Time, n Notifier) *Session {
	if n == nil {
		n = nopNotifier{}
	}
	return &Session{ID: id, CreatedAt: now, lastSeen: now, notifier: n}
}

func (s *Session) Cart() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *Session) Add(item Item, qty int) Cart {
	s.mu.Lock()
	_, existed := s.cart.Line(item.ProductID)
	s.cart = s.cart.Add(item, qty)
	c := s.cart
	s.mu.Unlock()

	if existed {
		s.notifier.Notify(s.ID, fmt.Sprintf("Added another %s to cart!", item.Name))
	} else {
		s.notifier.Notify(s.ID, fmt.Sprintf("%s added to cart!", item.Name))
	}
	return c
}

func (s *Session) Remove(productID int64) Cart {
	s.mu.Lock()
	line, existed := s.cart.Line(productID)
	s.cart = s.cart.Remove(productID)
	c := s.cart
	s.mu.Unlock()

	if existed {
		s.notifier.Notify(s.ID, fmt.Sprintf("%s removed from cart", line.Name))
	}
	return c
}

func (s *Session) SetQuantity(productID int64, qty int) Cart {
	if qty <= 0 {
		return s.Remove(productID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = s.cart.SetQuantity(productID, qty)
	return s.cart
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
