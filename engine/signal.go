package engine

import (
	"context"
	"sync"
)

// Connection is a live subscription to a Signal.
type Connection struct {
	once       sync.Once
	mu         sync.Mutex
	connected  bool
	disconnect func()
}

func newConnection(disconnect func()) *Connection {
	return &Connection{connected: true, disconnect: disconnect}
}

// Disconnect stops further deliveries. Calling it again is a no-op.
func (c *Connection) Disconnect() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		if c.disconnect != nil {
			c.disconnect()
		}
	})
}

func (c *Connection) Connected() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

type slot[T any] struct {
	id   uint64
	conn *Connection
	fn   func(T)
}

// Signal delivers values to its handlers synchronously, in connection
// order, on the goroutine that calls Fire.
type Signal[T any] struct {
	mu     sync.Mutex
	nextID uint64
	slots  []slot[T]
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

func (s *Signal[T]) Connect(fn func(T)) *Connection {
	if s == nil || fn == nil {
		return newConnection(nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	conn := newConnection(func() { s.remove(id) })
	s.slots = append(s.slots, slot[T]{id: id, conn: conn, fn: fn})
	return conn
}

// Once connects fn for a single delivery.
func (s *Signal[T]) Once(fn func(T)) *Connection {
	var conn *Connection
	var mu sync.Mutex
	mu.Lock()
	conn = s.Connect(func(v T) {
		mu.Lock()
		c := conn
		mu.Unlock()
		c.Disconnect()
		fn(v)
	})
	mu.Unlock()
	return conn
}

func (s *Signal[T]) Fire(v T) {
	if s == nil {
		return
	}
	s.mu.Lock()
	slots := make([]slot[T], len(s.slots))
	copy(slots, s.slots)
	s.mu.Unlock()

	for _, sl := range slots {
		// a handler earlier in this round may have disconnected a later one
		if !sl.conn.Connected() {
			continue
		}
		sl.fn(v)
	}
}

// Wait blocks until the next Fire or until ctx is done.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	ch := make(chan T, 1)
	conn := s.Once(func(v T) { ch <- v })
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		conn.Disconnect()
		var zero T
		return zero, ctx.Err()
	}
}

// Len returns the number of connected handlers.
func (s *Signal[T]) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Signal[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl.id == id {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}
