package dummy

import (
	"sync"

	"github.com/indigo-web/reqwire/transport"
)

var _ transport.Sink = new(Sink)

// Sink is an in-memory transport.Sink. Draining moves bytes from the pending buffer into
// Data synchronously, at most Limit bytes per call (unless Limit is zero). A blocked sink
// doesn't drain anything until unblocked, just like a socket with a full send buffer.
//
// Only Block, Unblock, Fail and Data may be called concurrently with the owner.
type Sink struct {
	mu       sync.Mutex
	pending  []byte
	data     []byte
	limit    int
	drains   int
	blocked  bool
	err      error
	writable chan struct{}
}

func NewSink() *Sink {
	return &Sink{
		writable: make(chan struct{}, 1),
	}
}

// WithLimit caps the number of bytes a single drain may write.
func (s *Sink) WithLimit(n int) *Sink {
	s.limit = n
	return s
}

func (s *Sink) Tail() *[]byte {
	return &s.pending
}

func (s *Sink) Drain() (n int, wouldBlock bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drains++
	if s.err != nil {
		return 0, len(s.pending) > 0, s.err
	}

	if s.blocked {
		return 0, len(s.pending) > 0, nil
	}

	n = len(s.pending)
	if s.limit > 0 && n > s.limit {
		n = s.limit
	}

	s.data = append(s.data, s.pending[:n]...)
	s.pending = append(s.pending[:0], s.pending[n:]...)

	if n > 0 && len(s.pending) > 0 {
		// the socket is still writable, so is ready to take the next portion
		s.notify()
	}

	return n, len(s.pending) > 0, nil
}

func (s *Sink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

func (s *Sink) Writable() <-chan struct{} {
	return s.writable
}

func (s *Sink) Block() {
	s.mu.Lock()
	s.blocked = true
	s.mu.Unlock()
}

func (s *Sink) Unblock() {
	s.mu.Lock()
	s.blocked = false
	s.notify()
	s.mu.Unlock()
}

// Fail makes every following drain return err and wakes up a waiter, if any.
func (s *Sink) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.notify()
	s.mu.Unlock()
}

// Data returns a copy of everything drained so far.
func (s *Sink) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]byte(nil), s.data...)
}

// All returns drained and pending bytes together, as they will appear on the wire.
func (s *Sink) All() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append(append([]byte(nil), s.data...), s.pending...)
}

func (s *Sink) Drains() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drains
}

func (s *Sink) notify() {
	select {
	case s.writable <- struct{}{}:
	default:
	}
}
