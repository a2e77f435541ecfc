// Package pipeline holds the state shared between the request-writing and the
// response-reading sides of a single connection.
//
// Both signals are single-writer/multi-reader and never guarded by a lock. The in-flight
// kind is published exactly once per request, before its bytes reach the socket, so the
// reader can't observe a stale value as long as it only looks at it after the matching
// response started arriving. The close signal is monotonic: a read sees either "not yet"
// or the final value.
package pipeline

import (
	"fmt"
	"sync/atomic"
)

// Kind classifies the request whose response is expected next.
type Kind uint32

const (
	// None means no request line was written since the last reset.
	None Kind = iota
	// Head requests are answered without a body, regardless of any framing headers.
	Head
	// Normal requests are answered with a body framed as the response headers say.
	Normal
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Head:
		return "head"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// InFlight is the kind of the request currently being written or awaiting its response.
type InFlight struct {
	kind atomic.Uint32
}

// Publish stores the kind, unless another one was published since the last reset. The
// returned flag tells whether the kind was stored.
func (f *InFlight) Publish(kind Kind) bool {
	return f.kind.CompareAndSwap(uint32(None), uint32(kind))
}

// Load returns the published kind.
func (f *InFlight) Load() Kind {
	return Kind(f.kind.Load())
}

// Reset is called by the connection manager once the response has been consumed.
func (f *InFlight) Reset() {
	f.kind.Store(uint32(None))
}

// CloseSignal is raised when a request asked for the connection to be closed after the
// exchange. It is never lowered during the connection lifetime.
type CloseSignal struct {
	requested atomic.Bool
}

func (c *CloseSignal) Set() {
	c.requested.Store(true)
}

func (c *CloseSignal) Requested() bool {
	return c.requested.Load()
}

// Signals bundles both signals. One instance is allocated per connection.
type Signals struct {
	InFlight InFlight
	Close    CloseSignal
}

func New() *Signals {
	return new(Signals)
}
