package transport

// Sink is the connection's outgoing byte buffer as seen by the request encoder. It is
// owned by the connection and lent to exactly one encoder at a time, so none of the
// methods are safe for concurrent use by multiple owners.
type Sink interface {
	// Tail returns the append-only end of the buffer. Bytes may be appended to it, but
	// bytes already in it must never be modified.
	Tail() *[]byte
	// Drain hands buffered bytes to the I/O driver without blocking. It returns the number
	// of bytes written to the peer since the previous call and whether anything is
	// still pending.
	Drain() (n int, wouldBlock bool, err error)
	// Buffered returns the number of bytes not yet written to the peer.
	Buffered() int
	// Writable delivers a notification every time the I/O driver makes progress.
	// Notifications may be spurious, so the receiver must re-check Buffered.
	Writable() <-chan struct{}
}
