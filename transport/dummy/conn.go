package dummy

import (
	"io"
	"net"
	"sync"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is a net.Conn journaling everything written into it. Writes can be stalled until
// Release is called, and an error can be injected to simulate a broken socket.
type Conn struct {
	mu        sync.Mutex
	data      []byte
	writes    int
	deadlines int
	err       error
	gate      chan struct{}
	nop       bool
}

func NewConn() *Conn {
	return new(Conn)
}

func (c *Conn) Read([]byte) (n int, err error) {
	return 0, io.EOF
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.writes++
	if c.err != nil {
		return 0, c.err
	}

	if !c.nop {
		c.data = append(c.data, b...)
	}

	return len(b), nil
}

// Stall makes every following write wait until Release is called.
func (c *Conn) Stall() *Conn {
	c.mu.Lock()
	c.gate = make(chan struct{})
	c.mu.Unlock()

	return c
}

// Release unblocks stalled writes, current and future ones.
func (c *Conn) Release() {
	c.mu.Lock()
	if c.gate != nil {
		close(c.gate)
		c.gate = nil
	}
	c.mu.Unlock()
}

// Fail makes every following write return err.
func (c *Conn) Fail(err error) *Conn {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()

	return c
}

// Nop makes the connection discard the written data.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}

// Data returns a copy of everything written so far.
func (c *Conn) Data() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]byte(nil), c.data...)
}

func (c *Conn) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writes
}

func (c *Conn) Deadlines() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.deadlines
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return nil
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	c.deadlines++
	c.mu.Unlock()

	return nil
}
