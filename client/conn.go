package client

import (
	"context"
	"errors"
	"io"
	"log"
	"net"

	"github.com/indigo-web/reqwire/config"
	"github.com/indigo-web/reqwire/encoder"
	"github.com/indigo-web/reqwire/pipeline"
	"github.com/indigo-web/reqwire/transport"
	"github.com/indigo-web/utils/pool"
)

var (
	ErrEncoderLent     = errors.New("encoder is already lent")
	ErrResponsePending = errors.New("response to the previous request is not consumed yet")
	ErrBroken          = errors.New("connection is broken")
)

// minStreamBuffer is the smallest stream buffer worth reading a body into.
const minStreamBuffer = 64

// Conn is the writing half of a client connection. It lends a single encoder at a time,
// so requests on the connection are never interleaved. It isn't safe for concurrent use.
type Conn struct {
	cfg     *config.Config
	sink    transport.Sink
	signals *pipeline.Signals
	buffers *pool.ObjectPool[[]byte]
	closers []io.Closer
	lent    bool
	broken  bool
}

// NewConn wraps the connection, writing through a transport.Buffer.
func NewConn(cfg *config.Config, conn net.Conn) *Conn {
	cfg = normalize(cfg)
	buff := transport.NewBuffer(
		conn,
		cfg.NET.WriteTimeout,
		make([]byte, 0, cfg.NET.WriteBufferSize.Default),
		cfg.NET.WriteBufferSize.Maximal,
	)

	c := NewConnWithSink(cfg, buff)
	c.closers = append(c.closers, buff, conn)

	return c
}

// NewConnWithSink returns a connection writing into an arbitrary sink.
func NewConnWithSink(cfg *config.Config, sink transport.Sink) *Conn {
	cfg = normalize(cfg)

	return &Conn{
		cfg:     cfg,
		sink:    sink,
		signals: pipeline.New(),
		buffers: pool.NewObjectPool[[]byte](cfg.Body.BuffersPrealloc),
	}
}

func normalize(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.Default()
	}

	if cfg.Body.StreamBufferSize < minStreamBuffer {
		log.Printf(
			"misconfiguration: stream buffer size (%d) is too small. Setting it to %d\n",
			cfg.Body.StreamBufferSize, minStreamBuffer,
		)
		cfg.Body.StreamBufferSize = minStreamBuffer
	}

	if cfg.Body.Watermark > cfg.NET.WriteBufferSize.Maximal {
		log.Printf(
			"misconfiguration: body watermark (%d) exceeds maximal write buffer size (%d). Lowering it\n",
			cfg.Body.Watermark, cfg.NET.WriteBufferSize.Maximal,
		)
		cfg.Body.Watermark = cfg.NET.WriteBufferSize.Maximal
	}

	return cfg
}

// Encoder lends the encoder for the next request.
func (c *Conn) Encoder() (*encoder.Encoder, error) {
	switch {
	case c.broken:
		return nil, ErrBroken
	case c.lent:
		return nil, ErrEncoderLent
	case c.signals.InFlight.Load() != pipeline.None:
		return nil, ErrResponsePending
	}

	c.lent = true

	return encoder.New(c.sink, c.signals), nil
}

// Release takes the completed request back and makes a drain attempt.
func (c *Conn) Release(done *encoder.Done) error {
	if !done.Of(c.sink) {
		panic("BUG: releasing a request written into a foreign connection")
	}

	c.lent = false
	if _, _, err := c.sink.Drain(); err != nil {
		c.broken = true
		return err
	}

	return nil
}

// Abort marks the connection as unusable. It must be called when a lent encoder was lost
// or left in the middle of a request.
func (c *Conn) Abort() {
	c.lent = false
	c.broken = true
}

// Flush blocks until every buffered byte is written, the sink fails or the context is done.
func (c *Conn) Flush(ctx context.Context) error {
	writable := c.sink.Writable()

	for {
		if _, _, err := c.sink.Drain(); err != nil {
			c.broken = true
			return err
		}

		if c.sink.Buffered() == 0 {
			return nil
		}

		select {
		case <-writable:
		case <-ctx.Done():
			c.broken = true
			return ctx.Err()
		}
	}
}

// InFlight returns the kind of the request the response is awaited to.
func (c *Conn) InFlight() pipeline.Kind {
	return c.signals.InFlight.Load()
}

// ResponseDone must be called by the response reader once the response is consumed.
func (c *Conn) ResponseDone() {
	c.signals.InFlight.Reset()
}

// Reusable tells whether another request may be sent over the connection. It's false
// once any request asked for the connection to be closed.
func (c *Conn) Reusable() bool {
	return !c.broken && !c.signals.Close.Requested()
}

func (c *Conn) Close() (err error) {
	c.broken = true

	for _, closer := range c.closers {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

func (c *Conn) acquireBuffer() []byte {
	if buff := c.buffers.Acquire(); buff != nil {
		return buff
	}

	return make([]byte, c.cfg.Body.StreamBufferSize)
}

func (c *Conn) releaseBuffer(buff []byte) {
	c.buffers.Release(buff)
}
