package config

import "time"

type (
	NETWriteBufferSize struct {
		Default, Maximal int
	}
)

type (
	NET struct {
		// WriteBufferSize is the initial capacity of the connection output buffer. The buffer
		// may grow further, but buffers bigger than Maximal aren't kept for reuse after
		// being written.
		WriteBufferSize NETWriteBufferSize
		// WriteTimeout limits every single write into the socket. Zero disables it.
		WriteTimeout time.Duration
	}

	Body struct {
		// Watermark is the default back-pressure threshold: a body producer is suspended until
		// fewer bytes than this are left unwritten.
		Watermark int
		// StreamBufferSize is the size of a buffer used to read streamed request bodies.
		StreamBufferSize int
		// BuffersPrealloc is the number of stream buffers kept for reuse per connection.
		BuffersPrealloc int
	}
)

// Config holds tunables of the request writer, mainly buffer sizes and limits.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET  NET
	Body Body
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			WriteBufferSize: NETWriteBufferSize{
				Default: 2 * 1024,
				Maximal: 64 * 1024,
			},
			WriteTimeout: 90 * time.Second,
		},
		Body: Body{
			Watermark:        16 * 1024,
			StreamBufferSize: 4 * 1024,
			BuffersPrealloc:  2,
		},
	}
}
