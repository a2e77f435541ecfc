package message

import (
	"testing"

	"github.com/indigo-web/reqwire/http/headers"
	"github.com/indigo-web/reqwire/http/proto"
	"github.com/stretchr/testify/require"
)

func withHeaders(t *testing.T, protocol proto.Protocol) (*Message, []byte) {
	m := new(Message)
	buf := m.RequestLine(nil, "POST", "/", protocol)
	require.Equal(t, "POST / "+protocol.String()+"\r\n", string(buf))

	return m, buf
}

func requireMisuse(t *testing.T, fn func()) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		_, ok := r.(MisuseError)
		require.True(t, ok, "panic value must be a MisuseError, got %T", r)
	}()

	fn()
}

func TestMessage_Fixed(t *testing.T) {
	t.Run("zero length", func(t *testing.T) {
		m := new(Message)
		buf := m.RequestLine(nil, "GET", "/", proto.HTTP11)
		buf, err := m.AddHeader(buf, "Host", "example.com")
		require.NoError(t, err)
		buf, err = m.AddLength(buf, 0)
		require.NoError(t, err)
		buf, body := m.DoneHeaders(buf)
		require.True(t, body)
		buf = m.Done(buf)
		require.True(t, m.IsDone())
		require.Equal(t, "GET / HTTP/1.1\r\nHost: example.com\r\nContent-Length: 0\r\n\r\n", string(buf))
	})

	t.Run("exact body", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, err := m.AddLength(buf, 5)
		require.NoError(t, err)
		buf, _ = m.DoneHeaders(buf)
		buf = m.WriteBody(buf, []byte("ab"))
		buf = m.WriteBody(buf, nil)
		buf = m.WriteBody(buf, []byte("cde"))
		buf = m.Done(buf)
		require.Equal(t, "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nabcde", string(buf))
		require.Equal(t, uint64(5), m.Written())
	})

	t.Run("overflow is rejected before appending", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.AddLength(buf, 3)
		buf, _ = m.DoneHeaders(buf)
		buf = m.WriteBody(buf, []byte("ab"))
		before := string(buf)
		requireMisuse(t, func() {
			buf = m.WriteBody(buf, []byte("cd"))
		})
		require.Equal(t, before, string(buf))
		require.Equal(t, uint64(2), m.Written())
	})

	t.Run("short body", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.AddLength(buf, 3)
		buf, _ = m.DoneHeaders(buf)
		buf = m.WriteBody(buf, []byte("ab"))
		requireMisuse(t, func() {
			m.Done(buf)
		})
	})
}

func TestMessage_Chunked(t *testing.T) {
	t.Run("chunks", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, err := m.AddChunked(buf)
		require.NoError(t, err)
		buf, _ = m.DoneHeaders(buf)
		start := len(buf)
		buf = m.WriteBody(buf, []byte("abc"))
		buf = m.WriteBody(buf, []byte("de"))
		buf = m.Done(buf)
		require.Equal(t, "3\r\nabc\r\n2\r\nde\r\n0\r\n\r\n", string(buf[start:]))
		require.Contains(t, string(buf[:start]), "Transfer-Encoding: chunked\r\n")
	})

	t.Run("hex length", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.AddChunked(buf)
		buf, _ = m.DoneHeaders(buf)
		start := len(buf)
		payload := make([]byte, 0x1a2)
		buf = m.WriteBody(buf, payload)
		require.Equal(t, "1a2\r\n", string(buf[start:start+5]))
	})

	t.Run("empty write is skipped", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.AddChunked(buf)
		buf, _ = m.DoneHeaders(buf)
		before := len(buf)
		buf = m.WriteBody(buf, nil)
		require.Equal(t, before, len(buf))
	})

	t.Run("done twice", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.AddChunked(buf)
		buf, _ = m.DoneHeaders(buf)
		buf = m.Done(buf)
		require.Equal(t, 1, countTrailers(buf))
		requireMisuse(t, func() {
			buf = m.Done(buf)
		})
		require.Equal(t, 1, countTrailers(buf))
	})

	t.Run("HTTP/1.0", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP10)
		before := string(buf)
		buf, err := m.AddChunked(buf)
		require.ErrorIs(t, err, headers.ErrChunkedHTTP10)
		require.Equal(t, before, string(buf))
		_, err = m.AddLength(buf, 1)
		require.NoError(t, err)
	})
}

func countTrailers(buf []byte) (n int) {
	for i := 0; i+len(chunkedTrailer) <= len(buf); i++ {
		if string(buf[i:i+len(chunkedTrailer)]) == string(chunkedTrailer) {
			n++
		}
	}

	return n
}

func TestMessage_DuplicateBodyLength(t *testing.T) {
	type step func(m *Message, buf []byte) ([]byte, error)

	length := func(m *Message, buf []byte) ([]byte, error) { return m.AddLength(buf, 10) }
	chunked := func(m *Message, buf []byte) ([]byte, error) { return m.AddChunked(buf) }
	lengthHeader := func(m *Message, buf []byte) ([]byte, error) {
		return m.AddHeader(buf, "content-length", "10")
	}
	chunkedHeader := func(m *Message, buf []byte) ([]byte, error) {
		return m.AddHeader(buf, "TRANSFER-ENCODING", "chunked")
	}

	steps := map[string]step{
		"length":         length,
		"chunked":        chunked,
		"length header":  lengthHeader,
		"chunked header": chunkedHeader,
	}

	for firstName, first := range steps {
		for secondName, second := range steps {
			t.Run(firstName+" then "+secondName, func(t *testing.T) {
				m, buf := withHeaders(t, proto.HTTP11)
				buf, err := first(m, buf)
				require.NoError(t, err)
				before := string(buf)
				buf, err = second(m, buf)
				require.ErrorIs(t, err, headers.ErrDuplicateBodyLength)
				require.Equal(t, before, string(buf))
			})
		}
	}
}

func TestMessage_AddHeader(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		tcs := []struct {
			Name, Key, Value string
			Err              error
		}{
			{"empty name", "", "v", headers.ErrInvalidName},
			{"name with colon", "Host:", "v", headers.ErrInvalidName},
			{"name with space", "X Y", "v", headers.ErrInvalidName},
			{"CRLF in value", "X-Y", "v\r\nInjected: yes", headers.ErrInvalidValue},
			{"NUL in value", "X-Y", "v\x00", headers.ErrInvalidValue},
			{"signed length", "Content-Length", "+5", headers.ErrInvalidValue},
			{"empty length", "Content-Length", "", headers.ErrInvalidValue},
			{"overflowing length", "Content-Length", "18446744073709551616", headers.ErrInvalidValue},
			{"gzip coding", "Transfer-Encoding", "gzip", headers.ErrUnsupportedTransferEncoding},
			{"stacked coding", "Transfer-Encoding", "gzip, chunked", headers.ErrUnsupportedTransferEncoding},
		}

		for _, tc := range tcs {
			t.Run(tc.Name, func(t *testing.T) {
				m, buf := withHeaders(t, proto.HTTP11)
				before := string(buf)
				buf, err := m.AddHeader(buf, tc.Key, tc.Value)
				require.ErrorIs(t, err, tc.Err)
				require.Equal(t, before, string(buf))
			})
		}
	})

	t.Run("routed length", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, err := m.AddHeader(buf, "content-length", "18446744073709551615")
		require.NoError(t, err)
		require.Contains(t, string(buf), "Content-Length: 18446744073709551615\r\n")
	})

	t.Run("tab in value", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, err := m.AddHeader(buf, "X-Tab", "a\tb")
		require.NoError(t, err)
		require.Contains(t, string(buf), "X-Tab: a\tb\r\n")
	})
}

func TestMessage_WrongState(t *testing.T) {
	t.Run("request line twice", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		requireMisuse(t, func() {
			m.RequestLine(buf, "GET", "/", proto.HTTP11)
		})
	})

	t.Run("header before request line", func(t *testing.T) {
		requireMisuse(t, func() {
			_, _ = new(Message).AddHeader(nil, "Host", "x")
		})
	})

	t.Run("header after headers are done", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.DoneHeaders(buf)
		requireMisuse(t, func() {
			_, _ = m.AddHeader(buf, "Host", "x")
		})
		requireMisuse(t, func() {
			_, _ = m.AddLength(buf, 1)
		})
		requireMisuse(t, func() {
			m.DoneHeaders(buf)
		})
	})

	t.Run("body before headers are done", func(t *testing.T) {
		m := new(Message)
		buf := m.RequestLine(nil, "HEAD", "/x", proto.HTTP11)
		requireMisuse(t, func() {
			m.WriteBody(buf, []byte("a"))
		})
		requireMisuse(t, func() {
			m.Done(buf)
		})
	})

	t.Run("body without framing", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.DoneHeaders(buf)
		requireMisuse(t, func() {
			m.WriteBody(buf, nil)
		})
		buf = m.Done(buf)
		require.Equal(t, "POST / HTTP/1.1\r\n\r\n", string(buf))
	})

	t.Run("bad request line", func(t *testing.T) {
		for _, tc := range []struct{ Method, Path string }{
			{"GET /", "/"},
			{"", "/"},
			{"GET", ""},
			{"GET", "/a b"},
			{"GET", "/a\r\nHost: evil"},
		} {
			requireMisuse(t, func() {
				new(Message).RequestLine(nil, tc.Method, tc.Path, proto.HTTP11)
			})
		}

		requireMisuse(t, func() {
			new(Message).RequestLine(nil, "GET", "/", proto.Unknown)
		})
	})

	t.Run("reset", func(t *testing.T) {
		m, buf := withHeaders(t, proto.HTTP11)
		buf, _ = m.DoneHeaders(buf)
		m.Done(buf)
		m.Reset()
		require.False(t, m.IsDone())
		require.Equal(t, "GET / HTTP/1.1\r\n", string(m.RequestLine(nil, "GET", "/", proto.HTTP11)))
	})
}

func TestParseUint(t *testing.T) {
	for raw, want := range map[string]uint64{
		"0":                    0,
		"42":                   42,
		"18446744073709551615": 18446744073709551615,
	} {
		num, ok := parseUint(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, num)
	}

	for _, raw := range []string{"", "-1", "1 ", "0x10", "18446744073709551616", "99999999999999999999"} {
		_, ok := parseUint(raw)
		require.False(t, ok, raw)
	}
}
