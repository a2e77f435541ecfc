package client

import (
	"bytes"
	"io"
	"strings"

	"github.com/indigo-web/reqwire/http/codec"
	"github.com/indigo-web/reqwire/http/headers"
	"github.com/indigo-web/reqwire/http/method"
	"github.com/indigo-web/reqwire/http/mime"
	"github.com/indigo-web/reqwire/http/proto"
	"github.com/indigo-web/reqwire/kv"
	json "github.com/json-iterator/go"
)

// Request describes a request to be sent by Send. Content-Length and Transfer-Encoding
// are chosen depending on the body, so setting them in Headers has no effect.
type Request struct {
	Method  method.Method
	Path    string
	Query   Query
	Proto   proto.Protocol
	Headers *kv.Storage
	body    io.Reader
	// bodySize is -1 when the length isn't known in advance.
	bodySize int64
	codec    codec.Codec
}

func NewRequest() *Request {
	return &Request{
		Method:  method.GET,
		Path:    "/",
		Query:   NewQuery(),
		Proto:   proto.HTTP11,
		Headers: kv.New(),
	}
}

func (r *Request) WithMethod(m method.Method) *Request {
	r.Method = m
	return r
}

func (r *Request) WithPath(path string) *Request {
	r.Path = path
	return r
}

func (r *Request) WithProto(p proto.Protocol) *Request {
	r.Proto = p
	return r
}

// Header adds the values of the header. Multiple values are written as separate lines.
func (r *Request) Header(key string, values ...string) *Request {
	for _, value := range values {
		r.Headers.Add(key, value)
	}

	return r
}

// Bytes sets the body. The slice isn't copied, so it must not be modified until the
// request is sent.
func (r *Request) Bytes(b []byte) *Request {
	return r.Stream(bytes.NewReader(b), int64(len(b)))
}

func (r *Request) String(str string) *Request {
	return r.Stream(strings.NewReader(str), int64(len(str)))
}

// Stream sets the body to be read from the reader. If the size is negative, the body
// is sent in chunked transfer coding. Otherwise, exactly size bytes are expected.
func (r *Request) Stream(reader io.Reader, size int64) *Request {
	r.body = reader
	r.bodySize = max(size, -1)
	return r
}

// JSON serializes the model as the body and sets the Content-Type.
func (r *Request) JSON(model any) (*Request, error) {
	data, err := json.ConfigDefault.Marshal(model)
	if err != nil {
		return r, err
	}

	r.Headers.Set(headers.ContentType, mime.JSON)

	return r.Bytes(data), nil
}

// Compress makes the body to be compressed by the codec. Compressed bodies are always
// sent in chunked transfer coding.
func (r *Request) Compress(c codec.Codec) *Request {
	r.codec = c
	return r
}

// target returns the request-target, which is the path with the query, if any.
func (r *Request) target() string {
	if len(r.Query) == 0 {
		return r.Path
	}

	return r.Path + "?" + r.Query.Encode()
}

// chunked tells whether the body length is unknown in advance.
func (r *Request) chunked() bool {
	return r.body != nil && (r.bodySize < 0 || r.codec != nil)
}

// requiresLength tells whether a request without body still has to declare an empty one.
func (r *Request) requiresLength() bool {
	switch r.Method {
	case method.POST, method.PUT, method.PATCH:
		return true
	default:
		return false
	}
}
