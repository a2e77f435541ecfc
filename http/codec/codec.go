// Package codec provides content codings for request bodies. Compressed bodies have no
// known length in advance, so they are always sent in chunked transfer coding.
package codec

import "io"

type Codec interface {
	// Token returns a coding token associated with the codec itself, as it goes into
	// the Content-Encoding header.
	Token() string
	New() Compressor
}

type Compressor interface {
	io.WriteCloser
	// ResetCompressor makes the compressor write into w. Close flushes the compressed
	// stream without closing w.
	ResetCompressor(w io.Writer)
}

type writeResetter interface {
	io.WriteCloser
	Reset(dst io.Writer)
}

type baseCodec struct {
	token   string
	newInst func() writeResetter
}

func newBaseCodec(token string, newInst func() writeResetter) baseCodec {
	return baseCodec{
		token:   token,
		newInst: newInst,
	}
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) New() Compressor {
	return &baseInstance{w: b.newInst()}
}

type baseInstance struct {
	w writeResetter
}

func (b *baseInstance) ResetCompressor(w io.Writer) {
	b.w.Reset(w)
}

func (b *baseInstance) Write(p []byte) (n int, err error) {
	return b.w.Write(p)
}

func (b *baseInstance) Close() error {
	return b.w.Close()
}
