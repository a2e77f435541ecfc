package client

import (
	"context"
	"errors"
	"io"

	"github.com/indigo-web/reqwire/encoder"
	"github.com/indigo-web/reqwire/http/headers"
	"github.com/indigo-web/reqwire/http/proto"
)

var ErrShortBody = errors.New("request body is shorter than its declared length")

// Send writes the request into the connection and waits until it's completely flushed.
// Bodies are streamed with back-pressure: no more than about Body.Watermark bytes are
// buffered at any time.
//
// Content-Length and Transfer-Encoding in the request headers are ignored, as the framing
// is chosen by Send itself. A failed request leaves the connection broken, except for
// requests rejected before anything was written.
func Send(ctx context.Context, conn *Conn, req *Request) error {
	if req.Proto == proto.HTTP10 && req.chunked() {
		return headers.ErrChunkedHTTP10
	}

	enc, err := conn.Encoder()
	if err != nil {
		return err
	}

	if enc, err = writeRequest(ctx, conn, enc, req); err != nil {
		conn.Abort()
		return err
	}

	if err = conn.Release(enc.Done()); err != nil {
		return err
	}

	return conn.Flush(ctx)
}

func writeRequest(ctx context.Context, conn *Conn, enc *encoder.Encoder, req *Request) (*encoder.Encoder, error) {
	enc.RequestLine(req.Method.String(), req.target(), req.Proto)

	for key, value := range req.Headers.Pairs() {
		if headers.Is(key, headers.ContentLength) || headers.Is(key, headers.TransferEncoding) {
			continue
		}

		if err := enc.AddHeader(key, value); err != nil {
			return nil, err
		}
	}

	if err := writeFraming(enc, req); err != nil {
		return nil, err
	}

	enc.DoneHeaders()

	if req.body == nil {
		return enc, nil
	}

	buff := conn.acquireBuffer()
	defer conn.releaseBuffer(buff)

	body := req.body
	if req.bodySize >= 0 {
		body = io.LimitReader(body, req.bodySize)
	}

	var (
		n   int64
		err error
	)

	if req.codec != nil {
		enc, n, err = compress(ctx, enc, req, body, buff, conn.cfg.Body.Watermark)
	} else {
		enc, n, err = encoder.Copy(ctx, enc, body, buff, conn.cfg.Body.Watermark)
	}

	switch {
	case err != nil:
		return nil, err
	case req.bodySize >= 0 && n < req.bodySize:
		return nil, ErrShortBody
	}

	return enc, nil
}

func writeFraming(enc *encoder.Encoder, req *Request) error {
	switch {
	case req.body == nil:
		if req.requiresLength() {
			return enc.AddLength(0)
		}

		return nil
	case req.codec != nil:
		if err := enc.AddHeader(headers.ContentEncoding, req.codec.Token()); err != nil {
			return err
		}

		return enc.AddChunked()
	case req.bodySize < 0:
		return enc.AddChunked()
	default:
		return enc.AddLength(uint64(req.bodySize))
	}
}

// compress streams the body through the request's codec. The compressor writes into the
// encoder, so it must not be fed while the encoder is held by a flush wait.
func compress(
	ctx context.Context, enc *encoder.Encoder, req *Request, body io.Reader, buff []byte, watermark int,
) (*encoder.Encoder, int64, error) {
	compressor := req.codec.New()
	compressor.ResetCompressor(enc)

	var total int64

	for {
		n, err := body.Read(buff)
		if n > 0 {
			if _, werr := compressor.Write(buff[:n]); werr != nil {
				return nil, total, werr
			}

			total += int64(n)

			var werr error
			if enc, werr = enc.WaitFlush(watermark).Wait(ctx); werr != nil {
				return nil, total, werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return enc, total, compressor.Close()
		default:
			return nil, total, err
		}
	}
}
