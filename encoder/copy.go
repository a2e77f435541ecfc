package encoder

import (
	"context"
	"io"
)

// Copy writes everything read from r as the body, reading at most len(buff) bytes at a
// time. After each piece it waits for the buffer to go below watermark, so no more than
// about watermark+len(buff) bytes are ever staged in memory, whatever the socket speed.
//
// The returned encoder is the one to continue with. It's nil if waiting failed, in which
// case the connection is unusable. Errors returned by r are passed through with the
// encoder still usable, though the body is incomplete.
func Copy(ctx context.Context, enc *Encoder, r io.Reader, buff []byte, watermark int) (*Encoder, int64, error) {
	var total int64

	for {
		n, err := r.Read(buff)
		if n > 0 {
			enc.WriteBody(buff[:n])
			total += int64(n)

			var werr error
			if enc, werr = enc.WaitFlush(watermark).Wait(ctx); werr != nil {
				return nil, total, werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return enc, total, nil
		default:
			return enc, total, err
		}
	}
}
