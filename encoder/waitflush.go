package encoder

import "context"

// WaitFlush is a one-shot suspension point. It's the back-pressure point of the write
// path: the body producer doesn't get the encoder back until the socket catches up.
type WaitFlush struct {
	enc       *Encoder
	watermark int
	writable  <-chan struct{}
}

// Poll makes a non-blocking drain attempt and returns the encoder if fewer than
// watermark bytes are buffered. Otherwise, the caller should wait for the sink's
// Writable notification and poll again.
//
// Panics if called after the encoder was returned once.
func (w *WaitFlush) Poll() (enc *Encoder, ready bool, err error) {
	if w.enc == nil {
		panic(MisuseError{Op: "wait flush", Reason: "polled after completion"})
	}

	if _, _, err = w.enc.sink.Drain(); err != nil {
		return nil, false, err
	}

	if w.enc.sink.Buffered() >= w.watermark {
		return nil, false, nil
	}

	enc, w.enc = w.enc, nil
	enc.handle = hActive

	return enc, true, nil
}

// Wait polls until the encoder is returned, the sink fails or the context is done. On
// error the encoder is lost and the connection must be treated as closed, as the request
// can't be completed anymore.
func (w *WaitFlush) Wait(ctx context.Context) (*Encoder, error) {
	for {
		enc, ready, err := w.Poll()
		if err != nil || ready {
			return enc, err
		}

		select {
		case <-w.writable:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
