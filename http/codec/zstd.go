package codec

import "github.com/klauspost/compress/zstd"

func NewZSTD() Codec {
	return newBaseCodec("zstd", func() writeResetter {
		// blocks must be written by the goroutine feeding the compressor, as the
		// destination isn't safe for concurrent use
		w, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}

		return w
	})
}
