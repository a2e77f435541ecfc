package codec

import "github.com/klauspost/compress/zlib"

// NewDeflate returns the deflate coding, which is the zlib format wrapping a deflate stream.
func NewDeflate() Codec {
	return newBaseCodec("deflate", func() writeResetter {
		writer, err := zlib.NewWriterLevel(nil, 5)
		if err != nil {
			panic(err)
		}

		return writer
	})
}
