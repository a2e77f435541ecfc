package requestgen

import (
	"strconv"
	"strings"

	"github.com/indigo-web/reqwire/kv"
)

// Headers returns n headers, the last one being Host.
func Headers(n int) *kv.Storage {
	hdrs := kv.NewPrealloc(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("some-random-header-name-nobody-cares-about"+strconv.Itoa(i), strings.Repeat("b", 100))
	}

	return hdrs.Add("Host", "localhost")
}

func HeadersBlock(hdrs *kv.Storage) (buff []byte) {
	for key, value := range hdrs.Pairs() {
		buff = append(buff, key+": "+value+"\r\n"...)
	}

	return buff
}

// Generate returns a bodiless HTTP/1.1 request as it is expected to appear on the wire.
func Generate(method, path string, hdrs *kv.Storage) (request []byte) {
	request = append(request, method+" "+path+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(hdrs)...)

	return append(request, '\r', '\n')
}
