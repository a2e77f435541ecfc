package headers

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

const (
	Connection       = "Connection"
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	ContentEncoding  = "Content-Encoding"
	TransferEncoding = "Transfer-Encoding"
	Host             = "Host"
)

// tchar = "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" / "-" / "." / "^" / "_" / "`" / "|" / "~" / DIGIT / ALPHA
var tchar = [256]bool{
	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true, '*': true, '+': true,
	'-': true, '.': true, '^': true, '_': true, '`': true, '|': true, '~': true,
	'0': true, '1': true, '2': true, '3': true, '4': true, '5': true, '6': true, '7': true,
	'8': true, '9': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true, 'H': true,
	'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true, 'O': true, 'P': true,
	'Q': true, 'R': true, 'S': true, 'T': true, 'U': true, 'V': true, 'W': true, 'X': true,
	'Y': true, 'Z': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true, 'h': true,
	'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true, 'o': true, 'p': true,
	'q': true, 'r': true, 's': true, 't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
}

// IsToken reports whether str is a non-empty token. Field names and methods are tokens.
func IsToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if !tchar[str[i]] {
			return false
		}
	}

	return true
}

// ValidValue reports whether a field value may be put on the wire as-is. Control bytes
// except horizontal tab are forbidden, including CR and LF, which would otherwise allow
// injecting extra header lines.
func ValidValue[T ~string | ~[]byte](value T) bool {
	for i := 0; i < len(value); i++ {
		switch c := value[i]; {
		case c == '\t':
		case c < 0x20, c == 0x7f:
			return false
		}
	}

	return true
}

// Is compares a field name with a well-known one, ignoring the case.
func Is(name, wellknown string) bool {
	return strcomp.EqualFold(name, wellknown)
}

// IsClose reports whether the value of the Connection header contains the close option.
func IsClose(value string) bool {
	return hasToken(value, "close")
}

// IsChunked reports whether a Transfer-Encoding value consists of the chunked coding only.
func IsChunked(value string) bool {
	return strcomp.EqualFold(trimOWS(value), "chunked")
}

func hasToken(list, token string) bool {
	for len(list) > 0 {
		var elem string
		elem, list, _ = strings.Cut(list, ",")
		if strcomp.EqualFold(trimOWS(elem), token) {
			return true
		}
	}

	return false
}

func trimOWS(str string) string {
	return strings.Trim(str, " \t")
}
