package headers

// Error is a recoverable header validation failure. The set of values is closed: every
// failure the encoder may report is one of the variables below, so they can be compared
// directly or via errors.Is.
type Error uint8

const (
	_ Error = iota
	errInvalidName
	errInvalidValue
	errDuplicateBodyLength
	errUnsupportedTransferEncoding
	errChunkedHTTP10
)

var (
	// ErrInvalidName is returned when a field name isn't a non-empty token.
	ErrInvalidName error = errInvalidName
	// ErrInvalidValue is returned when a field value contains CR, LF or other control bytes.
	// Malformed Content-Length values are reported with it, too.
	ErrInvalidValue error = errInvalidValue
	// ErrDuplicateBodyLength is returned when the body framing was already chosen, no
	// matter whether by Content-Length or by chunked transfer coding.
	ErrDuplicateBodyLength error = errDuplicateBodyLength
	// ErrUnsupportedTransferEncoding is returned for any transfer coding except chunked.
	ErrUnsupportedTransferEncoding error = errUnsupportedTransferEncoding
	// ErrChunkedHTTP10 is returned when chunked framing is requested for an HTTP/1.0 message.
	ErrChunkedHTTP10 error = errChunkedHTTP10
)

func (e Error) Error() string {
	switch e {
	case errInvalidName:
		return "header: invalid field name"
	case errInvalidValue:
		return "header: invalid field value"
	case errDuplicateBodyLength:
		return "header: duplicate body length"
	case errUnsupportedTransferEncoding:
		return "header: unsupported transfer encoding"
	case errChunkedHTTP10:
		return "header: chunked transfer encoding is not allowed in HTTP/1.0"
	default:
		return "header: unknown error"
	}
}
