package message

type messageState uint8

const (
	eRequestLine messageState = iota
	eHeaders
	eBody
	eDone
)

func (s messageState) String() string {
	switch s {
	case eRequestLine:
		return "request line expected"
	case eHeaders:
		return "headers"
	case eBody:
		return "body"
	case eDone:
		return "done"
	default:
		return "unknown"
	}
}

type framing uint8

const (
	// fUnset is held until either the length or chunked coding is chosen. If headers are
	// closed while still unset, the message has no body at all.
	fUnset framing = iota
	fNone
	fFixed
	fChunked
)
