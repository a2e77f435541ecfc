package message

import "math"

// parseUint accepts non-empty strings of decimal digits only. Signs, whitespace and
// values overflowing uint64 are rejected.
func parseUint(raw string) (num uint64, ok bool) {
	if len(raw) == 0 {
		return 0, false
	}

	for i := 0; i < len(raw); i++ {
		char := raw[i] - '0'
		if char > 9 {
			return 0, false
		}

		if num > (math.MaxUint64-uint64(char))/10 {
			return 0, false
		}

		num = num*10 + uint64(char)
	}

	return num, true
}
