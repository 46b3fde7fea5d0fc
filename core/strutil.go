package core

// itoa converts an integer to a string without using the fmt package.
// Lightweight alternative for embedded targets.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var buf [12]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

// utoa converts an unsigned integer to a string.
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// parseUint parses a decimal number, stopping at the first non-digit.
// Returns false if s does not start with a digit. Saturates at
// 0xFFFFFFFF rather than wrapping.
func parseUint(s string) (uint32, bool) {
	if len(s) == 0 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		d := uint32(c - '0')
		if v > (0xFFFFFFFF-d)/10 {
			return 0xFFFFFFFF, true
		}
		v = v*10 + d
	}
	return v, true
}
