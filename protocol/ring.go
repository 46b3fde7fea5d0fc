package protocol

// ByteRing is a fixed-capacity circular byte buffer for serial I/O.
//
// It is safe for one producer and one consumer running in different
// execution contexts (interrupt handler vs main loop) without locking:
// the producer only advances the write cursor and the consumer only
// advances the read cursor. One slot is always left empty so that
// read==write unambiguously means "empty".
type ByteRing struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewByteRing creates a ByteRing backed by an array of the given size.
// Usable capacity is size-1.
func NewByteRing(size int) *ByteRing {
	return &ByteRing{
		buf:  make([]byte, size),
		size: size,
	}
}

// Write appends data to the ring. On a full ring the newest bytes are
// dropped; Write never blocks and never overwrites unread data.
// Returns the number of bytes actually stored.
func (r *ByteRing) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (r.write + 1) % r.size
		if nextWrite == r.read {
			// Buffer full
			break
		}
		r.buf[r.write] = b
		r.write = nextWrite
		written++
	}
	return written
}

// WriteByte stores a single byte, dropping it if the ring is full.
func (r *ByteRing) WriteByte(b byte) bool {
	nextWrite := (r.write + 1) % r.size
	if nextWrite == r.read {
		return false
	}
	r.buf[r.write] = b
	r.write = nextWrite
	return true
}

// WriteString appends a string, dropping the tail on overflow.
func (r *ByteRing) WriteString(s string) int {
	written := 0
	for i := 0; i < len(s); i++ {
		if !r.WriteByte(s[i]) {
			break
		}
		written++
	}
	return written
}

// Read reads up to len(data) bytes from the ring.
func (r *ByteRing) Read(data []byte) int {
	read := 0
	for i := range data {
		if r.read == r.write {
			// Buffer empty
			break
		}
		data[i] = r.buf[r.read]
		r.read = (r.read + 1) % r.size
		read++
	}
	return read
}

// Rewind moves the read cursor back n bytes, logically un-reading them.
// Used by the console TX pump to push a chunk back when the transport
// reports busy, so the same chunk is retried on the next service call.
// The caller must not have written over the rewound region; with the
// one-empty-slot convention a rewind immediately after a Read of n bytes
// is always safe.
func (r *ByteRing) Rewind(n int) {
	for i := 0; i < n; i++ {
		prev := r.read - 1
		if prev < 0 {
			prev = r.size - 1
		}
		if prev == r.write {
			break
		}
		r.read = prev
	}
}

// Available returns the number of bytes waiting to be read.
func (r *ByteRing) Available() int {
	if r.write >= r.read {
		return r.write - r.read
	}
	return r.size - r.read + r.write
}

// Free returns the number of bytes that can still be written.
func (r *ByteRing) Free() int {
	return r.size - r.Available() - 1
}

// IsEmpty returns true if no bytes are waiting.
func (r *ByteRing) IsEmpty() bool {
	return r.read == r.write
}

// Reset clears the ring. Only call when producer and consumer are quiescent.
func (r *ByteRing) Reset() {
	r.read = 0
	r.write = 0
}
