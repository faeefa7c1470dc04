package sink

import "sync"

// sampleRing is a fixed-capacity FIFO of float32 samples bridging the
// driver goroutine (writer) and the platform audio callback (reader).
//
// Both sides hold the mutex only for the copy itself, never for I/O, so the
// blocking window on either goroutine is bounded by the ring capacity. When
// the writer outruns the reader the oldest samples are dropped; when the
// reader outruns the writer it receives silence. Both degradations are
// audible at worst, never blocking.
type sampleRing struct {
	mu   sync.Mutex
	buf  []float32
	head int // next read position
	size int // samples currently buffered
}

func newSampleRing(capacity int) *sampleRing {
	return &sampleRing{buf: make([]float32, capacity)}
}

// write appends samples, dropping the oldest buffered samples on overflow.
func (r *sampleRing) write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		if r.size == len(r.buf) {
			r.head = (r.head + 1) % len(r.buf)
			r.size--
		}
		r.buf[(r.head+r.size)%len(r.buf)] = s
		r.size++
	}
}

// read fills out from the ring, zero-filling any shortfall. Returns the
// number of real samples copied.
func (r *sampleRing) read(out []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(out)
	if n > r.size {
		n = r.size
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
	}
	r.size -= n

	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return n
}

// buffered reports the number of samples waiting to be read.
func (r *sampleRing) buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
