package vision

// Ring is a fixed-capacity ring buffer of float64 samples. Pushing past
// capacity evicts the oldest sample. Statistics are always computed over
// the current contents, never cumulatively.
type Ring struct {
	buf  []float64
	head int
	size int
}

// NewRing creates a ring buffer holding at most capacity samples.
func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest one when the buffer is full.
func (r *Ring) Push(v float64) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	return r.size
}

// Values returns the samples in insertion order, oldest first.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Mean returns the arithmetic mean of the current contents, or 0 when empty.
func (r *Ring) Mean() float64 {
	if r.size == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r.size; i++ {
		sum += r.buf[(r.head+i)%len(r.buf)]
	}
	return sum / float64(r.size)
}

// Variance returns the population variance of the current contents, or 0
// when empty.
func (r *Ring) Variance() float64 {
	if r.size == 0 {
		return 0
	}
	mean := r.Mean()
	var sum float64
	for i := 0; i < r.size; i++ {
		d := r.buf[(r.head+i)%len(r.buf)] - mean
		sum += d * d
	}
	return sum / float64(r.size)
}
