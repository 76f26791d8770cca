package indicator

// Ring is a fixed-capacity float buffer. Once full, each push evicts the
// oldest value.
type Ring struct {
	data  []float64
	head  int
	count int
}

// NewRing allocates a ring with the given capacity (minimum 1).
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]float64, capacity)}
}

// Push appends a value, returning the evicted value and whether one was evicted.
func (r *Ring) Push(v float64) (evicted float64, full bool) {
	if r.count < len(r.data) {
		r.data[(r.head+r.count)%len(r.data)] = v
		r.count++
		return 0, false
	}
	evicted = r.data[r.head]
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	return evicted, true
}

// Len reports the number of stored values.
func (r *Ring) Len() int { return r.count }

// At returns the i-th stored value, oldest first.
func (r *Ring) At(i int) (float64, bool) {
	if i < 0 || i >= r.count {
		return 0, false
	}
	return r.data[(r.head+i)%len(r.data)], true
}

// Last returns the newest value.
func (r *Ring) Last() (float64, bool) {
	return r.At(r.count - 1)
}
