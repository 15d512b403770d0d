package model

// DefaultHistorySize is the number of samples kept per history window.
const DefaultHistorySize = 60

// History is a fixed-capacity ring of float64 samples. The oldest sample is
// evicted once the ring is full. Not safe for concurrent use.
type History struct {
	buf   []float64
	start int
	n     int
}

// NewHistory returns an empty ring. size <= 0 selects DefaultHistorySize.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{buf: make([]float64, size)}
}

// Push appends v, dropping the oldest sample when full.
func (h *History) Push(v float64) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = v
		h.n++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

func (h *History) Len() int { return h.n }
func (h *History) Cap() int { return len(h.buf) }

// Values returns a copy of the samples, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Last returns up to n of the most recent samples, oldest first.
func (h *History) Last(n int) []float64 {
	vals := h.Values()
	if n >= 0 && n < len(vals) {
		return vals[len(vals)-n:]
	}
	return vals
}

// HistorySnapshot is a copy of the CPU and memory windows at one point in time.
type HistorySnapshot struct {
	CPU    []float64 `json:"cpu"`
	Memory []float64 `json:"memory"`
}
