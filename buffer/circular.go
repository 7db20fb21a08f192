package buffer

// CircularFloat is a fixed size circular buffer of float64 values. The
// sampler uses it as a sliding window over recent Metropolis acceptances.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	sum       float64   // Running sum of the values in memory
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer holding totalSize values. A
// size less than 1 is bumped up to 1.
func NewCircularFloat(totalSize int) *CircularFloat {
	if totalSize < 1 {
		totalSize = 1
	}

	return &CircularFloat{
		buffer:  make([]float64, totalSize),
		pos:     0,
		BufSize: totalSize,
		Count:   0,
	}
}

// Internal: return the next array position
func (c *CircularFloat) nextPos() int {
	return (c.pos + 1) % c.BufSize
}

// Add appends the given value to the buffer, overwriting the oldest entry
func (c *CircularFloat) Add(f float64) {
	c.TotalSeen++

	if c.Count == c.BufSize {
		c.sum -= c.buffer[c.pos]
	} else {
		c.Count++
	}

	c.buffer[c.pos] = f
	c.sum += f

	c.pos = c.nextPos()
}

// Mean is the average of the values currently in memory (0 if empty)
func (c *CircularFloat) Mean() float64 {
	if c.Count < 1 {
		return 0
	}
	return c.sum / float64(c.Count)
}

// Full is true once BufSize values have been added
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// Values returns a copy of the values in memory, oldest first
func (c *CircularFloat) Values() []float64 {
	out := make([]float64, 0, c.Count)
	start := c.pos
	if c.Count < c.BufSize {
		start = 0
	}
	for i := 0; i < c.Count; i++ {
		out = append(out, c.buffer[(start+i)%c.BufSize])
	}
	return out
}
