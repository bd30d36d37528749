package browser

// Cursor is an owned wraparound index into a fixed list. Each rotated
// resource (proxy, user agent, target URL, viewport) gets its own cursor,
// advanced once per refresh cycle independently of the others.
type Cursor struct {
	length int
	next   int
}

// NewCursor creates a cursor over a list of the given length.
func NewCursor(length int) *Cursor {
	if length < 1 {
		length = 1
	}
	return &Cursor{length: length}
}

// Next returns the current index and advances with wraparound.
func (c *Cursor) Next() int {
	i := c.next
	c.next = (c.next + 1) % c.length
	return i
}
