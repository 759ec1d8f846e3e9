package codec

// Coder is a streaming buffer over one growable byte slice. Values
// pushed on one side pull back out in FIFO order, possibly through
// different codecs when the stream interleaves types. Not safe for
// concurrent use.
type Coder struct {
	buf []byte
}

// NewCoder returns an empty coder.
func NewCoder() *Coder {
	return &Coder{}
}

// Push appends v's wire form to the buffer.
func (c *Coder) Push(codec *Codec, v any) error {
	buf, err := codec.AppendTo(c.buf, v)
	if err != nil {
		return err
	}
	c.buf = buf
	return nil
}

// Pull consumes one value from the front of the buffer. On failure the
// buffer is left untouched so the caller can retry after loading more
// bytes.
func (c *Coder) Pull(codec *Codec) (any, error) {
	v, rest, err := codec.Decode(c.buf)
	if err != nil {
		return nil, err
	}
	c.buf = rest
	return v, nil
}

// Len returns the number of buffered bytes.
func (c *Coder) Len() int {
	return len(c.buf)
}

// Bytes returns the buffered wire bytes without copying.
func (c *Coder) Bytes() []byte {
	return c.buf
}

// Load replaces the buffered bytes, e.g. with data received from a peer.
func (c *Coder) Load(data []byte) {
	c.buf = data
}
