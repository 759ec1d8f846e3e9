package bytecoding

// Appender is satisfied by every type the gen package generates, and by
// any hand-written type following the same convention: AppendTo appends
// the value's wire form to buf, Encode serializes into a fresh buffer.
type Appender interface {
	AppendTo(buf []byte) ([]byte, error)
	Encode() ([]byte, error)
}

// AppendAll appends each value's wire form to buf in order. On error
// the buffer built so far is discarded.
func AppendAll(buf []byte, values ...Appender) ([]byte, error) {
	var err error
	for _, v := range values {
		if buf, err = v.AppendTo(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
