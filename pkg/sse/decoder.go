package sse

import "bytes"

// Decoder turns raw stream chunks into frames. The zero value is ready to
// use. A Decoder belongs to a single stream and is not safe for concurrent
// use.
type Decoder struct {
	// buf holds only the bytes after the last newline seen so far.
	buf []byte
}

// Feed appends chunk to the buffered partial line and calls fn for every
// complete "data:" line, in stream order. If fn returns an error, Feed
// stops and returns it; the remaining lines of the chunk are not decoded.
func (d *Decoder) Feed(chunk []byte, fn func(Frame) error) error {
	d.buf = append(d.buf, chunk...)

	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return nil
		}

		line := string(d.buf[:i])
		d.buf = d.buf[i+1:]

		frame, ok := ParseLine(line)
		if !ok {
			continue
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}

// Pending reports the number of buffered bytes that do not yet form a
// complete line.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Reset discards any buffered partial line. An unterminated trailing line
// at the end of a stream is never decoded.
func (d *Decoder) Reset() {
	d.buf = nil
}
