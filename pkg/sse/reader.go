package sse

import (
	"errors"
	"io"
)

const readChunkSize = 4 * 1024

// TeeReader reads SSE frames from a source io.Reader while simultaneously
// writing all raw bytes verbatim to a destination io.Writer.
// This effectively enables "tee" shaped reading where TeeReader.Next
// returns the Frame for consumption while writing to a separate destination.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │ TeeReader.Next() │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Frame       │
// └──────────────────┘
//
// The destination receives each chunk exactly as it was read, before any of
// its frames are returned. dest may be nil when no copy is wanted.
type TeeReader struct {
	src  io.Reader
	dest io.Writer

	dec     Decoder
	chunk   []byte
	pending []Frame
	eof     bool
}

// NewTeeReader returns a reader that decodes frames from src and writes
// all raw bytes through to dest.
// The dest writer typically backs an io.Pipe connected to the downstream HTTP
// response.
func NewTeeReader(src io.Reader, dest io.Writer) *TeeReader {
	return &TeeReader{
		src:   src,
		dest:  dest,
		chunk: make([]byte, readChunkSize),
	}
}

// Next returns the next frame. It blocks on the source until a complete
// "data:" line is available. Next returns nil, nil when the source is
// exhausted; a partial line left at that point is dropped.
func (r *TeeReader) Next() (*Frame, error) {
	for len(r.pending) == 0 {
		if r.eof {
			return nil, nil
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	f := r.pending[0]
	r.pending = r.pending[1:]
	return &f, nil
}

// fill performs exactly one read on the source.
func (r *TeeReader) fill() error {
	n, err := r.src.Read(r.chunk)
	if n > 0 {
		if r.dest != nil {
			if _, werr := r.dest.Write(r.chunk[:n]); werr != nil {
				return werr
			}
		}
		_ = r.dec.Feed(r.chunk[:n], func(f Frame) error {
			r.pending = append(r.pending, f)
			return nil
		})
	}

	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
		r.dec.Reset()
		return nil
	case err != nil:
		return err
	}
	return nil
}
