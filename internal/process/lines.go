package process

import (
	"bytes"
	"io"
)

// LineFunc receives one decoded line of output, without its terminator.
type LineFunc func(line string)

// lineSplitter is an io.Writer that turns arbitrary output chunks into
// lines. Lines end at '\n'; one preceding '\r' is stripped. Empty lines are
// dropped. An unterminated tail is held until more data or flush.
type lineSplitter struct {
	emit    LineFunc
	partial []byte
}

func newLineSplitter(emit LineFunc) *lineSplitter {
	return &lineSplitter{emit: emit}
}

func (s *lineSplitter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			s.partial = append(s.partial, p...)
			break
		}
		var line []byte
		if len(s.partial) > 0 {
			line = append(s.partial, p[:i]...)
			s.partial = s.partial[:0]
		} else {
			line = p[:i]
		}
		s.deliver(line)
		p = p[i+1:]
	}
	return n, nil
}

// flush delivers a pending unterminated line, if any.
func (s *lineSplitter) flush() {
	if len(s.partial) > 0 {
		s.deliver(s.partial)
		s.partial = nil
	}
}

func (s *lineSplitter) deliver(line []byte) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if len(line) == 0 {
		return
	}
	s.emit(string(line))
}

// pump copies r into a lineSplitter until EOF. A nil emit still drains r so
// the child never blocks on a full pipe.
func pump(r io.Reader, emit LineFunc) error {
	if emit == nil {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	s := newLineSplitter(emit)
	if _, err := io.Copy(s, r); err != nil {
		s.flush()
		return err
	}
	s.flush()
	return nil
}
