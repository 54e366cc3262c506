// Package input turns the raw terminal byte stream into per-frame key and
// pointer events.
package input

import (
	"bufio"
	"bytes"
	"strconv"
)

// MouseAction is the phase of a pointer gesture.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseDrag
	MouseRelease
)

func (a MouseAction) String() string {
	switch a {
	case MousePress:
		return "press"
	case MouseDrag:
		return "drag"
	case MouseRelease:
		return "release"
	}
	return "unknown"
}

// MouseEvent is one pointer report in absolute 1-based terminal cells.
type MouseEvent struct {
	Action MouseAction
	Button int // 0 left, 1 middle, 2 right
	Col    int
	Row    int
}

// Frame is everything that arrived since the previous frame. Keys are edge
// triggered: a key is set once per press.
type Frame struct {
	Quit     bool
	Start    bool // space or enter
	Pause    bool // p or a lone escape
	Activity bool // any byte arrived
	Closed   bool // the reader hit EOF or an error
	Mouse    []MouseEvent
}

// Stream delivers input bytes via a channel filled by a reader goroutine.
type Stream struct {
	ch      chan byte
	pending []byte // incomplete escape sequence carried to the next frame
	buf     []byte
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 256)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains all available bytes without blocking and parses them.
func (s *Stream) Read() Frame {
	s.buf = append(s.buf[:0], s.pending...)
	held := len(s.pending)
	s.pending = s.pending[:0]

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			s.buf = append(s.buf, b)
		default:
			break drain
		}
	}

	// An escape held over from the last frame with nothing after it was a
	// real Escape press.
	if held == 1 && isLoneEscape(s.buf) {
		return Frame{Pause: true, Closed: s.closed}
	}

	f, rest := Parse(s.buf)
	if s.closed && isLoneEscape(rest) {
		f.Pause = true
		rest = nil
	}
	s.pending = append(s.pending, rest...)
	f.Closed = s.closed
	return f
}

func isLoneEscape(b []byte) bool {
	return len(b) == 1 && b[0] == '\x1b'
}

// Reset discards buffered bytes, e.g. when switching screens so a held key
// does not leak into the next one.
func (s *Stream) Reset() {
	s.pending = s.pending[:0]
	for {
		select {
		case _, ok := <-s.ch:
			if !ok {
				s.closed = true
				return
			}
		default:
			return
		}
	}
}

// Parse decodes keys and SGR mouse reports from buf. An escape sequence cut
// off at the end of buf is returned as rest so it can be completed later,
// including a trailing lone escape: the caller decides it was the Escape key
// once no more bytes follow.
func Parse(buf []byte) (f Frame, rest []byte) {
	f.Activity = len(buf) > 0
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			applyKey(&f, b)
			continue
		}

		if i+1 >= len(buf) {
			return f, buf[i:]
		}
		if buf[i+1] != '[' {
			f.Pause = true
			continue
		}
		if i+2 >= len(buf) {
			return f, buf[i:]
		}

		if buf[i+2] == '<' {
			ev, n, complete := parseSGRMouse(buf[i+3:])
			if !complete {
				return f, buf[i:]
			}
			if ev != nil {
				f.Mouse = append(f.Mouse, *ev)
			}
			i += 2 + n
			continue
		}

		// Other CSI sequences (arrows, focus): skip to the final byte.
		j := i + 2
		for j < len(buf) && (buf[j] < 0x40 || buf[j] > 0x7e) {
			j++
		}
		if j >= len(buf) {
			return f, buf[i:]
		}
		i = j
	}
	return f, nil
}

func applyKey(f *Frame, b byte) {
	switch b {
	case 'q', 'Q', 0x03:
		f.Quit = true
	case ' ', '\r', '\n':
		f.Start = true
	case 'p', 'P':
		f.Pause = true
	}
}

// parseSGRMouse parses "btn;col;row" followed by 'M' or 'm'. It returns the
// number of bytes consumed including the terminator. ev is nil for reports
// that are not gesture events (wheel, hover).
func parseSGRMouse(buf []byte) (ev *MouseEvent, n int, complete bool) {
	end := 0
	for end < len(buf) && (buf[end] == ';' || (buf[end] >= '0' && buf[end] <= '9')) {
		end++
	}
	if end == len(buf) {
		return nil, 0, false
	}
	if buf[end] != 'M' && buf[end] != 'm' {
		return nil, end, true
	}
	parts := bytes.Split(buf[:end], []byte{';'})
	if len(parts) != 3 {
		return nil, end + 1, true
	}
	code, err1 := strconv.Atoi(string(parts[0]))
	col, err2 := strconv.Atoi(string(parts[1]))
	row, err3 := strconv.Atoi(string(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, end + 1, true
	}

	button := code & 0b11
	motion := code&32 != 0
	if code&64 != 0 || button == 3 {
		return nil, end + 1, true
	}

	action := MousePress
	switch {
	case buf[end] == 'm':
		action = MouseRelease
	case motion:
		action = MouseDrag
	}
	return &MouseEvent{Action: action, Button: button, Col: col, Row: row}, end + 1, true
}
