package feed

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
)

// maxConsecutiveErrors ends a LineFeed whose reader keeps failing.
const maxConsecutiveErrors = 16

// LineFeed turns a newline-delimited stream of paths into events. Each line is
// trimmed and blank lines are dropped. It ends at EOF.
type LineFeed struct {
	events  chan string
	errs    chan error
	done    chan struct{}
	stopped chan struct{} // closed when the reader returns
	once    sync.Once
}

// NewLineFeed starts reading r in the background.
func NewLineFeed(r io.Reader) *LineFeed {
	f := &LineFeed{
		events:  make(chan string),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go f.read(bufio.NewReader(r))
	return f
}

func (f *LineFeed) Events() <-chan string { return f.events }
func (f *LineFeed) Errors() <-chan error  { return f.errs }

// Close stops delivery. Reading may continue until the reader returns.
func (f *LineFeed) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

func (f *LineFeed) read(r *bufio.Reader) {
	defer close(f.stopped)
	defer close(f.errs)
	defer close(f.events)

	failures := 0
	for {
		line, err := r.ReadString('\n')
		if path := strings.TrimSpace(line); path != "" {
			if !f.send(path) {
				return
			}
		}
		if err == nil {
			failures = 0
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return
		}

		failures++
		select {
		case f.errs <- err:
		case <-f.done:
			return
		}
		if failures >= maxConsecutiveErrors {
			return
		}
	}
}

func (f *LineFeed) send(path string) bool {
	select {
	case <-f.done:
		return false
	default:
	}
	select {
	case f.events <- path:
		return true
	case <-f.done:
		return false
	}
}
