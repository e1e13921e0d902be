package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

type line struct {
	err  error
	text string
}

// LineReader reads answers line by line without blocking cancellation.
// A single background goroutine owns the underlying reader, so a read
// abandoned on cancel is delivered to the next ReadLine instead of lost.
type LineReader struct {
	src   *bufio.Scanner
	lines chan line
	once  sync.Once
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		src:   bufio.NewScanner(r),
		lines: make(chan line),
	}
}

func (r *LineReader) start() {
	go func() {
		defer close(r.lines)
		for r.src.Scan() {
			r.lines <- line{text: r.src.Text()}
		}
		err := r.src.Err()
		if err == nil {
			err = io.EOF
		}
		r.lines <- line{err: err}
	}()
}

// ReadLine returns the next trimmed line, io.EOF once input is exhausted,
// or ErrInputCancelled if ctx ends first.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(r.start)

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(l.text), l.err
	}
}
