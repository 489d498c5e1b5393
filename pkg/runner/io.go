package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type inputResult struct {
	text string
	err  error
}

// lineReader reads player input on a background goroutine so that a pending read can
// be abandoned when the context ends (boss defeat, Ctrl+C).
type lineReader struct {
	reader *bufio.Reader
	out    io.Writer

	lines     chan inputResult
	startOnce sync.Once
}

func newLineReader(r io.Reader, out io.Writer) *lineReader {
	return &lineReader{reader: bufio.NewReader(r), out: out}
}

func (l *lineReader) pump() {
	for {
		text, err := l.reader.ReadString('\n')
		if text != "" {
			l.lines <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				l.lines <- inputResult{err: err}
			}
			close(l.lines)
			return
		}
	}
}

// ReadLine prints prompt and returns the next sanitized, trimmed line.
// Lines rejected by SanitizeInput are reported to the player and skipped.
func (l *lineReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	l.startOnce.Do(func() {
		l.lines = make(chan inputResult)
		go l.pump()
	})

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if prompt != "" {
			fmt.Fprint(l.out, prompt+" ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-l.lines:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(l.out, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// syncWriter serializes writes from the play loop and timer callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
