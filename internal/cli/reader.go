package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Confirmer asks yes/no questions on a terminal.
type Confirmer struct {
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex
}

// NewConfirmer reads answers from r and writes prompts to w.
func NewConfirmer(r io.Reader, w io.Writer) *Confirmer {
	return &Confirmer{reader: bufio.NewReader(r), writer: w}
}

// Confirm prints the question and reports whether the answer was yes.
// Anything other than y/yes (case-insensitive), including EOF, is a no.
func (c *Confirmer) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprint(c.writer, FormatPrompt(question)); err != nil {
		return false, err
	}

	line, err := c.readLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (c *Confirmer) readLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		value, err := c.reader.ReadString('\n')
		if err != nil && value != "" && errors.Is(err, io.EOF) {
			err = nil
		}
		resultCh <- result{value: strings.TrimSpace(value), err: err}
	}()

	select {
	case <-ctx.Done():
		// The read goroutine keeps blocking until input arrives.
		return "", ErrInputCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}
