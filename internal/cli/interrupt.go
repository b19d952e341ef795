package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns Ctrl-C into a cooperative stop. The first signal
// calls stop and lets the running operation finish its current batch; a
// second signal cancels the returned context outright.
type InterruptHandler struct {
	writer     io.Writer
	stop       func()
	cancel     context.CancelFunc
	interrupts int
	mu         sync.Mutex
}

// NewInterruptHandler creates an interrupt handler writing notices to writer.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{writer: writer}
}

// HandleInterrupts installs the signal handler. stop may be nil.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, stop func()) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.stop = stop
	h.cancel = cancel
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				h.interrupt()
			}
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.interrupts++
	if h.interrupts == 1 && h.stop != nil {
		h.notify(FormatWarning("Stopping after the current batch... press Ctrl-C again to abort"))
		h.stop()
		return
	}

	h.notify(FormatWarning("Aborted"))
	if h.stop != nil {
		h.stop()
	}
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *InterruptHandler) notify(msg string) {
	if _, err := fmt.Fprintln(h.writer, "\n"+msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted reports whether at least one interrupt was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupts > 0
}
