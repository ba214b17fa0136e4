package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status message on statusOut while a conversion runs.
// It draws nothing when statusOut is not a terminal, so piped stderr and
// tests stay clean.
type Spinner struct {
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	out     io.Writer
	animate bool

	mu      sync.Mutex
	started bool
	stop    sync.Once
	stopped chan struct{}
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx is done.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		parent:  ctx,
		ctx:     spinCtx,
		cancel:  cancel,
		out:     statusOut,
		animate: isTerminal(statusOut),
		stopped: make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	go func() {
		defer close(s.stopped)
		if !s.animate {
			<-s.ctx.Done()
			return
		}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and without a prior Start.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+4))
}

// Cancelled reports whether the spinner ended because its parent context
// was cancelled rather than through Stop.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
