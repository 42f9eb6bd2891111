package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
	"rozhodnutia/pkg/fetch"
)

// ErrNoOperator is returned when the acknowledgement input is exhausted
var ErrNoOperator = errors.New("no operator input available")

// Prompt asks the operator to press Enter before a failed fetch is retried
type Prompt struct {
	in          io.Reader
	out         io.Writer
	notifier    *Notifier
	interactive bool

	once  sync.Once
	lines chan line
}

// line is one read from the input, stamped when it arrived
type line struct {
	err error
	at  time.Time
}

// NewPrompt creates a prompt reading stdin and writing to Output
func NewPrompt(notifier *Notifier) *Prompt {
	p := NewPromptWithIO(os.Stdin, Output, notifier)
	p.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	return p
}

// NewPromptWithIO creates a prompt over arbitrary streams
func NewPromptWithIO(in io.Reader, out io.Writer, notifier *Notifier) *Prompt {
	return &Prompt{in: in, out: out, notifier: notifier}
}

// IsInteractive reports whether input comes from a terminal
func (p *Prompt) IsInteractive() bool {
	return p.interactive
}

// Acknowledge implements fetch.Acknowledger. On a terminal only a line
// entered after the prompt is shown counts, so extra Enter presses from an
// earlier prompt are discarded. Piped input acknowledges one failure per
// line. It returns ErrNoOperator once the input reaches EOF so a closed
// stdin cannot spin the retry loop.
func (p *Prompt) Acknowledge(ctx context.Context, failure fetch.Failure) error {
	shown := time.Now()
	status := "no response"
	if failure.StatusCode != 0 {
		status = fmt.Sprintf("HTTP %d", failure.StatusCode)
	}

	fmt.Fprintf(p.out, "\n%s %s (%s, attempt %d)\n%s ",
		Red("Failed to fetch"), failure.URL, status, failure.Attempt,
		Yellow("Press Enter to try again..."))

	if p.notifier != nil {
		p.notifier.send("rozhodnutia is waiting", fmt.Sprintf("Failed to fetch %s (%s)", failure.URL, status))
	}

	p.once.Do(p.startReader)

	for {
		select {
		case l, ok := <-p.lines:
			if !ok {
				return ErrNoOperator
			}
			if l.err != nil {
				return fmt.Errorf("%w: %v", ErrNoOperator, l.err)
			}
			if p.interactive && l.at.Before(shown) {
				continue
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// startReader turns input lines into acknowledgements on p.lines
func (p *Prompt) startReader() {
	p.lines = make(chan line)
	go func() {
		defer close(p.lines)
		reader := bufio.NewReader(p.in)
		for {
			_, err := reader.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					p.lines <- line{err: err, at: time.Now()}
				}
				return
			}
			p.lines <- line{at: time.Now()}
		}
	}()
}
