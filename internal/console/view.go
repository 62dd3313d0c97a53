// Package console renders the booking controller in a terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"tokenbook/internal/controller"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiBlue   = "\033[34m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// View writes notices and results to out and reads confirmations from in.
type View struct {
	mu       sync.Mutex
	out      io.Writer
	in       *bufio.Reader
	color    bool
	onReload func()
	onReset  func()
}

type Option func(*View)

// WithReload runs fn after the view announces a refresh.
func WithReload(fn func()) Option {
	return func(v *View) { v.onReload = fn }
}

// WithReset runs fn when the booking form should be cleared.
func WithReset(fn func()) Option {
	return func(v *View) { v.onReset = fn }
}

// New colours output only when out is a terminal.
func New(out io.Writer, in io.Reader, opts ...Option) *View {
	v := &View{out: out, in: bufio.NewReader(in), color: isTerminal(out)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (v *View) Notify(level controller.Level, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	label := "[" + strings.ToUpper(level.String()) + "]"
	if v.color {
		label = levelColor(level) + label + ansiReset
	}
	fmt.Fprintf(v.out, "%s %s\n", label, message)
}

func levelColor(l controller.Level) string {
	switch l {
	case controller.LevelSuccess:
		return ansiGreen
	case controller.LevelInfo:
		return ansiBlue
	case controller.LevelWarning:
		return ansiYellow
	default:
		return ansiRed
	}
}

// SetSubmitEnabled prints a progress line while a booking is in flight.
func (v *View) SetSubmitEnabled(enabled bool) {
	if enabled {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "Booking...")
}

func (v *View) ResetBookingForm() {
	if v.onReset != nil {
		v.onReset()
	}
}

func (v *View) ShowTokenResult(d controller.TokenDetails) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "Name:   %s\nDate:   %s\nToken:  %d\nStatus: %s\n", d.Name, d.Date, d.Token, d.Status)
}

// HideTokenResult is a no-op: nothing stays on screen between commands.
func (v *View) HideTokenResult() {}

// Confirm asks prompt and accepts only an explicit yes.
func (v *View) Confirm(prompt string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "%s [y/N]: ", prompt)
	line, err := v.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(v.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (v *View) Reload() {
	v.mu.Lock()
	fmt.Fprintln(v.out, "Refreshing...")
	v.mu.Unlock()
	if v.onReload != nil {
		v.onReload()
	}
}
