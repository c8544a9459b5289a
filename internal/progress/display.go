// Package progress renders step-by-step run progress on the terminal with a
// spinner for long-running steps. On non-TTY output (CI logs) it degrades to
// plain line-per-step printing.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// StepDisplay shows the currently running step with a spinner and prints a
// status line when the step finishes. Safe to use with a nil receiver: all
// methods become no-ops.
type StepDisplay struct {
	caps    TerminalCapabilities
	symbols ProgressSymbols
	out     io.Writer
	spin    *spinner.Spinner
	current string
}

// NewStepDisplay creates a StepDisplay writing to stdout, configured for the
// detected terminal.
func NewStepDisplay() *StepDisplay {
	caps := DetectTerminalCapabilities()
	return &StepDisplay{
		caps:    caps,
		symbols: SelectSymbols(caps),
		out:     os.Stdout,
	}
}

// StartStep begins displaying a step. Any previously running step is
// finalized as completed first.
func (d *StepDisplay) StartStep(message string) {
	if d == nil {
		return
	}
	d.stopSpinner()
	d.current = message

	if !d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s...\n", message)
		return
	}

	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond,
		spinner.WithWriter(d.out),
		spinner.WithSuffix(" "+message),
	)
	if d.caps.SupportsColor {
		_ = d.spin.Color("cyan")
	}
	d.spin.Start()
}

// CompleteStep stops the spinner and prints a success line for the step.
func (d *StepDisplay) CompleteStep(message string) {
	if d == nil {
		return
	}
	d.stopSpinner()
	d.current = ""

	if d.caps.SupportsColor {
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(d.out, "%s %s\n", green(d.symbols.Checkmark), message)
		return
	}
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Checkmark, message)
}

// FailStep stops the spinner and prints a failure line for the step.
func (d *StepDisplay) FailStep(message string) {
	if d == nil {
		return
	}
	d.stopSpinner()
	d.current = ""

	if d.caps.SupportsColor {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(d.out, "%s %s\n", red(d.symbols.Failure), message)
		return
	}
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Failure, message)
}

// Stop halts any active spinner without printing a status line.
func (d *StepDisplay) Stop() {
	if d == nil {
		return
	}
	d.stopSpinner()
}

func (d *StepDisplay) stopSpinner() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}
