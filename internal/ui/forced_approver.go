package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// ForcedApprover approves a table replacement after a countdown.
// Selected by --force; Ctrl+C during the countdown cancels the load.
type ForcedApprover struct {
	verbose   bool
	countdown time.Duration
	output    io.Writer
	sleepFn   func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) reportload.Approver {
	return &ForcedApprover{
		verbose:   verbose,
		countdown: reportload.DefaultForceApprovalCountdown,
		output:    os.Stderr,
		sleepFn:   time.Sleep,
	}
}

// RequestApproval counts down and then approves.
func (a *ForcedApprover) RequestApproval(ctx context.Context, table string) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintf(a.output, "DANGER: table %s exists and will be dropped and recreated.\n", table)
	fmt.Fprintln(a.output, "All rows currently in it will be lost.")
	fmt.Fprintln(a.output)

	seconds := int(a.countdown.Seconds())
	if a.countdown == 0 {
		seconds = int(reportload.DefaultForceApprovalCountdown.Seconds())
	}
	for i := seconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rReplacing in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with table replacement...                              \n")
	return true, nil
}

var _ reportload.Approver = (*ForcedApprover)(nil)
