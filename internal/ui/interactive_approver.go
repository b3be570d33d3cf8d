package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// InteractiveApprover asks the user to type the table name before an
// existing table is replaced.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover on stdin and stderr.
func NewInteractiveApprover(verbose bool) reportload.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval returns true only when the typed name matches table.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, table string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: You are about to DROP and RECREATE the table '%s'\n", table)
	fmt.Fprintln(a.output, "This will permanently delete all rows currently in it!")
	fmt.Fprintf(a.output, "\nTo confirm, type the table name '%s' and press Enter: ", table)

	// The read goroutine cannot be interrupted; on cancellation it is abandoned.
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(a.input).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == table {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding with table replacement...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match table name '%s'. Operation cancelled.\n", input, table)
		return false, nil
	}
}

var _ reportload.Approver = (*InteractiveApprover)(nil)
