package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/groundwater-portal/reportload/internal/cli"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(reportload.ExitPanic)
		}
	}()

	if os.Getenv("REPORTLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(reportload.ExitCodeForError(err))
	}
}
