package cli

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type versionInfo struct {
	Version string
	Commit  string
	Date    string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout(), resolveVersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// resolveVersionInfo prefers ldflags values and falls back to the module
// build info of a `go install` binary.
func resolveVersionInfo() versionInfo {
	vi := versionInfo{Version: version, Commit: commit, Date: date}
	if vi.Version != "dev" {
		return vi
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		vi = vi.withBuildInfo(info)
	}
	return vi
}

// withBuildInfo fills only the fields still holding their placeholder.
func (vi versionInfo) withBuildInfo(info *debug.BuildInfo) versionInfo {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		vi.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if vi.Commit == "unknown" {
				vi.Commit = s.Value
			}
		case "vcs.time":
			if vi.Date == "unknown" {
				vi.Date = s.Value
			}
		}
	}
	return vi
}

func writeVersion(w io.Writer, vi versionInfo) {
	fmt.Fprintf(w, "reportload %s (%s, %s) %s/%s\n", vi.Version, vi.Commit, vi.Date, runtime.GOOS, runtime.GOARCH)
}
