package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/xyproto/env/v2"
)

// Version information for the rangeloop tools
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-17"
)

// CommitSHA is set at build time with -ldflags "-X".
var CommitSHA = "unknown"

// VersionInfo contains version and build information
type VersionInfo struct {
	Version    string `json:"version"`
	BuildDate  string `json:"build_date"`
	CommitSHA  string `json:"commit_sha"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	UnitFormat string `json:"unit_format,omitempty"`
}

// GetVersionInfo returns structured version information
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes version information in a consistent format
func PrintVersion(w io.Writer, toolName string, info *VersionInfo, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%s v%s\n", toolName, info.Version)
	fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Fprintf(w, "Commit: %s\n", info.CommitSHA)
	}
	if info.UnitFormat != "" {
		fmt.Fprintf(w, "Unit Format: %s\n", info.UnitFormat)
	}
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
	_, err := fmt.Fprintf(w, "Platform: %s/%s\n", info.Platform, info.Arch)
	return err
}

// ExitWithCode exits with the specified code and optional message
func ExitWithCode(code int, format string, args ...interface{}) {
	if format != "" {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	os.Exit(code)
}

// NewLogger returns the tool logger: stderr when verbose, silent otherwise.
func NewLogger(verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "[rangeloop] ", 0)
	}
	return log.New(os.Stderr, "[rangeloop] ", log.Ltime)
}

// UseColor reports whether output to f should be highlighted. NO_COLOR disables
// highlighting everywhere.
func UseColor(f *os.File) bool {
	if env.Has("NO_COLOR") {
		return false
	}
	return IsTerminal(f)
}

// ValidateArgs validates command line arguments
func ValidateArgs(args []string, minArgs int, usage string) error {
	if len(args) < minArgs {
		return fmt.Errorf("insufficient arguments\nUsage: %s", usage)
	}
	return nil
}

// CommandInfo describes one subcommand in usage output
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
}

// PrintUsage writes a standardized usage message
func PrintUsage(w io.Writer, tool, summary string, commands []CommandInfo) {
	fmt.Fprintf(w, "%s - %s\n\n", tool, summary)
	fmt.Fprintf(w, "USAGE:\n")
	fmt.Fprintf(w, "    %s <command> [OPTIONS]\n\n", tool)

	if len(commands) > 0 {
		fmt.Fprintf(w, "COMMANDS:\n")
		for _, cmd := range commands {
			fmt.Fprintf(w, "    %-10s %s\n", cmd.Name, cmd.Description)
			if cmd.Usage != "" {
				fmt.Fprintf(w, "    %-10s %s\n", "", cmd.Usage)
			}
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "Use '%s <command> -h' for more information about a command.\n", tool)
}
