// Package main is the entry point for the activitystream CLI.
//
// The activitystream package can be used as a library (SDK) or through this
// binary with a YAML configuration file.
//
// Usage:
//
//	activitystream stream -c stream.yaml     # Follow the stream
//	activitystream stream -c stream.yaml --once
//	activitystream validate -c stream.yaml   # Validate configuration
//	activitystream version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "activitystream",
	Short: "Follow a network's activity stream",
	Long: `activitystream polls the activity stream of a content network and
prints every comment event it sees.

Requests are authenticated with a short-lived token signed with the
network secret. Pages are followed back to back until the stream is
drained, then the stream is polled again after the configured interval.

Quick start:
  1. Create a config file (stream.yaml)
  2. Run: activitystream stream -c stream.yaml

Example config:
  network: client.fyre.co
  secret: ${LF_NETWORK_SECRET}
  interval: 10s`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this activitystream binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "activitystream %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
