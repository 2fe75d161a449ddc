// Package main is the rpcprobe CLI.
//
// It runs the same liveness probe as the API server once, from the command line:
//
//	rpcprobe probe eth                      # every RPC chainlist knows for Ethereum
//	rpcprobe probe 137 --timeout 3s         # by chain id, with a custom timeout
//	rpcprobe probe --file endpoints.yaml    # an ad-hoc endpoint list
//	rpcprobe version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
)

// newRootCmd builds the command tree. It shows help when called without a subcommand.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpcprobe",
		Short: "Probe blockchain RPC endpoints for liveness",
		Long: `rpcprobe sends eth_getBlockByNumber("latest") to every RPC endpoint of a chain,
over HTTP(S) or WebSocket, and reports which ones answer, their block height and latency.

Chains are looked up on chainlist by chain id or short name. Endpoints that still carry an
API key placeholder are reported as not working without being contacted.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "configs", "directory holding config.yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log probe details to stderr")

	rootCmd.AddCommand(newProbeCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rpcprobe %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(1)
	}
}
