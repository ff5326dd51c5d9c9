// Command gpuspy replays scripted GPU context calls under a ContextSpy and
// inspects the adapter the spy would describe.
//
// Usage:
//
//	gpuspy capture --config frame.toml        # print the capture as JSON
//	gpuspy probe                              # describe the default adapter
//	gpuspy formats --bc --astc                # list compressed texture formats
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/gpuspy"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gpuspy: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "gpuspy",
		Short:         "Capture and inspect GPU context calls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				gpuspy.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log spy lifecycle to stderr")

	root.AddCommand(newCaptureCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newFormatsCmd())
	return root
}
