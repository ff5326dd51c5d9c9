package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpuspy"
	"github.com/gogpu/gputypes"
	"github.com/spf13/cobra"
)

func newFormatsCmd() *cobra.Command {
	var bc, etc2, astc bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the compressed texture formats enabled by compression features",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f gputypes.Features
			if bc {
				f.Insert(gputypes.FeatureTextureCompressionBC)
			}
			if etc2 {
				f.Insert(gputypes.FeatureTextureCompressionETC2)
			}
			if astc {
				f.Insert(gputypes.FeatureTextureCompressionASTC)
			}
			if f.IsEmpty() {
				return errors.New("select at least one of --bc, --etc2, --astc")
			}

			out := cmd.OutOrStdout()
			for _, format := range gpuspy.CompressedTextureFormats(f) {
				if _, err := fmt.Fprintln(out, format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&bc, "bc", false, "BC (S3TC/DXT) formats")
	flags.BoolVar(&etc2, "etc2", false, "ETC2/EAC formats")
	flags.BoolVar(&astc, "astc", false, "ASTC formats")
	return cmd
}
