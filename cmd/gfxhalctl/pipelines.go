package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/gogpu/gfxhal/chip"
	"github.com/gogpu/gfxhal/pipeline"
	"github.com/spf13/cobra"
)

func newPipelinesCmd() *cobra.Command {
	var compile bool
	cmd := &cobra.Command{
		Use:   "pipelines REVISION",
		Short: "Show the internal pipeline binaries for a revision",
		Long: `Pipelines prints the binary table the revision selects. With --compile
every WGSL binary is compiled to SPIR-V and its module size shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := chip.ParseRevision(args[0])
			if err != nil {
				return err
			}
			table, err := pipeline.Select(rev)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "family %s, wave%d\n", table.Family(), table.WaveSize())

			var dev *pipeline.HALDevice
			if compile {
				// Compilation does not touch the device.
				dev = pipeline.NewHALDevice(nil)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tLABEL\tBINDINGS\tSOURCE\tSPIRV")
			for _, k := range pipeline.Kinds() {
				b := table.Binary(k)
				if b.Absent() {
					fmt.Fprintf(w, "%s\t-\t-\tabsent\t-\n", k)
					continue
				}
				spirv := "-"
				if dev != nil {
					size, err := dev.PipelineSize(b)
					if err != nil {
						spirv = "error: " + err.Error()
					} else {
						spirv = fmt.Sprintf("%d", size)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", k, b.Label, len(b.Layout), len(b.Code), spirv)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&compile, "compile", false, "Compile each binary to SPIR-V")
	return cmd
}
