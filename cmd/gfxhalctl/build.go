package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/gogpu/gfxhal"
	"github.com/gogpu/gfxhal/internal/gpu"
	"github.com/gogpu/gfxhal/pipeline"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var (
		backend  string
		capsFile string
		parallel int
		budget   int
	)
	cmd := &cobra.Command{
		Use:   "build REVISION",
		Short: "Construct the internal pipelines on a GPU",
		Long: `Build opens a HAL device and constructs every internal pipeline the
revision carries, then destroys them. The noop backend needs no hardware.
With --parallel N the kinds are built concurrently, N at a time, and every
failure is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := loadCaps(args[0], capsFile)
			if err != nil {
				return err
			}
			var g *gpu.GPU
			switch backend {
			case "vulkan":
				g, err = gpu.Open()
			case "noop":
				g, err = gpu.OpenNoop()
			default:
				return fmt.Errorf("unknown backend %q", backend)
			}
			if err != nil {
				return err
			}
			defer g.Close()

			dev, err := gfxhal.Open(caps)
			if err != nil {
				return err
			}
			defer dev.Close()

			alloc := pipeline.NewBudgetAllocator(budget)
			var set *gfxhal.PipelineSet
			if parallel > 0 {
				set, err = dev.CreatePipelinesParallel(pipeline.NewHALDevice(g.Device), alloc, parallel)
			} else {
				set, err = dev.CreatePipelines(pipeline.NewHALDevice(g.Device), alloc)
			}
			if set == nil {
				return err
			}
			defer set.Destroy()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "adapter %s, family %s\n", g.Name, set.Table().Family())
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tSTATE")
			for _, k := range pipeline.Kinds() {
				state := "built"
				switch {
				case set.Table().Binary(k).Absent():
					state = "absent"
				case set.Pipeline(k) == nil:
					state = "failed"
				}
				fmt.Fprintf(w, "%s\t%s\n", k, state)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			fmt.Fprintf(out, "%d pipelines, %d bytes, code %s\n", len(set.Live()), alloc.Outstanding(), gfxhal.CodeOf(err))
			return err
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "vulkan", "HAL backend (vulkan, noop)")
	cmd.Flags().StringVar(&capsFile, "caps", "", "YAML capability fields laid over the revision defaults")
	cmd.Flags().IntVar(&budget, "budget", 64<<20, "Bytes available for pipeline memory")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Build up to N kinds concurrently")
	return cmd
}
