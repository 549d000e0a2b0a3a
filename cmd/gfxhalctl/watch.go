package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gfxhal"
	"github.com/gogpu/gfxhal/settings"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var capsFile string
	cmd := &cobra.Command{
		Use:   "watch REVISION FILE",
		Short: "Re-resolve settings whenever an override file changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := loadCaps(args[0], capsFile)
			if err != nil {
				return err
			}
			path := args[1]
			dev, err := gfxhal.Open(caps, gfxhal.WithSource(settings.FileSource(path)))
			if err != nil {
				return err
			}
			defer dev.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", dev.Settings().Revision(), dev.Settings().Hash())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return dev.Watch(ctx, path, func(rec *settings.Record, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					return
				}
				fmt.Fprintf(out, "%s %s\n", rec.Revision(), rec.Hash())
			})
		},
	}
	cmd.Flags().StringVar(&capsFile, "caps", "", "YAML capability fields laid over the revision defaults")
	return cmd
}
