package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/gfxhal"
	"github.com/gogpu/gfxhal/chip"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "gfxhalctl",
		Short: "Inspect hardware-adaptive GPU settings and pipeline tables",
		Long: `gfxhalctl resolves the settings record gfxhal produces for a chip
revision, lists the internal pipeline binaries each family carries, builds
them on a GPU, and watches settings files for changes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q", logLevel)
			}
			gfxhal.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newRevisionsCmd(),
		newDetectCmd(),
		newResolveCmd(),
		newPipelinesCmd(),
		newBuildCmd(),
		newWatchCmd(),
	)
	return root
}

// loadCaps returns the default snapshot for the named revision, with fields
// from the YAML file at path laid over it when path is set.
func loadCaps(name, path string) (chip.Capabilities, error) {
	rev, err := chip.ParseRevision(name)
	if err != nil {
		return chip.Capabilities{}, err
	}
	caps, err := chip.Default(rev)
	if err != nil {
		return chip.Capabilities{}, err
	}
	if path == "" {
		return caps, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return chip.Capabilities{}, err
	}
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return chip.Capabilities{}, fmt.Errorf("parse %s: %w", path, err)
	}
	caps.Revision = rev
	return caps, nil
}
