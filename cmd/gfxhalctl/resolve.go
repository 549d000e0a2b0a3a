package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gogpu/gfxhal"
	"github.com/gogpu/gfxhal/settings"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// resolved is the document the resolve command prints.
type resolved struct {
	Revision string         `yaml:"revision" json:"revision"`
	Hash     string         `yaml:"hash" json:"hash"`
	Settings map[string]any `yaml:"settings" json:"settings"`
}

func newResolveCmd() *cobra.Command {
	var (
		overrides string
		capsFile  string
		format    string
		fields    []string
	)
	cmd := &cobra.Command{
		Use:   "resolve REVISION",
		Short: "Resolve the settings record for a revision",
		Long: `Resolve runs the settings pipeline for REVISION against its default
capabilities, or those in --caps, with raw overrides from --overrides
(YAML or JSONC) and prints the frozen record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := loadCaps(args[0], capsFile)
			if err != nil {
				return err
			}
			var opts []gfxhal.Option
			if overrides != "" {
				opts = append(opts, gfxhal.WithSource(settings.FileSource(overrides)))
			}
			dev, err := gfxhal.Open(caps, opts...)
			if err != nil {
				return err
			}
			defer dev.Close()
			rec := dev.Settings()

			out := cmd.OutOrStdout()
			if len(fields) > 0 {
				return printFields(out, rec, fields)
			}
			doc := resolved{
				Revision: rec.Revision().String(),
				Hash:     rec.Hash().String(),
				Settings: rec.Map(),
			}
			return encode(out, format, doc)
		},
	}
	cmd.Flags().StringVarP(&overrides, "overrides", "o", "", "Raw settings override file (.yaml, .yml, .json, .jsonc)")
	cmd.Flags().StringVar(&capsFile, "caps", "", "YAML capability fields laid over the revision defaults")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, json)")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "Print only these settings, one per line")
	return cmd
}

func printFields(w io.Writer, rec *settings.Record, names []string) error {
	for _, name := range names {
		canonical, err := settings.CanonicalName(name)
		if err != nil {
			return err
		}
		v, err := rec.Get(canonical)
		if err != nil {
			return err
		}
		if s, ok := v.(fmt.Stringer); ok {
			v = s.String()
		}
		fmt.Fprintf(w, "%s: %v\n", canonical, v)
	}
	return nil
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
