package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gogpu/gfxhal/chip"
	"github.com/gogpu/gfxhal/pipeline"
	"github.com/spf13/cobra"
)

func newRevisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revisions",
		Short: "List known chip revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REVISION\tLEVEL\tFAMILY\tEREV\tGROUPS\tPIPELINES")
			for _, rev := range chip.Revisions() {
				info, err := chip.Lookup(rev)
				if err != nil {
					return err
				}
				groups := make([]string, len(info.Groups))
				for i, g := range info.Groups {
					groups[i] = string(g)
				}
				family := "-"
				if t, err := pipeline.Select(rev); err == nil {
					family = t.Family()
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%#x-%#x\t%s\t%s\n",
					info.Name, info.Level, info.FamilyID, info.ERevMin, info.ERevMax,
					strings.Join(groups, ","), family)
			}
			return w.Flush()
		},
	}
}

func newDetectCmd() *cobra.Command {
	var familyID, eRevID uint32
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Identify a revision from kernel family and eRev ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := chip.Detect(familyID, eRevID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "revision: %s\nlevel: %s\n", rev, rev.Level())
			if rev.Level().Generation() == chip.Gfx11 {
				bugs, ok := chip.DetectGfx11Workarounds(familyID, eRevID)
				if !ok {
					fmt.Fprintln(out, "hardware bugs: unknown part")
				} else {
					fmt.Fprintf(out, "hardware bugs: %s\n", bugs)
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint32Var(&familyID, "family", 0, "Kernel family id")
	cmd.Flags().Uint32Var(&eRevID, "erev", 0, "External revision id")
	_ = cmd.MarkFlagRequired("family")
	_ = cmd.MarkFlagRequired("erev")
	return cmd
}
