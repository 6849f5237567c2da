package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/raine/balla/internal/region"
	"github.com/spf13/cobra"
)

func newRegionsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the governorates prices can be estimated for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			lang := a.settings.Language()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range region.All() {
				fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.DisplayName(lang))
			}
			return tw.Flush()
		},
	}
}
