package cli

import (
	"encoding/json"
	"fmt"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/region"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var (
		regionID  string
		condition string
		year      int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <photo>",
		Short: "Estimate the resale price of the item in a photo",
		Long: `Prepares the photo, sends it to the analysis endpoint with the chosen
governorate and prints the estimate. The photo may be a file path or an
http(s) URL.`,
		Example: `  balla analyze sofa.jpg --region basra --condition clean_used
  balla analyze https://example.com/phone.png -r baghdad -c new --year 2023 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if regionID != "" {
				if err := sess.SelectRegion(region.ID(regionID)); err != nil {
					return err
				}
			}
			if condition != "" {
				if err := sess.SetCondition(analysis.Condition(condition)); err != nil {
					return err
				}
			}
			if year != 0 {
				if err := sess.SetPurchaseYear(year); err != nil {
					return err
				}
			}

			data, err := a.source(flags).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := sess.LoadImage(cmd.Context(), data); err != nil {
				return err
			}

			result, err := sess.Submit(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(result)
			}
			renderResult(out, a.settings.Language(), sess.Region(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&regionID, "region", "r", "", fmt.Sprintf("Governorate id, e.g. baghdad (see %q)", "balla regions"))
	cmd.Flags().StringVarP(&condition, "condition", "c", "", "Declared condition: new, clean_used or worn")
	cmd.Flags().IntVar(&year, "year", 0, "Purchase year (optional)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw result as JSON")

	return cmd
}
