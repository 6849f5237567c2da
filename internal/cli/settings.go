package cli

import (
	"fmt"

	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/settings"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the language and theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			printSettings(cmd, a)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "language <ar|en>",
		Short:     "Set the interface language",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(i18n.Arabic), string(i18n.English)},
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := i18n.ParseLanguage(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.settings.SetLanguage(lang); err != nil {
				return err
			}
			printSettings(cmd, a)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "theme <light|dark|toggle>",
		Short:     "Set the color theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(settings.Light), string(settings.Dark), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if args[0] == "toggle" {
				if _, err := a.settings.ToggleTheme(); err != nil {
					return err
				}
			} else {
				theme, err := settings.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := a.settings.SetTheme(theme); err != nil {
					return err
				}
			}
			printSettings(cmd, a)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the stored language and theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.settings.Reset(); err != nil {
				return err
			}
			printSettings(cmd, a)
			return nil
		},
	})

	return cmd
}

func printSettings(cmd *cobra.Command, a *app) {
	s := a.settings
	dir := "ltr"
	if s.IsRTL() {
		dir = "rtl"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatText(`
		language: %s (%s)
		theme: %s`, s.Language(), dir, s.Theme()))

	prefs, err := a.store.GetAllPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list stored preferences")
		return
	}
	if len(prefs) == 0 {
		fmt.Fprintln(out, "stored: none")
		return
	}
	fmt.Fprintln(out, "stored:")
	for _, p := range prefs {
		fmt.Fprintf(out, "  %s = %s (%s)\n", p.Key, p.Value, p.UpdatedAt.Format("2006-01-02 15:04"))
	}
}
