package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/imageprep"
	"github.com/raine/balla/internal/region"
	"github.com/raine/balla/internal/session"
	"github.com/raine/balla/internal/settings"
	"github.com/spf13/cobra"
)

const shellHelp = `
	commands:
	  region <id>            select the governorate
	  regions                list governorates
	  condition <c>          new, clean_used or worn
	  year <yyyy|clear>      purchase year
	  photo <path|url>       load the item photo
	  submit                 estimate the price
	  show                   show the current result
	  reset                  start a new item (keeps the governorate)
	  back                   go back one step
	  history [query]        list or search past estimates
	  lang <ar|en>           interface language
	  theme [light|dark]     toggle or set the theme
	  status                 show the current selection
	  quit                   leave the shell`

func newShellCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session: pick a governorate, load photos, estimate and browse history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.newSession(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			sh := &shell{
				out:      cmd.OutOrStdout(),
				sess:     sess,
				settings: a.settings,
				source:   a.source(flags),
			}
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type shell struct {
	out      io.Writer
	sess     *session.Session
	settings *settings.Settings
	source   *imageprep.Source
}

var errQuit = errors.New("quit")

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(sh.out, "%s - %s\n", sh.settings.T(i18n.AppName), sh.settings.T(i18n.PriceEstimator))
	fmt.Fprintln(sh.out, `type "help" for commands`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "balla> ")
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func parseCommand(s string) (string, []string) {
	parts := strings.Fields(s)
	return strings.ToLower(parts[0]), parts[1:]
}

func (sh *shell) exec(ctx context.Context, line string) error {
	command, args := parseCommand(line)
	lang := sh.settings.Language()

	switch command {
	case "help", "?":
		fmt.Fprintln(sh.out, formatText(shellHelp))
	case "quit", "exit":
		return errQuit
	case "regions":
		for _, r := range region.All() {
			fmt.Fprintf(sh.out, "  %-12s %s\n", r.ID, r.DisplayName(lang))
		}
	case "region":
		if len(args) != 1 {
			return errors.New("usage: region <id>")
		}
		if err := sh.sess.SelectRegion(region.ID(args[0])); err != nil {
			return err
		}
		sh.status()
	case "condition":
		if len(args) != 1 {
			return errors.New("usage: condition <new|clean_used|worn>")
		}
		if err := sh.sess.SetCondition(analysis.Condition(args[0])); err != nil {
			return err
		}
		sh.status()
	case "year":
		if len(args) != 1 {
			return errors.New("usage: year <yyyy|clear>")
		}
		year := 0
		if args[0] != "clear" {
			y, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			year = y
		}
		if err := sh.sess.SetPurchaseYear(year); err != nil {
			return err
		}
		sh.status()
	case "photo":
		if len(args) != 1 {
			return errors.New("usage: photo <path|url>")
		}
		data, err := sh.source.Load(ctx, args[0])
		if err != nil {
			return err
		}
		img, err := sh.sess.LoadImage(ctx, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "photo %dx%d -> %dx%d (%d KB)\n", img.SourceWidth, img.SourceHeight, img.Width, img.Height, img.EncodedSize/1024)
	case "submit":
		fmt.Fprintf(sh.out, "%s...\n", sh.settings.T(i18n.AnalyzingTitle))
		result, err := sh.sess.Submit(ctx)
		if err != nil {
			// Failures were already shown as notices.
			var ae *analysis.Error
			if errors.As(err, &ae) {
				return nil
			}
			return err
		}
		renderResult(sh.out, lang, sh.sess.Region(), result)
	case "show":
		result := sh.sess.Result()
		if result == nil {
			return errors.New("no result to show")
		}
		renderResult(sh.out, lang, sh.sess.Region(), result)
	case "reset":
		if err := sh.sess.Reset(); err != nil {
			return err
		}
		sh.status()
	case "back":
		if err := sh.sess.Back(); err != nil {
			return err
		}
		sh.status()
	case "history":
		query := strings.Join(args, " ")
		renderHistory(sh.out, lang, sh.sess.History().Search(query), query != "")
	case "lang":
		if len(args) != 1 {
			return errors.New("usage: lang <ar|en>")
		}
		l, err := i18n.ParseLanguage(args[0])
		if err != nil {
			return err
		}
		if err := sh.settings.SetLanguage(l); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "language: %s\n", l)
	case "theme":
		if len(args) == 0 {
			theme, err := sh.settings.ToggleTheme()
			if err != nil {
				return err
			}
			fmt.Fprintf(sh.out, "theme: %s\n", theme)
			return nil
		}
		theme, err := settings.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := sh.settings.SetTheme(theme); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "theme: %s\n", theme)
	case "status":
		sh.status()
	default:
		return fmt.Errorf("unknown command %q, type \"help\"", command)
	}
	return nil
}

func (sh *shell) status() {
	lang := sh.settings.Language()
	regionName := "-"
	if id := sh.sess.Region(); id != "" {
		if r, err := region.Lookup(id); err == nil {
			regionName = r.DisplayName(lang)
		}
	}
	conditionName := "-"
	if c := sh.sess.Condition(); c != "" {
		conditionName = c.Label(lang)
	}
	year := "-"
	if y := sh.sess.PurchaseYear(); y != 0 {
		year = strconv.Itoa(y)
	}
	photo := "-"
	if img := sh.sess.Image(); img != nil {
		photo = fmt.Sprintf("%dx%d", img.Width, img.Height)
	}
	fmt.Fprintf(sh.out, "[%s] region=%s condition=%s year=%s photo=%s history=%d\n",
		sh.sess.Screen(), regionName, conditionName, year, photo, sh.sess.History().Len())
}
