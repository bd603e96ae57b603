package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/preview"
	"github.com/kcjengr/hazzy/internal/watch"
)

const (
	defaultPreviewWidth = 80
	maxPreviewWidth     = 120
)

var errLayoutInvalid = errors.New("layout has problems")

func (a *app) layoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect, validate and initialize the layout file",
	}
	cmd.AddCommand(a.layoutShowCommand())
	cmd.AddCommand(a.layoutValidateCommand())
	cmd.AddCommand(a.layoutInitCommand())
	cmd.AddCommand(a.layoutWatchCommand())
	return cmd
}

func (a *app) layoutShowCommand() *cobra.Command {
	var (
		screenName string
		width      int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the window, screens and a preview of each screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(nil)
			if err != nil {
				return err
			}
			defer sess.Close()
			snap := sess.Snapshot()

			if screenName != "" {
				var picked []layout.ScreenSnapshot
				for _, scr := range snap.Screens {
					if scr.Name == screenName {
						picked = append(picked, scr)
					}
				}
				if len(picked) == 0 {
					return fmt.Errorf("no screen named %q", screenName)
				}
				snap.Screens = picked
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			if width <= 0 {
				width = defaultPreviewWidth
				if f, ok := a.out.(*os.File); ok {
					width = preview.TerminalWidth(f, defaultPreviewWidth)
				}
			}
			width = min(width, maxPreviewWidth)
			a.printLayout(snap, sess.Path(), width)
			printWarnings(a.out, sess.Warnings())
			return nil
		},
	}
	cmd.Flags().StringVar(&screenName, "screen", "", "show only this screen")
	cmd.Flags().IntVar(&width, "width", 0, "preview width in columns (default: terminal width)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	return cmd
}

func (a *app) printLayout(snap layout.Snapshot, path string, width int) {
	fmt.Fprintln(a.out, styleTitle.Render("Layout")+" "+styleDim.Render(path))
	fmt.Fprintln(a.out, "Window: "+formatWindow(snap.Window))
	if len(snap.Screens) == 0 {
		printInfo(a.out, "no screens")
		return
	}
	height := preview.HeightFor(snap.Window, width)
	for i, scr := range snap.Screens {
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "%s %s %q  %s\n",
			styleNumber.Render(fmt.Sprintf("[%d]", i)),
			styleTitle.Render(scr.Name),
			scr.Title,
			styleDim.Render(plural(len(scr.Widgets), "widget")))
		for _, line := range preview.Render(snap.Window, scr, width, height) {
			fmt.Fprintln(a.out, line)
		}
		for _, line := range preview.Legend(scr) {
			printDetail(a.out, "%s", line)
		}
	}
}

func (a *app) layoutValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the layout file and report every problem found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.newStore()
			if err != nil {
				return err
			}
			res := store.Load()
			if res.Missing {
				printInfo(a.out, "%s does not exist; defaults will be used", store.Path())
				return nil
			}
			if len(res.Warnings) > 0 {
				printWarnings(a.out, res.Warnings)
				return fmt.Errorf("%w: %s: %d problem(s)", errLayoutInvalid, store.Path(), len(res.Warnings))
			}
			snap := res.Model.Snapshot()
			widgets := 0
			for _, scr := range snap.Screens {
				widgets += len(scr.Widgets)
			}
			printSuccess(a.out, "layout: ok (%s, %s)", plural(len(snap.Screens), "screen"), plural(widgets, "widget"))
			return nil
		},
	}
}

func (a *app) layoutInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default layout file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.newStore()
			if err != nil {
				return err
			}
			if _, err := os.Stat(store.Path()); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", store.Path())
			}
			if err := store.Save(layout.DefaultModel(store.Defaults())); err != nil {
				return err
			}
			printSuccess(a.out, "wrote %s", store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing layout file")
	return cmd
}

func (a *app) layoutWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and report the layout every time the file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.newStore()
			if err != nil {
				return err
			}

			report := func() {
				res := store.Load()
				snap := res.Model.Snapshot()
				switch {
				case res.Missing:
					printInfo(a.out, "%s: missing", store.Path())
				case res.Corrupt != nil:
					printWarning(a.out, "%s: corrupt", store.Path())
				default:
					printSuccess(a.out, "%s: %s", store.Path(), plural(len(snap.Screens), "screen"))
				}
				printWarnings(a.out, res.Warnings)
			}

			w, err := watch.New(store.Path(), watch.Options{
				Logger:   a.slog(),
				OnChange: report,
			})
			if err != nil {
				return err
			}
			defer w.Close()

			report()
			w.Run(cmd.Context())
			return nil
		},
	}
}
