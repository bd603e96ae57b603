package main

import (
	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/session"
)

func (a *app) windowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Edit the main window state",
	}
	cmd.AddCommand(a.windowSetCommand())
	return cmd
}

func (a *app) windowSetCommand() *cobra.Command {
	var (
		title                string
		x, y, w, h           int
		maximize, fullscreen bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the window title, geometry or mode flags",
		Long: `Change the window title, geometry or mode flags.

Only the flags given are changed. Width and height must be positive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var u session.WindowUpdate
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("x") {
				u.X = &x
			}
			if flags.Changed("y") {
				u.Y = &y
			}
			if flags.Changed("w") {
				u.Width = &w
			}
			if flags.Changed("h") {
				u.Height = &h
			}
			if flags.Changed("maximize") {
				u.Maximized = &maximize
			}
			if flags.Changed("fullscreen") {
				u.Fullscreen = &fullscreen
			}

			var win layout.WindowState
			err := a.edit(func(sess *session.Session) error {
				var err error
				win, err = sess.SetWindowState(u)
				return err
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "window: %s", formatWindow(win))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "window title")
	cmd.Flags().IntVar(&x, "x", 0, "left edge")
	cmd.Flags().IntVar(&y, "y", 0, "top edge")
	cmd.Flags().IntVar(&w, "w", 0, "width")
	cmd.Flags().IntVar(&h, "h", 0, "height")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximized flag (--maximize=false to clear)")
	cmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "fullscreen flag (--fullscreen=false to clear)")
	return cmd
}
