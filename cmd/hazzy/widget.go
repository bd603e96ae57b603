package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/geometry"
	"github.com/kcjengr/hazzy/internal/session"
)

func (a *app) widgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "List widget packages and edit placed widgets",
		Long: `List widget packages and edit placed widgets.

Placed widgets are addressed by screen name and their 1-based number as shown
by 'hazzy layout show'.`,
	}
	cmd.AddCommand(a.widgetListCommand())
	cmd.AddCommand(a.widgetPlaceCommand())
	cmd.AddCommand(a.widgetMoveCommand())
	cmd.AddCommand(a.widgetResizeCommand())
	cmd.AddCommand(a.widgetRemoveCommand())
	return cmd
}

func (a *app) widgetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the widget packages that can be placed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.loadConfig()
			if err != nil {
				return err
			}
			reg, err := a.newRegistry(res.Config)
			if err != nil {
				return err
			}
			for _, e := range reg.List() {
				fmt.Fprintf(a.out, "%-24s %-12s %s\n",
					styleTitle.Render(e.DisplayName),
					e.Package,
					styleDim.Render(fmt.Sprintf("%dx%d", e.DefaultSize.Width, e.DefaultSize.Height)))
				if e.Description != "" {
					printDetail(a.out, "%s", e.Description)
				}
			}
			return nil
		},
	}
}

func (a *app) widgetPlaceCommand() *cobra.Command {
	var x, y, w, h int
	cmd := &cobra.Command{
		Use:   "place SCREEN PACKAGE",
		Short: "Place a new widget on a screen",
		Long: `Place a new widget on a screen.

Without geometry flags the widget goes to the origin at the package's default
size. Omitted flags keep those defaults.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			screenName, pkg := args[0], args[1]
			flags := cmd.Flags()
			var placed int
			err := a.edit(func(sess *session.Session) error {
				var rect *geometry.Rect
				if flags.Changed("x") || flags.Changed("y") || flags.Changed("w") || flags.Changed("h") {
					r := geometry.Rect{X: x, Y: y}
					for _, e := range sess.Packages() {
						if e.Package == pkg {
							r.Width, r.Height = e.DefaultSize.Width, e.DefaultSize.Height
						}
					}
					if flags.Changed("w") {
						r.Width = w
					}
					if flags.Changed("h") {
						r.Height = h
					}
					if err := r.Validate(); err != nil {
						return err
					}
					rect = &r
				}
				if _, err := sess.PlaceWidget(screenName, pkg, rect); err != nil {
					return err
				}
				for _, scr := range sess.Snapshot().Screens {
					if scr.Name == screenName {
						placed = len(scr.Widgets)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "placed %s on %s as widget %d", pkg, screenName, placed)
			return nil
		},
	}
	cmd.Flags().IntVar(&x, "x", 0, "left edge")
	cmd.Flags().IntVar(&y, "y", 0, "top edge")
	cmd.Flags().IntVar(&w, "w", 0, "width (default: package default)")
	cmd.Flags().IntVar(&h, "h", 0, "height (default: package default)")
	return cmd
}

// parseInts converts positional arguments to integers.
func parseInts(args ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, s := range args {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// editWidget resolves SCREEN and 1-based NUMBER to an instance and runs fn.
func (a *app) editWidget(screenName string, number int, fn func(*session.Session, uuid.UUID) error) error {
	return a.edit(func(sess *session.Session) error {
		id, err := sess.WidgetAt(screenName, number-1)
		if err != nil {
			return err
		}
		return fn(sess, id)
	})
}

func (a *app) widgetMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move SCREEN NUMBER X Y",
		Short: "Move a placed widget",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args[1:]...)
			if err != nil {
				return err
			}
			err = a.editWidget(args[0], nums[0], func(sess *session.Session, id uuid.UUID) error {
				return sess.MoveWidget(id, nums[1], nums[2])
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "moved widget %d on %s to (%d,%d)", nums[0], args[0], nums[1], nums[2])
			return nil
		},
	}
}

func (a *app) widgetResizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize SCREEN NUMBER W H",
		Short: "Resize a placed widget",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args[1:]...)
			if err != nil {
				return err
			}
			err = a.editWidget(args[0], nums[0], func(sess *session.Session, id uuid.UUID) error {
				return sess.ResizeWidget(id, nums[1], nums[2])
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "resized widget %d on %s to %dx%d", nums[0], args[0], nums[1], nums[2])
			return nil
		},
	}
}

func (a *app) widgetRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove SCREEN NUMBER",
		Short: "Remove a placed widget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args[1])
			if err != nil {
				return err
			}
			err = a.editWidget(args[0], nums[0], func(sess *session.Session, id uuid.UUID) error {
				return sess.RemoveWidget(id)
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "removed widget %d from %s", nums[0], args[0])
			return nil
		},
	}
}
