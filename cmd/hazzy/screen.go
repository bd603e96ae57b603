package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/session"
)

func (a *app) screenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "List and edit screens",
	}
	cmd.AddCommand(a.screenListCommand())
	cmd.AddCommand(a.screenAddCommand())
	cmd.AddCommand(a.screenRemoveCommand())
	cmd.AddCommand(a.screenMoveCommand())
	cmd.AddCommand(a.screenRenameCommand())
	return cmd
}

func (a *app) screenListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List screens in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			for i, scr := range sess.Snapshot().Screens {
				fmt.Fprintf(a.out, "%s  %-16s %-24s %s\n",
					styleNumber.Render(strconv.Itoa(i)),
					scr.Name,
					strconv.Quote(scr.Title),
					styleDim.Render(plural(len(scr.Widgets), "widget")))
			}
			return nil
		},
	}
}

func (a *app) screenAddCommand() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Append a new empty screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if title == "" {
				title = name
			}
			err := a.edit(func(sess *session.Session) error {
				return sess.AddScreen(name, title)
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "added screen %s", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "display title (default: NAME)")
	return cmd
}

func (a *app) screenRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a screen and all of its widgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.edit(func(sess *session.Session) error {
				return sess.RemoveScreen(args[0])
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "removed screen %s", args[0])
			return nil
		},
	}
}

func (a *app) screenMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move NAME POSITION",
		Short: "Move a screen to a zero-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}
			err = a.edit(func(sess *session.Session) error {
				return sess.ReorderScreen(args[0], pos)
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "moved screen %s", args[0])
			return nil
		},
	}
}

func (a *app) screenRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename NAME TITLE",
		Short: "Change a screen's display title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.edit(func(sess *session.Session) error {
				return sess.RenameScreen(args[0], args[1])
			})
			if err != nil {
				return err
			}
			printSuccess(a.out, "screen %s is now %q", args[0], args[1])
			return nil
		},
	}
}
