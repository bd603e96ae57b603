package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/ipc"
)

func (a *app) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Control a session hosted by 'hazzy run'",
	}
	cmd.AddCommand(a.sessionStatusCommand())
	cmd.AddCommand(a.sessionReloadCommand())
	cmd.AddCommand(a.sessionSaveCommand())
	cmd.AddCommand(a.sessionPositionsCommand())
	cmd.AddCommand(a.sessionDroCommand())
	return cmd
}

func (a *app) client() *ipc.Client {
	return ipc.NewClient(a.socketPath)
}

func (a *app) sessionStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the hosted session's layout and save state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().Status()
			if err != nil {
				return err
			}
			state := "saved"
			if st.Dirty {
				state = styleWarning.Render("unsaved changes")
			}
			fmt.Fprintf(a.out, "layout:  %s\n", st.Path)
			fmt.Fprintf(a.out, "state:   %s\n", state)
			fmt.Fprintf(a.out, "content: %s, %s\n", plural(st.Screens, "screen"), plural(st.Widgets, "widget"))
			fmt.Fprintf(a.out, "uptime:  %s\n", time.Duration(st.UptimeSeconds)*time.Second)
			return nil
		},
	}
}

func (a *app) sessionReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the layout file into the hosted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().Reload()
			if err != nil {
				return err
			}
			for _, w := range data.Warnings {
				printWarning(a.out, "%s", w)
			}
			printSuccess(a.out, "reloaded")
			return nil
		},
	}
}

func (a *app) sessionSaveCommand() *cobra.Command {
	var onlyIfDirty bool
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the hosted session's layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := a.client().Save(onlyIfDirty)
			if err != nil {
				return err
			}
			if saved {
				printSuccess(a.out, "saved")
			} else {
				printInfo(a.out, "nothing to save")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyIfDirty, "if-dirty", false, "only write when there are unsaved changes")
	return cmd
}

func (a *app) sessionPositionsCommand() *cobra.Command {
	var abs, rel, dtg []float64
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Publish axis positions to the hosted session's widgets",
		Long: `Publish axis positions to the hosted session's widgets.

Values are comma-separated in xyzabcuvw order, e.g. --rel 1.5,0,-2.25.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.client().PublishPositions(ipc.PositionsPayload{Abs: abs, Rel: rel, DTG: dtg})
			if err != nil {
				return err
			}
			printSuccess(a.out, "published")
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&abs, "abs", nil, "absolute positions")
	cmd.Flags().Float64SliceVar(&rel, "rel", nil, "relative positions")
	cmd.Flags().Float64SliceVar(&dtg, "dtg", nil, "distance to go")
	return cmd
}

func (a *app) sessionDroCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dro",
		Short: "Show what every DRO widget in the hosted session displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			readouts, err := a.client().Readouts()
			if err != nil {
				return err
			}
			if len(readouts) == 0 {
				printInfo(a.out, "no DRO widgets placed")
				return nil
			}
			for _, r := range readouts {
				fmt.Fprintf(a.out, "%s %s %s\n", styleTitle.Render(r.Screen), r.Package, styleDim.Render(r.ID))
				fmt.Fprintln(a.out, "  "+formatReadout(r))
			}
			return nil
		},
	}
}

func formatReadout(r ipc.Readout) string {
	parts := make([]string, 0, len(r.Axes))
	for _, axis := range r.Axes {
		parts = append(parts, fmt.Sprintf("%s %s", strings.ToUpper(string(axis)), r.Text[string(axis)]))
	}
	return strings.Join(parts, "  ")
}
