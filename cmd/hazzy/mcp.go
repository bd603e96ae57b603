package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/autosave"
	"github.com/kcjengr/hazzy/internal/mcp"
	"github.com/kcjengr/hazzy/internal/session"
)

func (a *app) mcpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.

Edits stay in memory until the save_layout tool is called, the autosave
interval elapses, or the server exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.openSession(nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			stop := a.startAutosave(ctx, sess)
			runErr := mcp.NewServer(sess, a.slog()).Run(ctx)
			stop()
			if _, err := sess.SaveIfDirty(); err != nil {
				return err
			}
			if runErr != nil && ctx.Err() == nil {
				return runErr
			}
			return nil
		},
	})
	return cmd
}

// startAutosave runs the autosave loop until the returned stop is called.
func (a *app) startAutosave(ctx context.Context, sess *session.Session) (stop func()) {
	interval := time.Duration(a.res.Config.Autosave.IntervalSeconds) * time.Second
	if interval <= 0 {
		a.logger.Debug("autosave disabled")
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	loop := autosave.New(autosave.Config{Interval: interval, Logger: a.slog()}, sess)
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
