package main

import (
	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/ipc"
	"github.com/kcjengr/hazzy/internal/session"
	"github.com/kcjengr/hazzy/internal/status"
	"github.com/kcjengr/hazzy/internal/watch"
)

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Host a layout session until interrupted",
		Long: `Host a layout session until interrupted.

The layout is loaded with live widgets, saved on the autosave interval when it
has changes, reloaded when the file changes on disk and nothing is unsaved,
and saved once more on SIGINT or SIGTERM. 'hazzy session' commands talk to it
over a unix control socket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := status.NewService()
			sess, err := a.openSession(svc)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctl, err := ipc.NewServer(a.socketPath, sess, svc, a.slog())
			if err != nil {
				return err
			}
			if err := ctl.Start(); err != nil {
				return err
			}
			defer ctl.Stop()

			snap := sess.Snapshot()
			widgets := 0
			for _, scr := range snap.Screens {
				widgets += len(scr.Widgets)
			}
			a.logger.Info("session open", "path", sess.Path(), "screens", len(snap.Screens), "widgets", widgets)

			w, err := watch.New(sess.Path(), watch.Options{
				Logger:   a.slog(),
				OnChange: func() { a.reloadChanged(sess) },
			})
			if err != nil {
				return err
			}
			defer w.Close()

			stop := a.startAutosave(ctx, sess)
			w.Run(ctx)
			stop()

			saved, err := sess.SaveIfDirty()
			if err != nil {
				return err
			}
			a.logger.Info("session closed", "saved", saved)
			return nil
		},
	}
}

// reloadChanged reloads the session after an external edit unless that would
// discard unsaved changes. Events caused by the session's own saves are
// ignored.
func (a *app) reloadChanged(sess *session.Session) {
	changed, err := sess.ChangedOnDisk()
	if err != nil {
		a.logger.Error("layout check failed", "error", err)
		return
	}
	if !changed {
		a.logger.Debug("layout file unchanged", "path", sess.Path())
		return
	}
	if sess.Dirty() {
		a.logger.Warn("layout changed on disk; keeping unsaved changes", "path", sess.Path())
		return
	}
	warnings, err := sess.Reload()
	if err != nil {
		a.logger.Error("reload failed", "error", err)
		return
	}
	a.logger.Info("layout reloaded", "path", sess.Path(), "warnings", len(warnings))
}
