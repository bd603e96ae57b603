package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kcjengr/hazzy/internal/config"
	"github.com/kcjengr/hazzy/internal/layout"
	"github.com/kcjengr/hazzy/internal/mcp"
	"github.com/kcjengr/hazzy/internal/registry"
	"github.com/kcjengr/hazzy/internal/session"
	"github.com/kcjengr/hazzy/internal/status"
	"github.com/kcjengr/hazzy/internal/widgets"
	"github.com/kcjengr/hazzy/internal/xdgpath"
)

// app holds state shared by all commands.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	layoutPath string
	socketPath string
	verbose    bool

	logger *log.Logger
	res    *config.LoadResult
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		logger: log.NewWithOptions(errOut, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.InfoLevel,
		}),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hazzy",
		Short:         "Hazzy screen layout editor and session host",
		Long:          `Hazzy keeps the operator interface layout (main window, screens and placed widgets) in an XML layout file. These commands inspect and edit that file, serve it over MCP, and host a live session that autosaves.`,
		Version:       mcp.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose {
				a.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: ~/.config/hazzy/config.yaml)")
	flags.StringVar(&a.layoutPath, "layout", "", "layout file (overrides layout_file from config)")
	flags.StringVar(&a.socketPath, "socket", "", "session control socket (default: $XDG_RUNTIME_DIR/hazzy.sock)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.layoutCommand())
	root.AddCommand(a.screenCommand())
	root.AddCommand(a.widgetCommand())
	root.AddCommand(a.windowCommand())
	root.AddCommand(a.configCommand())
	root.AddCommand(a.mcpCommand())
	root.AddCommand(a.runCommand())
	root.AddCommand(a.sessionCommand())

	return root
}

// loadConfig loads the configuration once and applies --layout.
func (a *app) loadConfig() (*config.LoadResult, error) {
	if a.res != nil {
		return a.res, nil
	}

	var res *config.LoadResult
	var err error
	if a.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(a.configPath)
	}
	if err != nil {
		return nil, err
	}

	if a.layoutPath != "" {
		p, err := xdgpath.ExpandHome(a.layoutPath)
		if err != nil {
			return nil, err
		}
		if p, err = filepath.Abs(p); err != nil {
			return nil, fmt.Errorf("failed to resolve layout path: %w", err)
		}
		res.Config.LayoutFile = p
	}
	if !a.verbose {
		a.logger.SetLevel(parseLogLevel(res.Config.LogLevel))
	}

	a.res = res
	return res, nil
}

func (a *app) slog() *slog.Logger {
	return slog.New(a.logger)
}

func parseLogLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func layoutDefaults(cfg *config.Config) layout.Defaults {
	d := layout.BuiltinDefaults()
	d.ProductName = cfg.ProductName
	d.Window.Width = cfg.Window.DefaultWidth
	d.Window.Height = cfg.Window.DefaultHeight
	d.ScreenName = cfg.Screen.DefaultName
	d.ScreenTitle = cfg.Screen.DefaultTitle
	return d
}

func (a *app) newRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg := registry.New(cfg.WidgetsDir, a.slog())
	opts := widgets.Options{
		DecimalPlaces: cfg.Dro.DecimalPlaces,
		Coordinates:   cfg.Dro.Coordinates,
	}
	if err := widgets.RegisterBuiltins(reg, opts); err != nil {
		return nil, fmt.Errorf("failed to register widgets: %w", err)
	}
	if err := reg.Scan(); err != nil {
		a.logger.Warn("widget scan failed", "dir", cfg.WidgetsDir, "error", err)
	}
	return reg, nil
}

func (a *app) newStore() (*layout.Store, *registry.Registry, error) {
	res, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg := res.Config
	reg, err := a.newRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := layout.NewStore(layout.StoreOptions{
		Path:     cfg.LayoutFile,
		Resolver: reg,
		Defaults: layoutDefaults(cfg),
		Logger:   a.slog(),
	})
	return store, reg, nil
}

// openSession loads the layout. svc may be nil.
func (a *app) openSession(svc *status.Service) (*session.Session, error) {
	store, reg, err := a.newStore()
	if err != nil {
		return nil, err
	}
	return session.Open(session.Options{
		Store:    store,
		Registry: reg,
		Status:   svc,
		Logger:   a.slog(),
	})
}

// edit opens a session, applies fn and saves when fn changed the layout.
func (a *app) edit(fn func(*session.Session) error) error {
	sess, err := a.openSession(nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := fn(sess); err != nil {
		return err
	}
	if _, err := sess.SaveIfDirty(); err != nil {
		return err
	}
	return nil
}
