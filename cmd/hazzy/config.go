package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kcjengr/hazzy/internal/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(a.configValidateCommand())
	cmd.AddCommand(a.configPrintCommand())
	cmd.AddCommand(a.configPathCommand())
	cmd.AddCommand(a.configExplainCommand())
	return cmd
}

func (a *app) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.loadConfig(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "config: ok")
			return nil
		},
	}
}

func (a *app) configPrintCommand() *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				res, err := a.loadConfig()
				if err != nil {
					return err
				}
				cfg = res.Config
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print built-in defaults (no files)")
	return cmd
}

func (a *app) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config, layout and widgets paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			res, err := a.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "config:  %s\n", path)
			fmt.Fprintf(a.out, "layout:  %s\n", res.Config.LayoutFile)
			fmt.Fprintf(a.out, "widgets: %s\n", res.Config.WidgetsDir)
			return nil
		},
	}
}

func (a *app) configExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "explain PATH",
		Short:     "Show a config value and where it was set",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Paths(),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.loadConfig()
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "path: %s\n", args[0])
			fmt.Fprintf(a.out, "source: %s\n", formatSource(src))
			fmt.Fprintf(a.out, "value:\n%s", string(out))
			return nil
		},
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
