package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebreen/luffe/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

// resolveConfigTarget expands an explicit path, or falls back to the
// default config location when none was given.
func resolveConfigTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(raw)
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveConfigTarget(targetPath)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set session_token and api_token (or export INSTAGRAM_SESSION_TOKEN and AUDD_API_TOKEN) before running Luffe.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration and report resolved paths",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(targetPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Loaded %s\n", path)
			} else {
				fmt.Fprintf(out, "No config file at %s; using built-in defaults\n", path)
			}
			fmt.Fprintf(out, "  data dir:    %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "  staging dir: %s\n", cfg.Paths.StagingDir)
			fmt.Fprintf(out, "  log dir:     %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "  database:    %s\n", cfg.DatabasePath())
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Configuration file to check")
	return cmd
}
