package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cristalexdent/clinicadmin/internal/config"
)

var configInitFlags struct {
	project bool
	force   bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration",
	Long: `Show or create the clinicadmin configuration.

Configuration is loaded from multiple sources with the following precedence:
  CLI flags > Environment variables (CLINICADMIN_*) > .env > Project config > Global config > Defaults

Project config: ./clinicadmin.yml
Global config: ~/.config/clinicadmin/clinicadmin.yml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cfg)
		return showConfig(cmd.OutOrStdout(), cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the defaults",
	Long: `Create a configuration file with the defaults.

By default, creates a global config at ~/.config/clinicadmin/clinicadmin.yml.
Use --project to create a project-local config in the current directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.OutOrStdout(), configInitFlags.project, configInitFlags.force)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVarP(&configInitFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	configInitCmd.Flags().BoolVarP(&configInitFlags.force, "force", "f", false, "Overwrite existing config file")
}

func showConfig(w io.Writer, cfg *config.Config) error {
	shown := *cfg
	if shown.APIToken != "" {
		shown.APIToken = maskSecret(shown.APIToken)
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = fmt.Fprint(w, syntaxHighlight(w, string(data), "clinicadmin.yml"))
	return err
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func initConfig(w io.Writer, project, force bool) error {
	targetPath := config.GlobalPath()
	if project {
		targetPath = config.ProjectPath()
	}

	if !force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Default()
	var err error
	if project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	success(w, "Config written to: %s", targetPath)
	fmt.Fprintln(w, "Set api_token there or in CLINICADMIN_API_TOKEN, then run 'clinicadmin wizard <resource>'.")
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
