package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/tui/theme"
)

const (
	logoText1 = "█▀▀ █   █ █▄ █ █ █▀▀ ▄▀█ █▀▄ █▀▄▀█ █ █▄ █"
	logoText2 = "█▄▄ █▄▄ █ █ ▀█ █ █▄▄ █▀█ █▄▀ █ ▀ █ █ █ ▀█"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clinicadmin",
	Short: "Manage the content of the clinic website from the terminal",
}

var rootFlags struct {
	apiURL   string
	dataDir  string
	session  string
	logLevel string
	locales  []string
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

clinicadmin creates and edits the records of the clinic website (team members,
services, gallery media, social media posts, testimonials and blog articles)
through step-by-step wizards. Records can be prefilled from JSON or Markdown
files, offline templates can be generated, and unfinished wizards are kept as
drafts in an embedded NATS JetStream so they can be resumed later.`

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.apiURL, "api-url", "", "Clinic API base URL (default: from config)")
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for drafts and history (default: from config)")
	pf.StringVarP(&rootFlags.session, "session", "s", "", "Draft session name (default: from config)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringSliceVar(&rootFlags.locales, "locales", nil, "Locales of localized fields, e.g. en,ro,ru")

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig loads the configuration, applies the global flags and
// configures the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if rootFlags.session != "" {
		cfg.Session = rootFlags.session
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if len(rootFlags.locales) > 0 {
		cfg.Locales = rootFlags.locales
	}
}

func locales(cfg *config.Config) []record.Locale {
	if locs := record.ParseLocales(cfg.Locales); len(locs) > 0 {
		return locs
	}
	return record.DefaultLocales
}
