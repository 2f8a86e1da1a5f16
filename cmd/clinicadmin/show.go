package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/api"
	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	tuiwizard "github.com/cristalexdent/clinicadmin/internal/tui/wizard"
)

var showFlags struct {
	json bool
}

var showCmd = &cobra.Command{
	Use:   "show <resource> <id>",
	Short: "Show one record",
	Long: `Show one record as stored by the backend, field by field.

Edit it with: clinicadmin wizard <resource> --id <id>`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := resource.Lookup(args[0])
		if err != nil {
			return err
		}
		client, err := api.New(cfg)
		if err != nil {
			return err
		}
		return showRecord(cmd.Context(), cmd.OutOrStdout(), client, cfg, res, args[1])
	},
}

func init() {
	showCmd.Flags().BoolVar(&showFlags.json, "json", false, "Print the record as JSON")
}

func showRecord(ctx context.Context, w io.Writer, client *api.Client, cfg *config.Config, res resource.Resource, id string) error {
	d, err := client.Fetch(ctx, res, id)
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", res.Name, id, err)
	}

	if showFlags.json {
		data, err := sonic.ConfigStd.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", res.Name, err)
		}
		_, err = fmt.Fprintln(w, syntaxHighlight(w, string(data), res.FileSlug()+".json"))
		return err
	}

	md := tuiwizard.ReviewMarkdown(res, d, locales(cfg))
	md += fmt.Sprintf("\n_ID %s. Edit with `clinicadmin wizard %s --id %s`_\n", api.RecordID(d), res.Name, api.RecordID(d))
	if isTerminal(w) {
		md = tuiwizard.RenderMarkdown(md, 100) + "\n"
	}
	_, err = fmt.Fprint(w, md)
	return err
}
