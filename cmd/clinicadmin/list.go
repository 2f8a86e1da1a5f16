package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/api"
	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/listing"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

var listFlags struct {
	sort string
	desc bool
	page int
}

var listCmd = &cobra.Command{
	Use:       "list <resource>",
	Short:     "List the records of a resource",
	Args:      cobra.ExactArgs(1),
	ValidArgs: resource.Names(),
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
		return listRecords(cmd.Context(), cmd.OutOrStdout(), client, cfg, res)
	},
}

func init() {
	listCmd.Flags().StringVar(&listFlags.sort, "sort", "", "Column key to sort by, e.g. orderIndex")
	listCmd.Flags().BoolVar(&listFlags.desc, "desc", false, "Sort in descending order")
	listCmd.Flags().IntVarP(&listFlags.page, "page", "p", 1, "Page number")
}

func listRecords(ctx context.Context, w io.Writer, client *api.Client, cfg *config.Config, res resource.Resource) error {
	rows, err := client.List(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", res.Plural, err)
	}
	if len(rows) == 0 {
		muted(w, "No %s yet.", res.Plural)
		return nil
	}
	if listFlags.sort != "" {
		listing.Sort(rows, listFlags.sort, listFlags.desc, locales(cfg))
	}
	page := listing.Paginate(rows, listFlags.page, cfg.PageSize)
	fmt.Fprintln(w, listing.Render(res.Columns, page.Rows, locales(cfg)))
	muted(w, "Page %d of %d (%d %s)", page.Number, page.Total, page.Count, res.Plural)
	return nil
}
