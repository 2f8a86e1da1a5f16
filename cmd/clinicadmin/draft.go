package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/listing"
	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	tuiwizard "github.com/cristalexdent/clinicadmin/internal/tui/wizard"
)

var draftShowFlags struct {
	json bool
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect and discard saved wizard drafts",
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drafts",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, _ []string) error {
		return listDrafts(ctx, w, store)
	}),
}

var draftShowCmd = &cobra.Command{
	Use:   "show <resource>",
	Short: "Show the saved draft of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, args []string) error {
		return showDraft(ctx, w, store, cfg, args[0])
	}),
}

var draftDiscardCmd = &cobra.Command{
	Use:   "discard <resource>",
	Short: "Delete the saved draft of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, args []string) error {
		res, err := resource.Lookup(args[0])
		if err != nil {
			return err
		}
		if err := store.Discard(ctx, res.Name, cfg.Session); err != nil {
			return err
		}
		success(w, "Discarded the %s draft (session %q).", res.Name, cfg.Session)
		return nil
	}),
}

func init() {
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftDiscardCmd)

	draftShowCmd.Flags().BoolVar(&draftShowFlags.json, "json", false, "Print the draft as JSON")
}

type storeFunc func(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, args []string) error

// withStore loads the configuration and opens the draft storage around fn.
func withStore(fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := drafts.Open(cmd.Context(), cfg.NATSDir())
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("Failed to close draft storage: %v", err)
			}
		}()
		return fn(cmd.Context(), cmd.OutOrStdout(), store, cfg, args)
	}
}

var draftColumns = []listing.Column{
	{Key: "resource", Header: "Resource"},
	{Key: "session", Header: "Session"},
	{Key: "step", Header: "Step"},
	{Key: "fields", Header: "Fields"},
	{Key: "saved", Header: "Saved"},
}

func listDrafts(ctx context.Context, w io.Writer, store *drafts.Store) error {
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		muted(w, "No saved drafts.")
		return nil
	}
	rows := make([]listing.Row, len(entries))
	for i, e := range entries {
		step := strconv.Itoa(e.ActiveStep + 1)
		if res, err := resource.Lookup(e.Resource); err == nil {
			steps := res.Steps(nil)
			if e.ActiveStep >= 0 && e.ActiveStep < len(steps) {
				step += ". " + steps[e.ActiveStep].Label
			}
		}
		rows[i] = listing.Row{
			"resource": e.Resource,
			"session":  e.Session,
			"step":     step,
			"fields":   e.Fields,
			"saved":    e.SavedAt.Local().Format("2006-01-02 15:04"),
		}
	}
	fmt.Fprintln(w, listing.Render(draftColumns, rows, nil))
	return nil
}

func showDraft(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, name string) error {
	res, err := resource.Lookup(name)
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx, res, cfg.Session)
	if err != nil {
		return err
	}

	if draftShowFlags.json {
		data, err := sonic.ConfigStd.MarshalIndent(snap.Draft, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode draft: %w", err)
		}
		_, err = fmt.Fprintln(w, syntaxHighlight(w, string(data), "draft.json"))
		return err
	}

	steps := res.Steps(locales(cfg))
	md := tuiwizard.ReviewMarkdown(res, snap.Draft, locales(cfg))
	md += fmt.Sprintf("\n_Step %d of %d (%s), saved %s_\n",
		snap.ActiveStep+1, len(steps), steps[snap.ActiveStep].Label, snap.SavedAt.Local().Format("2006-01-02 15:04"))
	if isTerminal(w) {
		md = tuiwizard.RenderMarkdown(md, 100) + "\n"
	}
	_, err = fmt.Fprint(w, md)
	return err
}
