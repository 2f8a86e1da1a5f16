package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/transfer"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

var importFlags struct {
	diff   bool
	dryRun bool
}

var importCmd = &cobra.Command{
	Use:   "import <resource> <file>",
	Short: "Merge a JSON or Markdown file into a draft",
	Long: `Merge a JSON or Markdown file into the draft of the current session.

Imported values replace the draft values of the same fields; fields the file
does not mention are kept. Imports are only accepted while the draft is on
its first step. Use --diff to see what changes and --dry-run to leave the
stored draft untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importFlags.diff, "diff", "d", false, "Show how the draft changes")
	importCmd.Flags().BoolVar(&importFlags.dryRun, "dry-run", false, "Do not save the merged draft")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := resource.Lookup(args[0])
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
	return importIntoDraft(cmd.Context(), cmd.OutOrStdout(), store, cfg, res, args[1])
}

// importIntoDraft merges path into the stored draft of cfg.Session.
func importIntoDraft(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, res resource.Resource, path string) error {
	imported, err := transfer.ImportFile(res, path, transfer.Options{StripHTML: cfg.StripHTML})
	if err != nil {
		return err
	}

	eng, err := res.NewEngine(locales(cfg))
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx, res, cfg.Session)
	switch {
	case errors.Is(err, drafts.ErrNotFound):
	case err != nil:
		return err
	default:
		if err := eng.Restore(snap); err != nil {
			return fmt.Errorf("failed to load draft: %w", err)
		}
	}

	before := eng.State().Draft
	if err := eng.ImportPartial(imported); err != nil {
		if errors.Is(err, wizard.ErrImportNotAllowed) {
			return fmt.Errorf("the %s draft is past its first step; go back to %q in the wizard to import", res.Name, resource.StepText)
		}
		return err
	}
	after := eng.State().Draft

	if importFlags.diff {
		diff, err := draftDiff(before, after, filepath.Base(path), isTerminal(w))
		if err != nil {
			return err
		}
		if diff == "" {
			muted(w, "No changes.")
		} else {
			fmt.Fprint(w, diff)
		}
	}
	if importFlags.dryRun {
		muted(w, "Dry run, draft not saved.")
		return nil
	}

	next, err := eng.Snapshot()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, cfg.Session, next); err != nil {
		return err
	}
	success(w, "Imported %d field(s) from %s into the %s draft (session %q).", len(imported), filepath.Base(path), res.Name, cfg.Session)
	return nil
}

// draftDiff compares two drafts as indented JSON with sorted keys.
func draftDiff(before, after record.Draft, source string, color bool) (string, error) {
	a, err := sonic.ConfigStd.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode draft: %w", err)
	}
	b, err := sonic.ConfigStd.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode draft: %w", err)
	}
	return unifiedDiff("draft", "draft+"+source, string(a)+"\n", string(b)+"\n", color), nil
}
