package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/api"
	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/hooks"
	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/nats"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

var deleteFlags struct {
	yes bool
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
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
		id := args[1]

		if !deleteFlags.yes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %s %s?", res.Name, id))
			if err != nil {
				return err
			}
			if !ok {
				muted(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := client.Remove(cmd.Context(), res, id); err != nil {
			return fmt.Errorf("failed to delete %s %s: %w", res.Name, id, err)
		}
		success(cmd.OutOrStdout(), "Deleted %s %s.", res.Name, id)
		recordDeletion(cmd.Context(), cfg.NATSDir(), cfg.Session, res, id)
		runHooks(cmd.Context(), cmd.OutOrStdout(), hookPostDelete, hooks.Variables{
			Resource: res.Name,
			Session:  cfg.Session,
			RecordID: id,
			Status:   "deleted",
		})
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N] ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// recordDeletion adds the deletion to the history. Failures are logged
// only, the record is already gone.
func recordDeletion(ctx context.Context, dir, session string, res resource.Resource, id string) {
	store, closeStore, err := drafts.Open(ctx, dir)
	if err != nil {
		logger.Warn("Failed to open history: %v", err)
		return
	}
	defer func() { _ = closeStore() }()
	if _, err := store.Record(ctx, drafts.Event{
		Resource: res.Name,
		Session:  session,
		Type:     nats.EventDeleted,
		RecordID: id,
	}); err != nil {
		logger.Warn("Failed to record deletion: %v", err)
	}
}
