package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/listing"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history [resource]",
	Short: "Show submissions and deletions",
	Args:  cobra.MaximumNArgs(1),
	RunE: withStore(func(ctx context.Context, w io.Writer, store *drafts.Store, cfg *config.Config, args []string) error {
		name := ""
		if len(args) == 1 {
			res, err := resource.Lookup(args[0])
			if err != nil {
				return err
			}
			name = res.Name
		}
		return showHistory(ctx, w, store, name, historyFlags.limit)
	}),
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Show at most this many recent events, 0 for all")
}

var historyColumns = []listing.Column{
	{Key: "time", Header: "Time"},
	{Key: "resource", Header: "Resource"},
	{Key: "session", Header: "Session"},
	{Key: "type", Header: "Event"},
	{Key: "outcome", Header: "Outcome"},
}

func showHistory(ctx context.Context, w io.Writer, store *drafts.Store, name string, limit int) error {
	events, err := store.History(ctx, name)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		muted(w, "No history yet.")
		return nil
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	rows := make([]listing.Row, len(events))
	for i, ev := range events {
		outcome := string(ev.Status)
		switch {
		case ev.RecordID != "":
			outcome = "id " + ev.RecordID
		case ev.Message != "":
			outcome += ": " + ev.Message
		}
		rows[i] = listing.Row{
			"time":     ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			"resource": ev.Resource,
			"session":  ev.Session,
			"type":     ev.Type,
			"outcome":  outcome,
		}
	}
	_, err = fmt.Fprintln(w, listing.Render(historyColumns, rows, nil))
	return err
}
