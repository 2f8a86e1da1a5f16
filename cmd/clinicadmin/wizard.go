package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/api"
	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/hooks"
	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	tuiwizard "github.com/cristalexdent/clinicadmin/internal/tui/wizard"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

var wizardFlags struct {
	resume    bool
	id        string
	importDir string
}

var wizardCmd = &cobra.Command{
	Use:   "wizard <resource>",
	Short: "Create or update a record step by step",
	Long: `Create or update a record of the clinic website step by step.

Every wizard has three steps: the text fields, the images, and a review page
from which the record is submitted. The text step can be prefilled from a
JSON or Markdown file (ctrl+o).

Progress is saved as a draft after every step. Use --resume to continue the
draft of the current session. A draft is removed once it is submitted
successfully; a failed submission keeps it so it can be retried.

Use --id to edit an existing record: it is fetched from the backend, the
wizard starts prefilled and submitting updates the record in place. Stored
images are kept unless a new file is chosen.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: resource.Names(),
	RunE:      runWizard,
}

func init() {
	wizardCmd.Flags().BoolVarP(&wizardFlags.resume, "resume", "r", false, "Continue the saved draft of this session")
	wizardCmd.Flags().StringVar(&wizardFlags.id, "id", "", "Edit the existing record with this id")
	wizardCmd.MarkFlagsMutuallyExclusive("resume", "id")
	wizardCmd.Flags().StringVar(&wizardFlags.importDir, "import-dir", "", "Directory the import picker starts in")
}

func runWizard(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := drafts.Open(ctx, cfg.NATSDir())
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close draft storage: %v", err)
		}
	}()

	opts, err := editOptions(ctx, client, res, wizardFlags.id)
	if err != nil {
		return err
	}

	tracker := newDraftTracker(ctx, store, res, cfg.Session)
	eng, err := res.NewEngine(locales(cfg), append(opts, wizard.WithObserver(tracker.observe))...)
	if err != nil {
		return err
	}
	tracker.eng = eng

	if wizardFlags.resume {
		snap, err := store.Load(ctx, res, cfg.Session)
		switch {
		case errors.Is(err, drafts.ErrNotFound):
			muted(cmd.ErrOrStderr(), "No saved %s draft for session %q, starting fresh.", res.Name, cfg.Session)
		case err != nil:
			return err
		default:
			tracker.saved = true
			if err := eng.Restore(snap); err != nil {
				return fmt.Errorf("failed to resume draft: %w", err)
			}
		}
	}

	var savedID atomic.Value
	st, err := tuiwizard.Run(ctx, tuiwizard.Options{
		Resource:  res,
		Engine:    eng,
		Submit:    client.Submitter(res, func(id string) { savedID.Store(id) }),
		Locales:   locales(cfg),
		StripHTML: cfg.StripHTML,
		ImportDir: wizardFlags.importDir,
	})
	if errors.Is(err, tuiwizard.ErrCancelled) {
		if tracker.hasDraft() {
			muted(cmd.OutOrStdout(), "Draft saved. Continue with: clinicadmin wizard %s --resume", res.Name)
		}
		return nil
	}
	if err != nil {
		return err
	}
	id, _ := savedID.Load().(string)
	return reportOutcome(ctx, cmd.OutOrStdout(), cfg, res, st, id)
}

// reportOutcome prints the result of a finished wizard and runs the
// post_submit hooks for the record the backend saved as id.
func reportOutcome(ctx context.Context, w io.Writer, cfg *config.Config, res resource.Resource, st wizard.State, id string) error {
	switch st.Status {
	case wizard.StatusSucceeded:
		success(w, "%s saved.", res.Title)
		runHooks(ctx, w, hookPostSubmit, hooks.Variables{
			Resource: res.Name,
			Session:  cfg.Session,
			RecordID: id,
			Status:   string(st.Status),
		})
	case wizard.StatusFailed:
		return fmt.Errorf("submission failed: %s (draft kept, retry with --resume)", st.Message)
	}
	return nil
}

// editOptions prefills the engine with the record id, when id is set.
func editOptions(ctx context.Context, client *api.Client, res resource.Resource, id string) ([]wizard.Option, error) {
	if id == "" {
		return nil, nil
	}
	existing, err := client.Fetch(ctx, res, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", res.Name, id, err)
	}
	return []wizard.Option{wizard.WithDraft(existing)}, nil
}

// draftTracker keeps the stored draft in step with an engine and records
// submission outcomes in the history.
type draftTracker struct {
	ctx     context.Context
	store   *drafts.Store
	res     resource.Resource
	session string
	eng     *wizard.Engine

	mu sync.Mutex
	// saved reports whether a draft is currently stored.
	saved bool
	last  wizard.Status
}

func newDraftTracker(ctx context.Context, store *drafts.Store, res resource.Resource, session string) *draftTracker {
	return &draftTracker{ctx: ctx, store: store, res: res, session: session, last: wizard.StatusIdle}
}

// observe is a wizard observer. It runs on the goroutine that changed the
// state.
func (t *draftTracker) observe(st wizard.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.last
	t.last = st.Status

	switch st.Status {
	case wizard.StatusInFlight:
		return
	case wizard.StatusSucceeded, wizard.StatusFailed:
		if prev == wizard.StatusInFlight {
			if _, err := t.store.RecordSubmission(t.ctx, t.res.Name, t.session, st); err != nil {
				logger.Warn("Failed to record submission: %v", err)
			}
		}
		if st.Status == wizard.StatusSucceeded {
			t.discard()
			return
		}
	}

	if st.ActiveStep == 0 && st.ErroredStep == wizard.NoStep && isBlank(st.Draft) {
		t.discard()
		return
	}
	t.save()
}

func (t *draftTracker) hasDraft() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved
}

func (t *draftTracker) save() {
	if t.eng == nil {
		return
	}
	snap, err := t.eng.Snapshot()
	if err != nil {
		logger.Debug("Not saving draft: %v", err)
		return
	}
	if err := t.store.Save(t.ctx, t.session, snap); err != nil {
		logger.Warn("Failed to save draft: %v", err)
		return
	}
	t.saved = true
}

func (t *draftTracker) discard() {
	if !t.saved {
		return
	}
	err := t.store.Discard(t.ctx, t.res.Name, t.session)
	if err != nil && !errors.Is(err, drafts.ErrNotFound) {
		logger.Warn("Failed to discard draft: %v", err)
		return
	}
	t.saved = false
}

func isBlank(d record.Draft) bool {
	for _, v := range d {
		if !record.IsEmpty(v) {
			return false
		}
	}
	return true
}
