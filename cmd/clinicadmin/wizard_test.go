package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/hooks"
	"github.com/cristalexdent/clinicadmin/internal/nats"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

func trackedEngine(t *testing.T, store *drafts.Store) (*wizard.Engine, *draftTracker) {
	t.Helper()
	res := lookup(t, "service")
	tracker := newDraftTracker(context.Background(), store, res, "front-desk")
	eng, err := res.NewEngine(record.DefaultLocales, wizard.WithObserver(tracker.observe))
	require.NoError(t, err)
	tracker.eng = eng
	return eng, tracker
}

var validService = record.Draft{"titleKey": "Cleaning", "descKey": "Teeth cleaning", "price": "100"}

func TestDraftTracker_SavesProgress(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	eng, tracker := trackedEngine(t, store)

	errs, err := eng.Advance(validService)
	require.NoError(t, err)
	require.True(t, errs.OK())
	assert.True(t, tracker.hasDraft())

	snap, err := store.Load(ctx, lookup(t, "service"), "front-desk")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ActiveStep)
	assert.Equal(t, "Cleaning", snap.Draft.String("titleKey"))

	// A failed step is saved too, with the flag.
	require.NoError(t, eng.Retreat())
	errs, err = eng.Advance(record.Draft{"price": ""})
	require.NoError(t, err)
	require.False(t, errs.OK())
	snap, err = store.Load(ctx, lookup(t, "service"), "front-desk")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ErroredStep)
}

func TestDraftTracker_FailedSubmissionKeepsDraft(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	eng, tracker := trackedEngine(t, store)

	_, err := eng.Advance(validService)
	require.NoError(t, err)
	_, err = eng.Advance(nil)
	require.NoError(t, err)
	st, err := eng.Submit(ctx, func(context.Context, record.Draft) error {
		return errors.New("HTTP 502: bad gateway")
	})
	require.NoError(t, err)
	require.Equal(t, wizard.StatusFailed, st.Status)

	assert.True(t, tracker.hasDraft())
	snap, err := store.Load(ctx, lookup(t, "service"), "front-desk")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ActiveStep)

	events, err := store.History(ctx, "service")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, nats.EventSubmission, events[0].Type)
	assert.Equal(t, wizard.StatusFailed, events[0].Status)
	assert.Equal(t, "HTTP 502: bad gateway", events[0].Message)
	assert.Equal(t, "front-desk", events[0].Session)

	// Starting over drops the stored draft.
	require.NoError(t, eng.Reset())
	assert.False(t, tracker.hasDraft())
	_, err = store.Load(ctx, lookup(t, "service"), "front-desk")
	assert.ErrorIs(t, err, drafts.ErrNotFound)
}

func TestDraftTracker_SuccessDiscardsDraft(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	eng, tracker := trackedEngine(t, store)

	_, err := eng.Advance(validService)
	require.NoError(t, err)
	_, err = eng.Advance(nil)
	require.NoError(t, err)
	_, err = eng.Submit(ctx, func(context.Context, record.Draft) error { return nil })
	require.NoError(t, err)

	assert.False(t, tracker.hasDraft())
	_, err = store.Load(ctx, lookup(t, "service"), "front-desk")
	assert.ErrorIs(t, err, drafts.ErrNotFound)

	events, err := store.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, wizard.StatusSucceeded, events[0].Status)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank(nil))
	assert.True(t, isBlank(record.Draft{"titleKey": " ", "features": []string{}}))
	assert.False(t, isBlank(record.Draft{"isActive": false}))
	assert.False(t, isBlank(record.Draft{"price": "1"}))
}

func TestReportOutcome(t *testing.T) {
	t.Chdir(t.TempDir())
	content := `version: 1
hooks:
  post_submit:
    - command: "echo saved {{resource}} {{id}} for {{session}}"
`
	require.NoError(t, os.WriteFile(hooks.ConfigFileName, []byte(content), 0o644))
	res := lookup(t, "service")

	var out bytes.Buffer
	st := wizard.State{Status: wizard.StatusSucceeded}
	require.NoError(t, reportOutcome(context.Background(), &out, testConfig(), res, st, "abc123"))
	assert.Contains(t, out.String(), "Service saved.")
	assert.Contains(t, out.String(), "saved service abc123 for front-desk")

	out.Reset()
	st = wizard.State{Status: wizard.StatusFailed, Message: "title already exists"}
	err := reportOutcome(context.Background(), &out, testConfig(), res, st, "")
	assert.ErrorContains(t, err, "submission failed: title already exists")
	assert.NotContains(t, out.String(), "saved service")
}
