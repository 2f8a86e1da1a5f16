package wizard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	engine "github.com/cristalexdent/clinicadmin/internal/wizard"
)

func init() {
	lipgloss.Writer.Profile = colorprofile.Ascii
}

var (
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyEsc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	keyCtrlS = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	keyCtrlO = tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl}
)

func letter(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func newServiceModel(t *testing.T, submit engine.SubmitFunc) *Model {
	t.Helper()
	res, err := resource.Lookup("service")
	require.NoError(t, err)
	eng, err := res.NewEngine(record.DefaultLocales)
	require.NoError(t, err)
	m := New(context.Background(), Options{Resource: res, Engine: eng, Submit: submit})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Init()
	return m
}

func press(m *Model, msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// finishSubmit runs the commands returned when a submission starts and
// feeds the outcome back into the model.
func finishSubmit(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch of commands")
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(submittedMsg); ok {
			m.Update(msg)
			return
		}
	}
	t.Fatal("no submission result in batch")
}

func fillText(m *Model) {
	m.forms[0].Load(record.Draft{
		"titleKey": "Cleaning",
		"descKey":  "Professional cleaning",
		"price":    "100",
	})
}

func plain(m *Model) string {
	return ansi.Strip(m.render())
}

func TestWizard_AdvanceToReview(t *testing.T) {
	m := newServiceModel(t, nil)
	assert.Contains(t, plain(m), "Service Wizard - Step 1 of 3: Add Text")

	fillText(m)
	press(m, keyEnter)
	st := m.Engine().State()
	require.Equal(t, 1, st.ActiveStep)
	assert.Equal(t, "Cleaning", st.Draft.String("titleKey"))
	assert.Contains(t, plain(m), "Step 2 of 3: Add Images")

	press(m, keyEnter)
	st = m.Engine().State()
	require.Equal(t, 2, st.ActiveStep)
	assert.Contains(t, m.review.Content(), "- **Title key**: Cleaning")
	assert.Contains(t, m.review.Content(), "- **Image**: _empty_")
	assert.Contains(t, plain(m), "Submit")
}

func TestWizard_InvalidStepShowsErrors(t *testing.T) {
	m := newServiceModel(t, nil)
	press(m, keyEnter)

	st := m.Engine().State()
	assert.Equal(t, 0, st.ActiveStep)
	assert.Equal(t, 0, st.ErroredStep)
	assert.Empty(t, st.Draft)

	out := plain(m)
	assert.Contains(t, out, "✗ Title is required")
	assert.Contains(t, out, "✗ Description is required")
	assert.Contains(t, out, "✗ Price is required")
	assert.Contains(t, out, "3 field(s) need attention")
	assert.Contains(t, out, "✗ 1. Add Text")

	// Typing into the failing input clears its message.
	press(m, letter('x'))
	assert.NotContains(t, plain(m), "Title is required")
	assert.Contains(t, plain(m), "Price is required")
}

func TestWizard_EscOnFirstStepCancels(t *testing.T) {
	m := newServiceModel(t, nil)
	cmd := press(m, keyEsc)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Cancelled())
}

func TestWizard_EscRetreatsKeepingDraft(t *testing.T) {
	m := newServiceModel(t, nil)
	fillText(m)
	press(m, keyEnter)
	require.Equal(t, 1, m.Engine().State().ActiveStep)

	press(m, keyEsc)
	st := m.Engine().State()
	assert.Equal(t, 0, st.ActiveStep)
	assert.False(t, m.Cancelled())
	assert.Equal(t, "Cleaning", m.forms[0].FocusedValue())
}

func TestWizard_SubmitSuccess(t *testing.T) {
	var got record.Draft
	m := newServiceModel(t, func(_ context.Context, d record.Draft) error {
		got = d
		return nil
	})
	fillText(m)
	press(m, keyEnter)
	press(m, keyEnter)

	cmd := press(m, keyCtrlS)
	assert.Contains(t, plain(m), "Submitting service...")
	finishSubmit(t, m, cmd)

	st := m.Engine().State()
	assert.Equal(t, engine.StatusSucceeded, st.Status)
	assert.Equal(t, 3, st.ActiveStep)
	assert.Equal(t, "100", got.String("price"))
	out := plain(m)
	assert.Contains(t, out, "✓ Service saved successfully")
	assert.Contains(t, out, "Add another")

	// Add another starts a fresh session.
	press(m, letter('n'))
	st = m.Engine().State()
	assert.Equal(t, 0, st.ActiveStep)
	assert.Empty(t, st.Draft)
	assert.Equal(t, "", m.forms[0].FocusedValue())
}

func TestWizard_SubmitFailureThenRevise(t *testing.T) {
	fail := true
	m := newServiceModel(t, func(context.Context, record.Draft) error {
		if fail {
			return errors.New("HTTP 500: database unavailable")
		}
		return nil
	})
	fillText(m)
	press(m, keyEnter)
	press(m, keyEnter)
	finishSubmit(t, m, press(m, keyEnter))

	st := m.Engine().State()
	require.Equal(t, engine.StatusFailed, st.Status)
	out := plain(m)
	assert.Contains(t, out, "✗ Submission failed")
	assert.Contains(t, out, "HTTP 500: database unavailable")
	assert.Contains(t, out, "Back to review")

	press(m, letter('b'))
	st = m.Engine().State()
	assert.Equal(t, 2, st.ActiveStep)
	assert.Equal(t, engine.StatusIdle, st.Status)
	assert.Equal(t, "Cleaning", st.Draft.String("titleKey"))

	fail = false
	finishSubmit(t, m, press(m, keyCtrlS))
	assert.Equal(t, engine.StatusSucceeded, m.Engine().State().Status)
}

func TestWizard_FailureStartOver(t *testing.T) {
	m := newServiceModel(t, func(context.Context, record.Draft) error {
		return errors.New("down")
	})
	fillText(m)
	press(m, keyEnter)
	press(m, keyEnter)
	finishSubmit(t, m, press(m, keyEnter))

	press(m, letter('n'))
	st := m.Engine().State()
	assert.Equal(t, 0, st.ActiveStep)
	assert.Equal(t, engine.StatusIdle, st.Status)
	assert.Empty(t, st.Draft)
}

func TestWizard_KeysIgnoredWhileSubmitting(t *testing.T) {
	m := newServiceModel(t, func(context.Context, record.Draft) error { return nil })
	fillText(m)
	press(m, keyEnter)
	press(m, keyEnter)
	cmd := press(m, keyEnter)
	require.True(t, m.submitting)

	assert.Nil(t, press(m, keyEsc))
	assert.Equal(t, 2, m.Engine().State().ActiveStep)
	finishSubmit(t, m, cmd)
	assert.False(t, m.submitting)
}

func TestWizard_ImportFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service.md")
	content := "# Service\n\n## titleKey\n<b>Whitening</b>\n\n## price\n250\n\n## unknown\nignored\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := newServiceModel(t, nil)
	m.stripHTML = true
	m.forms[0].Load(record.Draft{"descKey": "Typed before import"})

	press(m, keyCtrlO)
	require.True(t, m.importing)
	assert.Contains(t, plain(m), "Import from file")

	m.Update(FileSelectedMsg{Path: path})
	assert.False(t, m.importing)

	st := m.Engine().State()
	assert.Equal(t, 0, st.ActiveStep)
	assert.Equal(t, "Whitening", st.Draft.String("titleKey"))
	assert.Equal(t, "250", st.Draft.String("price"))
	assert.Equal(t, "Typed before import", st.Draft.String("descKey"))
	assert.Contains(t, plain(m), "service.md")
	assert.Equal(t, dir, m.importDir)

	press(m, keyEnter)
	assert.Equal(t, 1, m.Engine().State().ActiveStep)
}

func TestWizard_ImportOnlyOnFirstStep(t *testing.T) {
	m := newServiceModel(t, nil)
	fillText(m)
	press(m, keyEnter)

	press(m, keyCtrlO)
	assert.False(t, m.importing)
	assert.Contains(t, plain(m), "Import is only available on the first step")
}

func TestWizard_ImportPickerEscCloses(t *testing.T) {
	m := newServiceModel(t, nil)
	m.importDir = t.TempDir()
	press(m, keyCtrlO)
	require.True(t, m.importing)
	press(m, keyEsc)
	assert.False(t, m.importing)
	assert.False(t, m.Cancelled())
}

func TestWizard_ResumedAtReview(t *testing.T) {
	res, err := resource.Lookup("service")
	require.NoError(t, err)
	eng, err := res.NewEngine(record.DefaultLocales, engine.WithDraft(record.Draft{
		"titleKey": "Implant", "descKey": "d", "price": "900",
	}))
	require.NoError(t, err)
	_, err = eng.Advance(nil)
	require.NoError(t, err)
	_, err = eng.Advance(nil)
	require.NoError(t, err)

	m := New(context.Background(), Options{Resource: res, Engine: eng})
	assert.Contains(t, m.review.Content(), "Implant")
	assert.Equal(t, "Implant", m.forms[0].inputs[0].value())
}

func TestWizard_FieldEdited(t *testing.T) {
	m := newServiceModel(t, nil)
	m.Update(FieldEditedMsg{Content: "Edited\n"})
	assert.Equal(t, "Edited", m.forms[0].FocusedValue())
}

func TestWizard_CtrlCCancelsAnywhere(t *testing.T) {
	m := newServiceModel(t, nil)
	fillText(m)
	press(m, keyEnter)
	cmd := press(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Cancelled())
}

func TestWizard_UnreadableFileFlagsStep(t *testing.T) {
	res, err := resource.Lookup("team-member")
	require.NoError(t, err)
	eng, err := res.NewEngine(record.DefaultLocales)
	require.NoError(t, err)
	m := New(context.Background(), Options{Resource: res, Engine: eng})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Init()

	m.forms[0].Load(record.Draft{"name": "Ana", "role": "Orthodontist"})
	press(m, keyEnter)
	require.Equal(t, 1, eng.State().ActiveStep)

	missing := filepath.Join(t.TempDir(), "missing.png")
	m.forms[1].SetFocusedValue(missing)
	press(m, keyEnter)

	st := eng.State()
	assert.Equal(t, 1, st.ActiveStep)
	assert.Equal(t, 1, st.ErroredStep)
	out := plain(m)
	assert.Contains(t, out, "✗ Cannot read "+missing)
	assert.Contains(t, out, "✗ 2. Add Images")
	assert.Contains(t, out, "1 field(s) need attention")
}
