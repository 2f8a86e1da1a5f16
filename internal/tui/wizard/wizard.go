// Package wizard is the terminal front end of a content wizard: one form per
// step, a rendered review, and the outcome screen.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/editor"

	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/transfer"
	engine "github.com/cristalexdent/clinicadmin/internal/wizard"
)

// ErrCancelled is returned by Run when the user leaves before submitting.
var ErrCancelled = errors.New("wizard cancelled by user")

// Options configures a wizard run.
type Options struct {
	Resource resource.Resource
	// Engine is the session to drive. It may be restored from a draft.
	Engine *engine.Engine
	Submit engine.SubmitFunc
	// Locales are the languages shown for localized fields.
	Locales []record.Locale
	// StripHTML removes markup from imported files.
	StripHTML bool
	// ImportDir is where the import picker starts. Empty means the working
	// directory.
	ImportDir string
}

// Model is the BubbleTea model of a content wizard.
type Model struct {
	ctx       context.Context
	res       resource.Resource
	eng       *engine.Engine
	submit    engine.SubmitFunc
	locales   []record.Locale
	stripHTML bool

	forms  []*FormStep
	review *ReviewStep

	importing bool
	importDir string
	picker    *FilePicker

	submitting bool
	spinner    spinner.Model

	notice    string
	noticeErr bool

	cancelled bool
	width     int
	height    int
}

// New creates the model for opts.
func New(ctx context.Context, opts Options) *Model {
	locales := opts.Locales
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:       ctx,
		res:       opts.Resource,
		eng:       opts.Engine,
		submit:    opts.Submit,
		locales:   locales,
		stripHTML: opts.StripHTML,
		review:    NewReviewStep(),
		importDir: opts.ImportDir,
		spinner:   s,
		width:     80,
		height:    24,
	}
	m.buildForms()
	return m
}

// Run starts a standalone BubbleTea program for opts and returns the final
// engine state.
func Run(ctx context.Context, opts Options) (engine.State, error) {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return engine.State{}, fmt.Errorf("wizard failed: %w", err)
	}
	wizModel, ok := finalModel.(*Model)
	if !ok {
		return engine.State{}, fmt.Errorf("unexpected model type")
	}
	if wizModel.cancelled {
		return wizModel.eng.State(), ErrCancelled
	}
	return wizModel.eng.State(), nil
}

// buildForms creates one form per step except the review step and loads
// the current draft into them.
func (m *Model) buildForms() {
	st := m.eng.State()
	steps := m.eng.Steps()
	m.forms = make([]*FormStep, 0, len(steps)-1)
	for _, step := range steps[:len(steps)-1] {
		fields := make([]resource.Field, 0, len(step.Fields))
		for _, name := range step.Fields {
			if f, ok := m.res.Field(name); ok {
				fields = append(fields, f)
			}
		}
		form := NewFormStep(step.Label, fields, m.locales)
		form.Load(st.Draft)
		m.forms = append(m.forms, form)
	}
	if st.ActiveStep == m.reviewIndex() {
		m.review.SetDraft(m.res, st.Draft, m.locales)
	}
	m.updateSizes()
}

func (m *Model) reviewIndex() int { return m.eng.Len() - 1 }

func (m *Model) currentForm() *FormStep {
	st := m.eng.State()
	if st.ActiveStep < len(m.forms) {
		return m.forms[st.ActiveStep]
	}
	return nil
}

// Engine returns the session being driven.
func (m *Model) Engine() *engine.Engine { return m.eng }

// Cancelled reports whether the user left the wizard.
func (m *Model) Cancelled() bool { return m.cancelled }

// Init focuses the active form.
func (m *Model) Init() tea.Cmd {
	if form := m.currentForm(); form != nil {
		return form.Init()
	}
	return nil
}

// submittedMsg carries the outcome of a submission.
type submittedMsg struct {
	state engine.State
	err   error
}

// FieldEditedMsg is sent when the external editor returns with new content.
type FieldEditedMsg struct {
	Content string
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case submittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.setNotice(msg.err.Error(), true)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FileSelectedMsg:
		m.importing = false
		m.importFile(msg.Path)
		if form := m.currentForm(); form != nil {
			return m, form.Focus()
		}
		return m, nil

	case FieldEditedMsg:
		if form := m.currentForm(); form != nil {
			form.SetFocusedValue(msg.Content)
		}
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		if m.submitting {
			return m, nil
		}
		if m.importing {
			return m, m.updateImport(msg)
		}
		return m.handleKey(msg)
	}

	if form := m.currentForm(); form != nil {
		return m, form.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	st := m.eng.State()
	switch {
	case st.ActiveStep == m.eng.Len():
		return m.handleTerminalKey(msg, st)
	case st.ActiveStep == m.reviewIndex():
		return m.handleReviewKey(msg)
	default:
		return m.handleFormKey(msg, st)
	}
}

func (m *Model) handleFormKey(msg tea.KeyPressMsg, st engine.State) (tea.Model, tea.Cmd) {
	form := m.forms[st.ActiveStep]
	switch msg.String() {
	case "esc":
		if st.ActiveStep == 0 {
			m.cancelled = true
			return m, tea.Quit
		}
		return m, m.retreat()
	case "ctrl+n":
		return m, m.advance()
	case "enter":
		if !form.FocusedMultiline() {
			return m, m.advance()
		}
	case "ctrl+o":
		if m.eng.Steps()[st.ActiveStep].Importable {
			m.importing = true
			m.picker = NewFilePicker(m.importDir, ImportExtensions)
			m.updateSizes()
			form.Blur()
			return m, nil
		}
		m.setNotice("Import is only available on the first step", true)
		return m, nil
	case "ctrl+e":
		if form.FocusedMultiline() {
			return m, openEditor(form.FocusedValue())
		}
	}
	return m, form.Update(msg)
}

func (m *Model) handleReviewKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, m.retreat()
	case "enter", "ctrl+s":
		return m, m.startSubmit()
	}
	return m, m.review.Update(msg)
}

func (m *Model) handleTerminalKey(msg tea.KeyPressMsg, st engine.State) (tea.Model, tea.Cmd) {
	failed := st.Status == engine.StatusFailed
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "n":
		return m, m.startOver()
	case "enter", "b":
		if failed {
			if err := m.eng.Revise(); err != nil {
				m.setNotice(err.Error(), true)
				return m, nil
			}
			m.clearNotice()
			m.review.SetDraft(m.res, m.eng.State().Draft, m.locales)
			return m, nil
		}
		if msg.String() == "enter" {
			return m, m.startOver()
		}
	}
	return m, nil
}

// advance collects the active form and moves forward when it validates.
func (m *Model) advance() tea.Cmd {
	form := m.currentForm()
	if form == nil {
		return nil
	}
	values, fileErrs := form.Values()
	if !fileErrs.OK() {
		if err := m.eng.Reject(fileErrs); err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		form.SetErrors(fileErrs)
		m.setNotice(fmt.Sprintf("%d field(s) need attention", len(fileErrs)), true)
		return nil
	}
	errs, err := m.eng.Advance(values)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	if !errs.OK() {
		form.SetErrors(errs)
		m.setNotice(fmt.Sprintf("%d field(s) need attention", len(errs)), true)
		return nil
	}
	form.SetErrors(nil)
	form.Blur()
	m.clearNotice()

	st := m.eng.State()
	if st.ActiveStep == m.reviewIndex() {
		m.review.SetDraft(m.res, st.Draft, m.locales)
		return nil
	}
	next := m.forms[st.ActiveStep]
	next.Load(st.Draft)
	return next.Focus()
}

func (m *Model) retreat() tea.Cmd {
	if form := m.currentForm(); form != nil {
		form.Blur()
	}
	if err := m.eng.Retreat(); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.clearNotice()
	if form := m.currentForm(); form != nil {
		return form.Focus()
	}
	return nil
}

func (m *Model) startSubmit() tea.Cmd {
	m.submitting = true
	m.clearNotice()
	eng, fn, ctx := m.eng, m.submit, m.ctx
	submit := func() tea.Msg {
		st, err := eng.Submit(ctx, fn)
		return submittedMsg{state: st, err: err}
	}
	return tea.Batch(submit, m.spinner.Tick)
}

func (m *Model) startOver() tea.Cmd {
	if err := m.eng.Reset(); err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.clearNotice()
	m.buildForms()
	return m.forms[0].Focus()
}

// updateImport forwards keys to the import picker.
func (m *Model) updateImport(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "esc" {
		m.importing = false
		if form := m.currentForm(); form != nil {
			return form.Focus()
		}
		return nil
	}
	return m.picker.Update(msg)
}

// importFile merges a file into the draft together with the unsaved
// values of the active form.
func (m *Model) importFile(path string) {
	if path == "" {
		return
	}
	m.importDir = filepath.Dir(path)
	imported, err := transfer.ImportFile(m.res, path, transfer.Options{StripHTML: m.stripHTML})
	if err != nil {
		logger.Warn("Import of %s failed: %v", path, err)
		m.setNotice(err.Error(), true)
		return
	}

	patch := record.Draft{}
	if form := m.currentForm(); form != nil {
		current, _ := form.Values()
		for k, v := range current {
			if !record.IsEmpty(v) {
				patch[k] = v
			}
		}
	}
	patch.Merge(imported)
	if err := m.eng.ImportPartial(patch); err != nil {
		m.setNotice(err.Error(), true)
		return
	}

	draft := m.eng.State().Draft
	for _, form := range m.forms {
		form.Load(draft)
	}
	m.setNotice(fmt.Sprintf("Imported %d field(s) from %s", len(imported), filepath.Base(path)), false)
}

// openEditor launches $EDITOR on content and reports the edited text.
func openEditor(content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "clinicadmin_field_*.md")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("clinicadmin", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(tmpfile.Name()) }()
		if err != nil {
			return nil
		}
		data, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return FieldEditedMsg{Content: string(data)}
	})
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice = s
	m.noticeErr = isErr
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeErr = false
}

// updateSizes passes the content area to every step.
func (m *Model) updateSizes() {
	contentWidth := m.modalWidth() - 6
	contentHeight := m.height - 14
	if contentHeight < 10 {
		contentHeight = 10
	}
	for _, form := range m.forms {
		form.SetSize(contentWidth, contentHeight)
	}
	m.review.SetSize(contentWidth, contentHeight)
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
	}
}

func (m *Model) modalWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render builds the centered modal for the current state.
func (m *Model) render() string {
	st := m.eng.State()
	var sections []string

	sections = append(sections, styleModalTitle.Render(m.title(st)))
	sections = append(sections, m.renderSteps(st))
	sections = append(sections, "")

	bar := NewButtonBar(nil)
	bar.SetWidth(m.modalWidth() - 6)
	var hints string

	switch {
	case st.Status == engine.StatusInFlight || m.submitting:
		sections = append(sections, m.spinner.View()+" Submitting "+strings.ToLower(m.res.Title)+"...")
	case st.ActiveStep == m.eng.Len():
		sections = append(sections, m.renderTerminal(st))
		failed := st.Status == engine.StatusFailed
		bar = NewButtonBar(terminalButtons(failed))
		if failed {
			hints = renderHintBar("enter/b", "back to review", "n", "start over", "q", "quit")
		} else {
			hints = renderHintBar("enter/n", "add another", "q", "quit")
		}
	case st.ActiveStep == m.reviewIndex():
		sections = append(sections, m.review.View())
		bar = NewButtonBar(stepButtons(false, "Submit"))
		hints = renderHintBar("↑↓", "scroll", "enter", "submit", "esc", "back")
	default:
		if m.importing {
			sections = append(sections, styleLabelFocused.Render("Import from file"), "", m.picker.View())
			break
		}
		sections = append(sections, m.forms[st.ActiveStep].View())
		bar = NewButtonBar(stepButtons(st.ActiveStep == 0, "Next →"))
		pairs := []string{"tab", "next field", "ctrl+n", "next step"}
		if m.eng.Steps()[st.ActiveStep].Importable {
			pairs = append(pairs, "ctrl+o", "import")
		}
		if m.forms[st.ActiveStep].FocusedMultiline() {
			pairs = append(pairs, "ctrl+e", "editor")
		}
		if st.ActiveStep == 0 {
			pairs = append(pairs, "esc", "cancel")
		} else {
			pairs = append(pairs, "esc", "back")
		}
		hints = renderHintBar(pairs...)
	}

	if m.notice != "" {
		style := styleNotice
		if m.noticeErr {
			style = styleFieldError
		}
		sections = append(sections, "", style.Render(m.notice))
	}
	if rendered := bar.Render(); rendered != "" {
		sections = append(sections, "", rendered)
	}
	if hints != "" {
		sections = append(sections, "", hints)
	}

	modal := styleModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func (m *Model) title(st engine.State) string {
	n := m.eng.Len()
	if st.ActiveStep >= n {
		return m.res.Title + " Wizard"
	}
	return fmt.Sprintf("%s Wizard - Step %d of %d: %s", m.res.Title, st.ActiveStep+1, n, m.eng.Steps()[st.ActiveStep].Label)
}

// renderSteps draws the step indicator. Done steps are green, the errored
// step red.
func (m *Model) renderSteps(st engine.State) string {
	steps := m.eng.Steps()
	parts := make([]string, len(steps))
	for i, step := range steps {
		label := fmt.Sprintf("%d. %s", i+1, step.Label)
		switch {
		case i == st.ErroredStep:
			parts[i] = styleStepErrored.Render("✗ " + label)
		case i == st.ActiveStep:
			parts[i] = styleStepActive.Render("● " + label)
		case i < st.ActiveStep:
			parts[i] = styleStepDone.Render("✓ " + label)
		default:
			parts[i] = styleStepPending.Render("○ " + label)
		}
	}
	return strings.Join(parts, styleHintSeparator.Render("  ›  "))
}

func (m *Model) renderTerminal(st engine.State) string {
	if st.Status == engine.StatusSucceeded {
		return styleSuccess.Render("✓ " + m.res.Title + " saved successfully")
	}
	return styleFailure.Render("✗ Submission failed") + "\n\n" + st.Message
}
