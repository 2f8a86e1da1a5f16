package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/validate"
)

// input is one editable control. A localized field gets one input per
// locale.
type input struct {
	field  resource.Field
	locale record.Locale

	multi bool
	line  textinput.Model
	area  textarea.Model

	// checked holds the value of a boolean field.
	checked bool
	// files remembers resolved references so unchanged paths are not
	// read again.
	files map[string]record.FileRef
}

func (in *input) key() record.Key {
	return record.Key{Field: in.field.Name, Locale: in.locale}
}

func (in *input) isBool() bool { return in.field.Kind == record.KindBool }

func (in *input) label() string {
	if in.locale != "" {
		return fmt.Sprintf("%s (%s)", in.field.Label, in.locale)
	}
	return in.field.Label
}

func (in *input) value() string {
	if in.isBool() {
		return ""
	}
	if in.multi {
		return in.area.Value()
	}
	return in.line.Value()
}

func (in *input) setValue(s string) {
	if in.multi {
		in.area.SetValue(s)
		return
	}
	in.line.SetValue(s)
}

func (in *input) focus() tea.Cmd {
	if in.isBool() {
		return nil
	}
	if in.multi {
		return in.area.Focus()
	}
	return in.line.Focus()
}

func (in *input) blur() {
	if in.isBool() {
		return
	}
	if in.multi {
		in.area.Blur()
		return
	}
	in.line.Blur()
}

func (in *input) setWidth(w int) {
	if in.isBool() {
		return
	}
	if in.multi {
		in.area.SetWidth(w)
		return
	}
	in.line.SetWidth(w)
}

// FormStep edits the fields of one wizard step.
type FormStep struct {
	label   string
	inputs  []*input
	focus   int
	errors  validate.Errors
	base    record.Draft
	width   int
	height  int
	focused bool
}

var inputStyles = textinput.Styles{
	Focused: textinput.StyleState{
		Text:        lipgloss.NewStyle().Foreground(colorText),
		Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
		Prompt:      lipgloss.NewStyle().Foreground(colorSecondary),
	},
	Blurred: textinput.StyleState{
		Text:        lipgloss.NewStyle().Foreground(colorSubtext0),
		Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
		Prompt:      lipgloss.NewStyle().Foreground(colorOverlay0),
	},
	Cursor: textinput.CursorStyle{
		Color: colorPrimary,
		Shape: tea.CursorBar,
		Blink: true,
	},
}

// NewFormStep builds the inputs for fields. Localized fields are expanded
// per locale.
func NewFormStep(label string, fields []resource.Field, locales []record.Locale) *FormStep {
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}
	f := &FormStep{
		label:  label,
		base:   record.Draft{},
		width:  60,
		height: 20,
	}
	for _, field := range fields {
		if field.Localized() {
			for _, loc := range locales {
				f.inputs = append(f.inputs, newInput(field, loc))
			}
			continue
		}
		f.inputs = append(f.inputs, newInput(field, ""))
	}
	return f
}

func newInput(field resource.Field, locale record.Locale) *input {
	in := &input{field: field, locale: locale, files: map[string]record.FileRef{}}
	switch field.Kind {
	case record.KindMultiline, record.KindList, record.KindFiles:
		in.multi = true
	case record.KindLocalized:
		in.multi = field.Multiline
	}

	if in.multi {
		ta := textarea.New()
		ta.ShowLineNumbers = false
		ta.SetHeight(3)
		ta.SetWidth(50)
		switch field.Kind {
		case record.KindFiles:
			ta.Placeholder = "One file path per line"
		case record.KindList, record.KindMultiline:
			ta.Placeholder = "One entry per line"
		}
		in.area = ta
		return in
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.SetStyles(inputStyles)
	ti.SetWidth(50)
	switch {
	case len(field.Options) > 0:
		ti.Placeholder = strings.Join(field.Options, " | ")
	case field.Kind == record.KindFile:
		ti.Placeholder = "Path to a file (" + field.Accept + "*)"
	case field.Kind == record.KindNumber:
		ti.Placeholder = "0"
	}
	in.line = ti
	return in
}

// Label returns the step label.
func (f *FormStep) Label() string { return f.label }

// Init focuses the first input.
func (f *FormStep) Init() tea.Cmd {
	return f.Focus()
}

// Focus gives focus to the current input.
func (f *FormStep) Focus() tea.Cmd {
	f.focused = true
	return f.updateFocus()
}

// Blur removes focus from every input.
func (f *FormStep) Blur() {
	f.focused = false
	for _, in := range f.inputs {
		in.blur()
	}
}

// SetSize updates the dimensions for the form step.
func (f *FormStep) SetSize(width, height int) {
	f.width = width
	f.height = height
	for _, in := range f.inputs {
		in.setWidth(width - 4)
	}
}

// Load fills the inputs from d. Fields d does not carry are cleared.
func (f *FormStep) Load(d record.Draft) {
	f.base = d.Clone()
	for _, in := range f.inputs {
		name := in.field.Name
		switch in.field.Kind {
		case record.KindBool:
			in.checked = d.Bool(name)
		case record.KindLocalized:
			v, _ := d.Lookup(in.key())
			in.setValue(record.ToString(v))
		case record.KindFile:
			ref, _ := d.File(name)
			if !ref.IsZero() {
				in.files[ref.Location()] = ref
			}
			in.setValue(ref.Location())
		case record.KindFiles:
			refs := d.Files(name)
			paths := make([]string, len(refs))
			for i, ref := range refs {
				in.files[ref.Location()] = ref
				paths[i] = ref.Location()
			}
			in.setValue(strings.Join(paths, "\n"))
		default:
			in.setValue(d.String(name))
		}
	}
}

// Values collects the inputs into a draft. Files that cannot be read are
// reported as field errors.
func (f *FormStep) Values() (record.Draft, validate.Errors) {
	out := record.Draft{}
	errs := validate.Errors{}
	for _, in := range f.inputs {
		name := in.field.Name
		raw := in.value()
		switch in.field.Kind {
		case record.KindBool:
			out[name] = in.checked
		case record.KindNumber:
			text := strings.TrimSpace(raw)
			if text == "" {
				out[name] = nil
			} else if n, ok := record.ToNumber(text); ok {
				out[name] = n
			} else {
				out[name] = text
			}
		case record.KindLocalized:
			loc, ok := out[name].(record.Localized)
			if !ok {
				loc = f.base.Localized(name).Clone()
				if loc == nil {
					loc = record.Localized{}
				}
			}
			loc[in.locale] = raw
			out[name] = loc
		case record.KindList:
			list := record.SplitLines(raw)
			if list == nil {
				list = []string{}
			}
			out[name] = list
		case record.KindFile:
			path := strings.TrimSpace(raw)
			if path == "" {
				out[name] = record.FileRef{}
				continue
			}
			ref, err := in.resolve(path)
			if err != nil {
				errs[name] = "Cannot read " + path
				continue
			}
			out[name] = ref
		case record.KindFiles:
			paths := record.SplitLines(raw)
			refs := make([]record.FileRef, 0, len(paths))
			for _, path := range paths {
				ref, err := in.resolve(path)
				if err != nil {
					errs[name] = "Cannot read " + path
					break
				}
				refs = append(refs, ref)
			}
			out[name] = refs
		default:
			out[name] = raw
		}
	}
	if errs.OK() {
		return out, nil
	}
	return out, errs
}

func (in *input) resolve(path string) (record.FileRef, error) {
	if ref, ok := in.files[path]; ok {
		return ref, nil
	}
	if record.IsRemoteURL(path) {
		return record.RemoteFile(path), nil
	}
	ref, err := record.OpenFile(path)
	if err != nil {
		return record.FileRef{}, err
	}
	in.files[path] = ref
	return ref, nil
}

// SetErrors shows errs below the matching inputs and moves focus to the
// first failing one.
func (f *FormStep) SetErrors(errs validate.Errors) {
	f.errors = errs
	for i, in := range f.inputs {
		if _, failed := f.fieldError(in); failed {
			f.focus = i
			if f.focused {
				f.updateFocus()
			}
			return
		}
	}
}

// Errors returns the errors currently shown.
func (f *FormStep) Errors() validate.Errors { return f.errors }

func (f *FormStep) fieldError(in *input) (string, bool) {
	if msg, ok := f.errors[in.key().String()]; ok {
		return msg, true
	}
	if in.locale != "" {
		return "", false
	}
	msg, ok := f.errors[in.field.Name]
	return msg, ok
}

// FocusedMultiline reports whether the focused input is a text area, where
// enter inserts a newline.
func (f *FormStep) FocusedMultiline() bool {
	if len(f.inputs) == 0 {
		return false
	}
	return f.inputs[f.focus].multi
}

// FocusedValue returns the text of the focused input.
func (f *FormStep) FocusedValue() string {
	if len(f.inputs) == 0 {
		return ""
	}
	return f.inputs[f.focus].value()
}

// SetFocusedValue replaces the text of the focused input.
func (f *FormStep) SetFocusedValue(s string) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].setValue(strings.TrimRight(s, "\n"))
}

// Update handles messages for the form step.
func (f *FormStep) Update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	in := f.inputs[f.focus]

	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "tab", "down":
			if keyMsg.String() == "down" && in.multi {
				break
			}
			f.focus = (f.focus + 1) % len(f.inputs)
			return f.updateFocus()
		case "shift+tab", "up":
			if keyMsg.String() == "up" && in.multi {
				break
			}
			f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
			return f.updateFocus()
		case "space", " ":
			if in.isBool() {
				in.checked = !in.checked
				return nil
			}
		case "left", "right":
			if len(in.field.Options) > 0 {
				in.line.SetValue(cycleOption(in.field.Options, in.line.Value(), keyMsg.String() == "right"))
				return nil
			}
		}
		delete(f.errors, in.key().String())
	}

	if in.isBool() {
		return nil
	}
	var cmd tea.Cmd
	if in.multi {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.line, cmd = in.line.Update(msg)
	}
	return cmd
}

// cycleOption returns the option after (or before) current.
func cycleOption(options []string, current string, forward bool) string {
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if forward {
		return options[(idx+1)%len(options)]
	}
	if idx <= 0 {
		return options[len(options)-1]
	}
	return options[idx-1]
}

func (f *FormStep) updateFocus() tea.Cmd {
	var cmd tea.Cmd
	for i, in := range f.inputs {
		if i == f.focus && f.focused {
			cmd = in.focus()
			continue
		}
		in.blur()
	}
	return cmd
}

// visibleRange returns the window of inputs that fits the height and
// contains the focus.
func (f *FormStep) visibleRange() (int, int) {
	per := 3
	for _, in := range f.inputs {
		if in.multi {
			per = 5
			break
		}
	}
	n := f.height / per
	if n < 3 {
		n = 3
	}
	if n >= len(f.inputs) {
		return 0, len(f.inputs)
	}
	start := f.focus - n/2
	if start < 0 {
		start = 0
	}
	if start+n > len(f.inputs) {
		start = len(f.inputs) - n
	}
	return start, start + n
}

// View renders the form step.
func (f *FormStep) View() string {
	if len(f.inputs) == 0 {
		return styleNotice.Render("Nothing to fill in on this step.")
	}

	var b strings.Builder
	start, end := f.visibleRange()
	if start > 0 {
		b.WriteString(styleNotice.Render(fmt.Sprintf("↑ %d more", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		in := f.inputs[i]
		labelStyle := styleLabel
		if i == f.focus && f.focused {
			labelStyle = styleLabelFocused
		}
		b.WriteString(labelStyle.Render(in.label()))
		if in.field.Required() {
			b.WriteString(styleRequired.Render(" *"))
		}
		b.WriteString("\n")

		switch {
		case in.isBool():
			box := "[ ]"
			if in.checked {
				box = "[x]"
			}
			b.WriteString(labelStyle.Render(box + " " + in.field.Label))
		case in.multi:
			b.WriteString(in.area.View())
		default:
			b.WriteString(in.line.View())
		}
		b.WriteString("\n")

		if msg, failed := f.fieldError(in); failed {
			b.WriteString(styleFieldError.Render("✗ " + msg))
			b.WriteString("\n")
		}
	}
	if end < len(f.inputs) {
		b.WriteString(styleNotice.Render(fmt.Sprintf("↓ %d more", len(f.inputs)-end)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
