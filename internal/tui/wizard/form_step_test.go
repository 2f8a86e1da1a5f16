package wizard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/validate"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFormStep_LocalizedInputs(t *testing.T) {
	fields := []resource.Field{
		{Name: "title", Label: "Title", Kind: record.KindLocalized},
		{Name: "featured", Label: "Featured", Kind: record.KindBool},
	}
	f := NewFormStep("Add Text", fields, []record.Locale{"en", "ro"})
	require.Len(t, f.inputs, 3)
	assert.Equal(t, "Title (en)", f.inputs[0].label())
	assert.Equal(t, "Title (ro)", f.inputs[1].label())

	f.Load(record.Draft{"title": record.Localized{"en": "Smile", "ro": "Zâmbet", "ru": "Улыбка"}})
	f.Focus()
	f.SetFocusedValue("Bright smile")
	f.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	f.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	f.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})

	values, errs := f.Values()
	require.True(t, errs.OK())
	assert.Equal(t, record.Localized{"en": "Bright smile", "ro": "Zâmbet", "ru": "Улыбка"}, values["title"])
	assert.Equal(t, true, values["featured"])
	assert.Contains(t, ansi.Strip(f.View()), "[x] Featured")
}

func TestFormStep_ValuesByKind(t *testing.T) {
	fields := []resource.Field{
		{Name: "orderIndex", Label: "Order", Kind: record.KindNumber},
		{Name: "rating", Label: "Rating", Kind: record.KindNumber},
		{Name: "tags", Label: "Tags", Kind: record.KindList},
		{Name: "empty", Label: "Empty", Kind: record.KindList},
		{Name: "bio", Label: "Bio", Kind: record.KindMultiline},
	}
	f := NewFormStep("Add Text", fields, nil)
	f.Load(record.Draft{
		"orderIndex": 3.0,
		"rating":     "five",
		"tags":       []string{"a", "b"},
		"bio":        "line one\nline two",
	})
	values, errs := f.Values()
	require.True(t, errs.OK())
	assert.Equal(t, 3.0, values["orderIndex"])
	assert.Equal(t, "five", values["rating"])
	assert.Equal(t, []string{"a", "b"}, values["tags"])
	assert.Equal(t, []string{}, values["empty"])
	assert.Equal(t, "line one\nline two", values["bio"])

	f.Load(record.Draft{})
	values, _ = f.Values()
	assert.Nil(t, values["orderIndex"])
}

func TestFormStep_FileInputs(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(img, pngHeader, 0o644))

	fields := []resource.Field{
		{Name: "image", Label: "Image", Kind: record.KindFile, Accept: "image/"},
		{Name: "gallery", Label: "Gallery", Kind: record.KindFiles, Accept: "image/"},
	}
	f := NewFormStep("Add Images", fields, nil)
	f.Focus()
	f.SetFocusedValue(img)
	f.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	f.SetFocusedValue(img + "\n" + img)

	values, errs := f.Values()
	require.True(t, errs.OK())
	ref, ok := values["image"].(record.FileRef)
	require.True(t, ok)
	assert.Equal(t, "photo.png", ref.Name)
	assert.Equal(t, "image/png", ref.MIME)
	assert.Len(t, values["gallery"], 2)

	missing := filepath.Join(dir, "missing.png")
	f.SetFocusedValue(missing)
	_, errs = f.Values()
	assert.Equal(t, validate.Errors{"gallery": "Cannot read " + missing}, errs)
}

func TestFormStep_SetErrorsFocusesFirstFailure(t *testing.T) {
	fields := []resource.Field{
		{Name: "name", Label: "Name", Kind: record.KindText},
		{Name: "title", Label: "Title", Kind: record.KindLocalized},
	}
	f := NewFormStep("Add Text", fields, []record.Locale{"en", "ro"})
	f.Focus()
	f.SetErrors(validate.Errors{"title.ro": "Title (ro) is required"})
	assert.Equal(t, 2, f.focus)

	out := ansi.Strip(f.View())
	assert.Contains(t, out, "✗ Title (ro) is required")
	assert.Equal(t, 1, strings.Count(out, "✗"))
}

func TestFormStep_OptionsCycle(t *testing.T) {
	fields := []resource.Field{
		{Name: "platform", Label: "Platform", Kind: record.KindText, Options: []string{"instagram", "tiktok"}},
	}
	f := NewFormStep("Add Text", fields, nil)
	f.Focus()
	f.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, "instagram", f.FocusedValue())
	f.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, "tiktok", f.FocusedValue())
	f.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, "instagram", f.FocusedValue())
	f.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	assert.Equal(t, "tiktok", f.FocusedValue())
}

func TestCycleOption(t *testing.T) {
	opts := []string{"photo", "video"}
	assert.Equal(t, "photo", cycleOption(opts, "", true))
	assert.Equal(t, "video", cycleOption(opts, "", false))
	assert.Equal(t, "video", cycleOption(opts, "photo", true))
	assert.Equal(t, "photo", cycleOption(opts, "video", true))
	assert.Equal(t, "video", cycleOption(opts, "photo", false))
}

func TestFormStep_FocusWraps(t *testing.T) {
	fields := []resource.Field{
		{Name: "a", Label: "A", Kind: record.KindText},
		{Name: "b", Label: "B", Kind: record.KindMultiline},
	}
	f := NewFormStep("Add Text", fields, nil)
	f.Focus()
	assert.False(t, f.FocusedMultiline())
	f.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.True(t, f.FocusedMultiline())
	// Down stays inside a text area.
	f.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, f.focus)
	f.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, 0, f.focus)
	f.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, 1, f.focus)
}

func TestFormStep_EmptyView(t *testing.T) {
	f := NewFormStep("Add Images", nil, nil)
	assert.Contains(t, ansi.Strip(f.View()), "Nothing to fill in")
	assert.Nil(t, f.Update(tea.KeyPressMsg{Code: tea.KeyTab}))
	values, errs := f.Values()
	assert.Empty(t, values)
	assert.True(t, errs.OK())
}
