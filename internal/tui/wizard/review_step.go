package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

// ReviewStep shows the collected draft before it is submitted.
type ReviewStep struct {
	viewport viewport.Model
	content  string // Raw markdown
	width    int
	height   int
}

// NewReviewStep creates a new review step.
func NewReviewStep() *ReviewStep {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return &ReviewStep{
		viewport: vp,
		width:    60,
		height:   20,
	}
}

// SetDraft renders d as the review content.
func (s *ReviewStep) SetDraft(res resource.Resource, d record.Draft, locales []record.Locale) {
	s.content = ReviewMarkdown(res, d, locales)
	s.viewport.SetContent(RenderMarkdown(s.content, s.width))
	s.viewport.GotoTop()
}

// Content returns the raw markdown being shown.
func (s *ReviewStep) Content() string { return s.content }

// SetSize updates the dimensions for the review step.
func (s *ReviewStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.SetWidth(width)
	viewportHeight := height - 1
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	s.viewport.SetHeight(viewportHeight)
	if s.content != "" {
		s.viewport.SetContent(RenderMarkdown(s.content, width))
	}
}

// Update scrolls the review.
func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// View renders the review step.
func (s *ReviewStep) View() string {
	return s.viewport.View()
}

// ReviewMarkdown summarizes d field by field, grouped by step.
func ReviewMarkdown(res resource.Resource, d record.Draft, locales []record.Locale) string {
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", res.Title)
	groups := []struct {
		label  string
		fields []resource.Field
	}{
		{resource.StepText, res.Text},
		{resource.StepMedia, res.Media},
	}
	for _, g := range groups {
		if len(g.fields) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", g.label)
		for _, f := range g.fields {
			if f.Localized() {
				for _, loc := range locales {
					v, _ := d.Lookup(record.Key{Field: f.Name, Locale: loc})
					fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Label, loc, reviewValue(v))
				}
				continue
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Label, reviewValue(d[f.Name]))
		}
	}
	return b.String()
}

func reviewValue(v any) string {
	if record.IsEmpty(v) {
		return "_empty_"
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case record.FileRef:
		if val.Remote() {
			return fmt.Sprintf("`%s` (stored)", val.URL)
		}
		return fmt.Sprintf("`%s` (%s)", val.Name, val.MIME)
	}
	text := record.ToString(v)
	lines := record.SplitLines(text)
	return strings.Join(lines, "; ")
}

// RenderMarkdown renders markdown content with glamour.
// Falls back to plain text if rendering fails.
func RenderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}
