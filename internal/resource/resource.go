// Package resource describes the clinic content types: their fields, wizard
// steps, REST endpoints, template layouts and table columns.
package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/cristalexdent/clinicadmin/internal/listing"
	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/validate"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

// ErrUnknown is returned for a resource name that is not in the catalog.
var ErrUnknown = errors.New("unknown resource")

// Step labels shared by every content wizard.
const (
	StepText   = "Add Text"
	StepMedia  = "Add Images"
	StepReview = "Review Page"
)

// Field describes one editable attribute.
type Field struct {
	Name  string
	Label string
	Kind  record.Kind
	// Multiline renders localized text as a text area.
	Multiline bool
	// Options lists the allowed values of a choice field.
	Options []string
	// Accept is the MIME prefix of file fields.
	Accept string
	Rules  []validate.Rule
}

// Localized reports whether the field holds per-locale text.
func (f Field) Localized() bool { return f.Kind == record.KindLocalized }

// Required reports whether the field carries a Required rule.
func (f Field) Required() bool {
	for _, r := range f.Rules {
		if validate.IsRequired(r) {
			return true
		}
	}
	return false
}

// Resource is one content type managed through the clinic API.
type Resource struct {
	Name     string
	Title    string
	Plural   string
	Endpoint string
	// ListEndpoint lists every record, including inactive ones. Empty means
	// Endpoint.
	ListEndpoint string
	Text     []Field
	Media    []Field
	// Template lists the keys of the offline template in order. Empty means
	// the text fields, with localized ones expanded per locale.
	Template []string
	Columns  []listing.Column
	// prepare adjusts a draft right before it is submitted.
	prepare func(record.Draft) record.Draft
}

// ListPath is the path that lists every record of r.
func (r Resource) ListPath() string {
	if r.ListEndpoint != "" {
		return r.ListEndpoint
	}
	return r.Endpoint
}

// Fields returns text and media fields in order.
func (r Resource) Fields() []Field {
	return append(append([]Field(nil), r.Text...), r.Media...)
}

// Field looks a field up by name.
func (r Resource) Field(name string) (Field, bool) {
	for _, f := range r.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Schema returns the kinds of every field.
func (r Resource) Schema() record.Schema {
	s := record.Schema{}
	for _, f := range r.Fields() {
		s[f.Name] = f.Kind
	}
	return s
}

// Steps builds the three wizard steps: text, media and review.
func (r Resource) Steps(locales []record.Locale) []wizard.Step {
	return []wizard.Step{
		{
			Label:      StepText,
			Fields:     names(r.Text),
			Rules:      ruleSet(r.Text, locales),
			Importable: true,
		},
		{
			Label:  StepMedia,
			Fields: names(r.Media),
			Rules:  ruleSet(r.Media, locales),
		},
		{Label: StepReview},
	}
}

// NewEngine starts a wizard session for the resource.
func (r Resource) NewEngine(locales []record.Locale, opts ...wizard.Option) (*wizard.Engine, error) {
	return wizard.New(r.Name, r.Steps(locales), opts...)
}

// Decode types a generic record, mapping legacy flat locale keys.
func (r Resource) Decode(raw map[string]any) record.Draft {
	return r.Schema().Decode(raw)
}

// Prepare returns the draft as it should be submitted.
func (r Resource) Prepare(d record.Draft) record.Draft {
	out := d.Clone()
	for _, f := range r.Fields() {
		if s, ok := out[f.Name].(string); ok && f.Kind == record.KindList {
			out[f.Name] = record.SplitLines(s)
		}
	}
	if r.prepare != nil {
		out = r.prepare(out)
	}
	return out
}

// TemplateFields returns the ordered keys of the offline template.
func (r Resource) TemplateFields(locales []record.Locale) []string {
	if len(r.Template) > 0 {
		return append([]string(nil), r.Template...)
	}
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}
	var out []string
	for _, f := range r.Text {
		if !f.Localized() {
			out = append(out, f.Name)
			continue
		}
		for _, loc := range locales {
			out = append(out, record.Key{Field: f.Name, Locale: loc}.String())
		}
	}
	return out
}

// FileSlug is the resource name used in file names.
func (r Resource) FileSlug() string { return slug.Make(r.Name) }

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func ruleSet(fields []Field, locales []record.Locale) validate.RuleSet {
	set := validate.RuleSet{Locales: locales}
	for _, f := range fields {
		if len(f.Rules) == 0 {
			continue
		}
		set.Fields = append(set.Fields, validate.FieldRules{
			Field:     f.Name,
			Localized: f.Localized(),
			Rules:     f.Rules,
		})
	}
	return set
}

// All returns the catalog sorted by name.
func All() []Resource {
	out := make([]Resource, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the catalog names sorted.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, r := range all {
		out[i] = r.Name
	}
	return out
}

// Lookup finds a resource by name, plural or slugged title.
func Lookup(name string) (Resource, error) {
	key := slug.Make(name)
	for _, r := range catalog {
		if key == r.Name || key == slug.Make(r.Plural) || key == slug.Make(r.Title) {
			return r, nil
		}
	}
	return Resource{}, fmt.Errorf("%w %q (known: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
}
