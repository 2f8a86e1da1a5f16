package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"service", "service"},
		{"services", "service"},
		{"Team Member", "team-member"},
		{"team-members", "team-member"},
		{"gallery-media", "gallery-media"},
		{"Blog Article", "blog-article"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := Lookup(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Name)
		})
	}

	_, err := Lookup("invoices")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestCatalog_Invariants(t *testing.T) {
	all := All()
	require.Len(t, all, 6)
	for _, r := range all {
		t.Run(r.Name, func(t *testing.T) {
			assert.NotEmpty(t, r.Title)
			assert.Regexp(t, `^/api/[a-z-]+$`, r.Endpoint)
			assert.Contains(t, r.ListPath(), r.Endpoint)
			assert.NotEmpty(t, r.Text)
			assert.NotEmpty(t, r.Columns)

			steps := r.Steps(record.DefaultLocales)
			require.Len(t, steps, 3)
			assert.Equal(t, StepText, steps[0].Label)
			assert.True(t, steps[0].Importable)
			assert.False(t, steps[1].Importable)
			assert.Equal(t, StepReview, steps[2].Label)
			assert.True(t, steps[2].Rules.Empty())
			assert.Empty(t, steps[2].Fields)

			seen := map[string]bool{}
			for _, f := range r.Fields() {
				assert.False(t, seen[f.Name], "duplicate field %s", f.Name)
				seen[f.Name] = true
				assert.NotEmpty(t, f.Label)
				if f.Kind == record.KindFile || f.Kind == record.KindFiles {
					assert.NotEmpty(t, f.Accept, f.Name)
				}
			}
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"blog-article", "gallery-media", "service", "social-media-post", "team-member", "testimonial",
	}, Names())
}

func TestServiceTemplateFields(t *testing.T) {
	r, err := Lookup("service")
	require.NoError(t, err)
	fields := r.TemplateFields(nil)
	assert.Equal(t, "id", fields[0])
	assert.Contains(t, fields, "imageTitleDescription")
	assert.Contains(t, fields, "features")
}

func TestTemplateFields_ExpandsLocales(t *testing.T) {
	r, err := Lookup("social-media-post")
	require.NoError(t, err)
	fields := r.TemplateFields([]record.Locale{record.LocaleEN, record.LocaleRO})
	assert.Equal(t, []string{
		"platform", "videoUrl", "title.en", "title.ro", "description.en", "description.ro", "displayOrder", "isActive",
	}, fields)
}

func TestPrepare_ServiceSplitsFeatures(t *testing.T) {
	r, err := Lookup("service")
	require.NoError(t, err)

	d := record.Draft{"titleKey": "x", "features": "A\n\n B \n"}
	out := r.Prepare(d)
	assert.Equal(t, []string{"A", "B"}, out["features"])
	assert.Equal(t, "A\n\n B \n", d["features"], "input draft untouched")

	out = r.Prepare(record.Draft{"features": ""})
	assert.Equal(t, []string{}, out["features"])
}

func TestPrepare_BlogDefaultsSlug(t *testing.T) {
	r, err := Lookup("blog-article")
	require.NoError(t, err)

	out := r.Prepare(record.Draft{
		"title": record.Localized{record.LocaleEN: "Teeth Whitening: A Guide", record.LocaleRO: "Albire"},
		"tags":  "care\nwhitening",
	})
	assert.Equal(t, "teeth-whitening-a-guide", out["slug"])
	assert.Equal(t, []string{"care", "whitening"}, out["tags"])

	out = r.Prepare(record.Draft{"slug": "custom", "title": record.Localized{record.LocaleEN: "Other"}})
	assert.Equal(t, "custom", out["slug"])
}

func TestDecode_LegacyFlatKeys(t *testing.T) {
	r, err := Lookup("gallery-media")
	require.NoError(t, err)
	d := r.Decode(map[string]any{"titleEn": "Smile", "titleRo": "Zambet", "orderIndex": "3", "isActive": "true"})
	assert.Equal(t, record.Localized{record.LocaleEN: "Smile", record.LocaleRO: "Zambet"}, d["title"])
	assert.Equal(t, 3.0, d["orderIndex"])
	assert.Equal(t, true, d["isActive"])
}

func TestEngineValidatesEveryLocale(t *testing.T) {
	r, err := Lookup("testimonial")
	require.NoError(t, err)
	e, err := r.NewEngine(record.DefaultLocales)
	require.NoError(t, err)

	errs, err := e.Advance(record.Draft{
		"authorName": "Maria",
		"content.en": "Great",
		"content.ro": "Super",
		"rating":     "6",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"content.ru", "rating"}, errs.Fields())

	errs, err = e.Advance(record.Draft{
		"authorName": "Maria",
		"content.en": "Great",
		"content.ro": "Super",
		"content.ru": "Otlichno",
		"rating":     "5",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, 1, e.State().ActiveStep)
	assert.Equal(t, record.Localized{record.LocaleEN: "Great", record.LocaleRO: "Super", record.LocaleRU: "Otlichno"},
		e.State().Draft["content"])
}

func TestFieldRequired(t *testing.T) {
	r, err := Lookup("team-member")
	require.NoError(t, err)
	name, ok := r.Field("name")
	require.True(t, ok)
	assert.True(t, name.Required())
	bio, _ := r.Field("bio")
	assert.False(t, bio.Required())
	_, ok = r.Field("nope")
	assert.False(t, ok)
}

func TestListPath(t *testing.T) {
	posts, err := Lookup("social-media-post")
	require.NoError(t, err)
	assert.Equal(t, "/api/social-media-posts/all", posts.ListPath())

	team, err := Lookup("team-member")
	require.NoError(t, err)
	assert.Equal(t, "/api/team-members", team.ListPath())
}
