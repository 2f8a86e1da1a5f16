package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

func mustResource(t *testing.T, name string) resource.Resource {
	t.Helper()
	r, err := resource.Lookup(name)
	require.NoError(t, err)
	return r
}

func TestParseMarkdown(t *testing.T) {
	got := ParseMarkdown([]byte("## titleKey\n\nHello\n\n## price\n\n100\n"))
	assert.Equal(t, map[string]any{"titleKey": "Hello", "price": "100"}, got)
}

func TestParseMarkdown_Sections(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"no heading", "# Service Template\n\nsome text\n", map[string]any{}},
		{"empty document", "", map[string]any{}},
		{"text before first heading ignored", "intro\n## a\nx\n", map[string]any{"a": "x"}},
		{"blank lines dropped, inner newlines kept", "## features\nA\n\n\nB\n", map[string]any{"features": "A\nB"}},
		{"empty section", "## id\n\n\n## title\nT\n", map[string]any{"id": "", "title": "T"}},
		{"crlf line endings", "## title\r\nHello\r\n", map[string]any{"title": "Hello"}},
		{"level three heading is content", "## body\n### sub\ntext\n", map[string]any{"body": "### sub\ntext"}},
		{"heading name trimmed", "##   price  \n10\n", map[string]any{"price": "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMarkdown([]byte(tt.in)))
		})
	}
}

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON([]byte(`{"titleKey":"x","features":["A","B"],"price":100}`))
	require.NoError(t, err)
	assert.Equal(t, "A\nB", got["features"])
	assert.Equal(t, "x", got["titleKey"])
	assert.Equal(t, 100.0, got["price"])
}

func TestParseJSON_Malformed(t *testing.T) {
	for _, in := range []string{`{"titleKey":`, `[1,2]`, `null`, `nope`} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseJSON([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse("service.txt", []byte("## titleKey\nx\n"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".json")
	assert.Contains(t, err.Error(), ".md")
}

func TestImportFile_UnsupportedLeavesDraftUnchanged(t *testing.T) {
	res := mustResource(t, "service")
	e, err := res.NewEngine(record.DefaultLocales)
	require.NoError(t, err)
	require.NoError(t, e.ImportPartial(record.Draft{"titleKey": "kept"}))

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("titleKey: other"), 0o644))

	imported, err := ImportFile(res, path, Options{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Nil(t, imported)
	assert.Equal(t, record.Draft{"titleKey": "kept"}, e.State().Draft)
}

func TestJSONTemplateRoundTrip(t *testing.T) {
	res := mustResource(t, "service")
	tmpl, err := Template(res, FormatJSON, nil)
	require.NoError(t, err)

	var blank map[string]any
	require.NoError(t, sonic.Unmarshal(tmpl, &blank))
	assert.Len(t, blank, len(resource.ServiceTemplate))

	filled := map[string]any{}
	want := record.Draft{}
	for k := range blank {
		filled[k] = "value of " + k
		want[k] = "value of " + k
	}
	filled["features"] = []any{"Cleaning", "Polishing"}
	want["features"] = "Cleaning\nPolishing"

	data, err := sonic.Marshal(filled)
	require.NoError(t, err)
	got, err := Import(res, "service.json", data, Options{StripHTML: true})
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateJSON_KeepsFieldOrder(t *testing.T) {
	res := mustResource(t, "service")
	tmpl, err := Template(res, FormatJSON, nil)
	require.NoError(t, err)
	lines := strings.Split(string(tmpl), "\n")
	assert.Equal(t, "{", lines[0])
	assert.Equal(t, `  "id": "",`, lines[1])
	assert.Equal(t, `  "title": "",`, lines[2])
	assert.Equal(t, `  "features": ""`, lines[len(lines)-2])
	assert.Equal(t, "}", lines[len(lines)-1])
}

func TestTemplateMarkdown(t *testing.T) {
	res := mustResource(t, "service")
	tmpl, err := Template(res, FormatMarkdown, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tmpl), "# Service Template\n\n## id\n\n\n## title\n\n\n"))

	// A blank template imports as a record of empty fields.
	parsed := ParseMarkdown(tmpl)
	assert.Len(t, parsed, len(resource.ServiceTemplate))
	assert.Equal(t, "", parsed["imageTitle"])
}

func TestTemplateMarkdown_Localized(t *testing.T) {
	res := mustResource(t, "gallery-media")
	tmpl, err := Template(res, FormatMarkdown, []record.Locale{record.LocaleEN, record.LocaleRO})
	require.NoError(t, err)
	assert.Contains(t, string(tmpl), "## title.ro\n")

	filled := strings.Replace(string(tmpl), "## title.ro\n\n", "## title.ro\n\nZambet\n", 1)
	d, err := Import(res, "gallery.md", []byte(filled), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Zambet", d.Localized("title")[record.LocaleRO])
}

func TestTemplateXLSX(t *testing.T) {
	res := mustResource(t, "service")
	data, err := Template(res, FormatXLSX, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Service Template"}, f.GetSheetList())
	rows, err := f.GetRows("Service Template")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, resource.ServiceTemplate, rows[0])
}

func TestFilename(t *testing.T) {
	res := mustResource(t, "service")
	assert.Equal(t, "service-template.json", Filename(res, FormatJSON))
	assert.Equal(t, "service-template.md", Filename(res, FormatMarkdown))
	assert.Equal(t, "service-template.xlsx", Filename(res, FormatXLSX))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "MD": FormatMarkdown, "excel": FormatXLSX, "xlsx": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	got := StripHTML(map[string]any{
		"titleKey": "<b>Whitening</b> &amp; care",
		"title":    map[string]any{"en": "<script>alert(1)</script>Smile"},
		"price":    100.0,
		"plain":    "AT&T",
	})
	assert.Equal(t, "Whitening & care", got["titleKey"])
	assert.Equal(t, map[string]any{"en": "Smile"}, got["title"])
	assert.Equal(t, 100.0, got["price"])
	assert.Equal(t, "AT&T", got["plain"])
}
