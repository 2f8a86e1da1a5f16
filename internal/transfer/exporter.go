package transfer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/xuri/excelize/v2"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

// Format is a template file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
)

// Formats lists the supported template formats.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatXLSX}

// ParseFormat accepts the format names and their common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown template format %q (use json, markdown or xlsx)", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".json"
	}
}

// Filename is the download name of a template, e.g. service-template.md.
func Filename(res resource.Resource, f Format) string {
	return res.FileSlug() + "-template" + f.Ext()
}

// Template renders the blank template of res.
func Template(res resource.Resource, f Format, locales []record.Locale) ([]byte, error) {
	fields := res.TemplateFields(locales)
	switch f {
	case FormatJSON:
		return templateJSON(fields)
	case FormatMarkdown:
		return templateMarkdown(res.Title, fields), nil
	case FormatXLSX:
		return templateXLSX(res.Title, fields)
	default:
		return nil, fmt.Errorf("unknown template format %q", f)
	}
}

// templateJSON writes an object with every field empty, keeping field order.
func templateJSON(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range fields {
		key, err := sonic.MarshalString(f)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.WriteString(key)
		buf.WriteString(`: ""`)
		if i < len(fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

func templateMarkdown(title string, fields []string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Template\n\n", title)
	for _, f := range fields {
		fmt.Fprintf(&b, "## %s\n\n\n", f)
	}
	return []byte(b.String())
}

// templateXLSX writes a header row of field names and one empty row.
func templateXLSX(title string, fields []string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(title + " Template")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := make([]any, len(fields))
	empty := make([]any, len(fields))
	for i, name := range fields {
		header[i] = name
		empty[i] = ""
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &empty); err != nil {
		return nil, fmt.Errorf("failed to write row: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims a name to the 31 characters a sheet name may have.
func sheetName(s string) string {
	r := []rune(s)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
