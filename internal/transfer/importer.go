// Package transfer reads records from offline files and writes the blank
// templates staff fill in.
package transfer

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/microcosm-cc/bluemonday"

	"github.com/cristalexdent/clinicadmin/internal/record"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

var (
	// ErrMalformed is returned for files that cannot be parsed.
	ErrMalformed = errors.New("invalid JSON format")
	// ErrUnsupportedFormat is returned for extensions other than .json and .md.
	ErrUnsupportedFormat = errors.New("unsupported file format, please use .json or .md files")
)

var headingRe = regexp.MustCompile(`^##\s+(.+)$`)

// ParseJSON decodes a JSON object. A features array is joined with
// newlines so it can be edited as multi-line text.
func ParseJSON(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformed)
	}
	if list, ok := out["features"].([]any); ok {
		lines := make([]string, len(list))
		for i, item := range list {
			lines[i] = record.ToString(item)
		}
		out["features"] = strings.Join(lines, "\n")
	}
	return out, nil
}

// ParseMarkdown reads "## field" sections. The non-blank lines of a section
// become the field value joined with newlines; text before the first
// heading is ignored.
func ParseMarkdown(data []byte) map[string]any {
	out := map[string]any{}
	var (
		field string
		lines []string
	)
	flush := func() {
		if field != "" {
			out[field] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			field = strings.TrimSpace(m[1])
			lines = lines[:0]
			continue
		}
		if field != "" && strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	flush()
	return out
}

// Parse picks the parser from the file extension.
func Parse(filename string, data []byte) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return ParseJSON(data)
	case ".md", ".markdown":
		return ParseMarkdown(data), nil
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// StripHTML removes markup from every string value, including the values
// of nested per-locale objects.
func StripHTML(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = stripValue(v)
	}
	return out
}

func stripValue(v any) any {
	switch val := v.(type) {
	case string:
		if !strings.ContainsAny(val, "<&") {
			return val
		}
		return html.UnescapeString(stripPolicy().Sanitize(val))
	case map[string]any:
		return StripHTML(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stripValue(item)
		}
		return out
	default:
		return v
	}
}

// Options controls Import.
type Options struct {
	StripHTML bool
}

// Import parses data and types it for res. Unknown fields are kept so a
// filled-in template round-trips.
func Import(res resource.Resource, filename string, data []byte, opts Options) (record.Draft, error) {
	raw, err := Parse(filename, data)
	if err != nil {
		return nil, err
	}
	if opts.StripHTML {
		raw = StripHTML(raw)
	}
	return res.Decode(raw), nil
}

// ImportFile reads path and imports it.
func ImportFile(res resource.Resource, path string, opts Options) (record.Draft, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".md", ".markdown":
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Import(res, path, data, opts)
}
