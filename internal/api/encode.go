package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"sort"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

// Flatten converts a draft to the backend's field layout: per-locale values
// become titleEn, titleRo and so on.
func Flatten(d record.Draft) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		if loc, ok := v.(record.Localized); ok {
			for l, text := range loc {
				out[FlatKey(k, l)] = text
			}
			continue
		}
		if key := record.ParseKey(k); key.Locale != "" {
			out[FlatKey(key.Field, key.Locale)] = v
			continue
		}
		out[k] = v
	}
	return out
}

// FlatKey is the backend name of one locale of field, e.g. titleEn.
func FlatKey(field string, locale record.Locale) string {
	return record.FlatKey(field, locale)
}

// Encode builds the request body for d: multipart when it carries files,
// JSON otherwise.
func Encode(d record.Draft) (Body, error) {
	flat := Flatten(d)
	if !d.HasFiles() {
		return JSON(jsonValues(flat))
	}
	return encodeMultipart(flat)
}

// jsonValues drops local file references, which JSON bodies cannot carry.
// Files the backend already stores are sent back as their URLs.
func jsonValues(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))
	for k, v := range flat {
		switch val := v.(type) {
		case record.FileRef:
			if val.Remote() {
				out[k] = val.URL
			}
			continue
		case []record.FileRef:
			if urls := remoteURLs(val); len(urls) > 0 {
				out[k] = urls
			}
			continue
		}
		out[k] = v
	}
	return out
}

func remoteURLs(files []record.FileRef) []string {
	var out []string
	for _, f := range files {
		if f.Remote() {
			out = append(out, f.URL)
		}
	}
	return out
}

func encodeMultipart(flat map[string]any) (Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var err error
		switch v := flat[k].(type) {
		case record.FileRef:
			switch {
			case v.Remote():
				err = w.WriteField(k, v.URL)
			case !v.IsZero():
				err = writeFile(w, k, v)
			}
		case []record.FileRef:
			for _, f := range v {
				if f.Remote() {
					err = w.WriteField(k, f.URL)
				} else {
					err = writeFile(w, k, f)
				}
				if err != nil {
					break
				}
			}
		case []string:
			for _, s := range v {
				if err = w.WriteField(k, s); err != nil {
					break
				}
			}
		case nil:
		default:
			err = w.WriteField(k, record.ToString(v))
		}
		if err != nil {
			return Body{}, fmt.Errorf("failed to encode %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return Body{}, err
	}
	return Body{Reader: &buf, ContentType: w.FormDataContentType()}, nil
}

func writeFile(w *multipart.Writer, field string, f record.FileRef) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	if f.MIME != "" {
		h.Set("Content-Type", f.MIME)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}
