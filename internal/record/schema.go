package record

import (
	"strings"
)

// Kind is the value type a field holds.
type Kind int

const (
	KindText Kind = iota
	KindMultiline
	KindNumber
	KindBool
	KindFile
	KindFiles
	KindList
	KindLocalized
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMultiline:
		return "multiline"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindFile:
		return "file"
	case KindFiles:
		return "files"
	case KindList:
		return "list"
	case KindLocalized:
		return "localized"
	default:
		return "unknown"
	}
}

// Schema maps field names to their kinds. Fields it does not name are kept
// as they come.
type Schema map[string]Kind

// Decode converts JSON-shaped data (as produced by a generic decoder) into a
// draft with typed values. Localized fields accept a nested object keyed by
// locale, "field.locale" keys and legacy flat keys such as "titleEn".
func (s Schema) Decode(raw map[string]any) Draft {
	d := Draft{}
	for k, v := range raw {
		if field, locale, ok := s.localeKey(k); ok {
			d.SetLocalized(field, locale, ToString(v))
			continue
		}
		kind, known := s[k]
		if !known {
			d[k] = v
			continue
		}
		d[k] = coerce(kind, v)
	}
	return d
}

// localeKey recognizes "title.en" and "titleEn" for a localized field title.
func (s Schema) localeKey(k string) (string, Locale, bool) {
	if key := ParseKey(k); key.Locale != "" {
		if s[key.Field] == KindLocalized {
			return key.Field, key.Locale, true
		}
		return "", "", false
	}
	if len(k) < 3 {
		return "", "", false
	}
	field, suffix := k[:len(k)-2], k[len(k)-2:]
	if s[field] != KindLocalized || suffix[0] < 'A' || suffix[0] > 'Z' {
		return "", "", false
	}
	return field, Locale(strings.ToLower(suffix)), true
}

func coerce(kind Kind, v any) any {
	switch kind {
	case KindText, KindMultiline:
		return ToString(v)
	case KindNumber:
		if n, ok := ToNumber(v); ok {
			return n
		}
		return ToString(v)
	case KindBool:
		return toBool(v)
	case KindFile:
		if f, ok := toFileRef(v); ok {
			return f
		}
		return FileRef{}
	case KindFiles:
		return toFileRefs(v)
	case KindList:
		return toStrings(v)
	case KindLocalized:
		return toLocalized(v)
	default:
		return v
	}
}

func toFileRef(v any) (FileRef, bool) {
	switch f := v.(type) {
	case FileRef:
		return f, true
	case string:
		if IsRemoteURL(f) {
			return RemoteFile(f), true
		}
		return FileRef{}, false
	case map[string]any:
		ref := FileRef{
			Path: ToString(f["path"]),
			Name: ToString(f["name"]),
			MIME: ToString(f["mime"]),
			URL:  ToString(f["url"]),
		}
		if n, ok := ToNumber(f["size"]); ok {
			ref.Size = int64(n)
		}
		return ref, !ref.IsZero()
	default:
		return FileRef{}, false
	}
}

func toFileRefs(v any) []FileRef {
	switch list := v.(type) {
	case []FileRef:
		return append([]FileRef(nil), list...)
	case []any:
		out := make([]FileRef, 0, len(list))
		for _, item := range list {
			if f, ok := toFileRef(item); ok {
				out = append(out, f)
			}
		}
		return out
	default:
		if f, ok := toFileRef(v); ok {
			return []FileRef{f}
		}
		return nil
	}
}

func toStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, ToString(item))
		}
		return out
	case string:
		return SplitLines(list)
	default:
		return nil
	}
}

func toLocalized(v any) Localized {
	switch m := v.(type) {
	case Localized:
		return m.Clone()
	case map[string]any:
		out := make(Localized, len(m))
		for k, val := range m {
			out[Locale(strings.ToLower(k))] = ToString(val)
		}
		return out
	case map[string]string:
		out := make(Localized, len(m))
		for k, val := range m {
			out[Locale(strings.ToLower(k))] = val
		}
		return out
	default:
		return Localized{}
	}
}

// SplitLines splits newline separated text into its non-blank, trimmed lines.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
