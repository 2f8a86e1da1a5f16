// Package record holds the draft model edited by the wizards: a loosely typed
// record whose values are strings, numbers, booleans, file references and
// per-locale text.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Locale is a language variant for which localizable fields keep their own text.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRO Locale = "ro"
	LocaleRU Locale = "ru"
)

// DefaultLocales are the languages the clinic site is published in.
var DefaultLocales = []Locale{LocaleEN, LocaleRO, LocaleRU}

// ParseLocales converts configured locale codes.
func ParseLocales(codes []string) []Locale {
	out := make([]Locale, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, Locale(c))
		}
	}
	return out
}

// Known reports whether l is one of the DefaultLocales.
func (l Locale) Known() bool {
	for _, d := range DefaultLocales {
		if l == d {
			return true
		}
	}
	return false
}

// FlatKey is the backend name of one locale of field, e.g. titleEn.
func FlatKey(field string, locale Locale) string {
	l := string(locale)
	if l == "" {
		return field
	}
	return field + strings.ToUpper(l[:1]) + l[1:]
}

// Localized maps a locale to the text of one localizable field.
type Localized map[Locale]string

// Clone returns an independent copy.
func (l Localized) Clone() Localized {
	if l == nil {
		return nil
	}
	out := make(Localized, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Key addresses a draft field, or one locale of a localizable field.
// Its string form is "field" or "field.locale".
type Key struct {
	Field  string
	Locale Locale
}

func (k Key) String() string {
	if k.Locale == "" {
		return k.Field
	}
	return k.Field + "." + string(k.Locale)
}

// ParseKey splits "title.en" into its field and locale.
func ParseKey(s string) Key {
	if i := strings.LastIndexByte(s, '.'); i > 0 && i < len(s)-1 {
		return Key{Field: s[:i], Locale: Locale(s[i+1:])}
	}
	return Key{Field: s}
}

// Draft is a partially populated record. Absent fields read as zero values.
// Keys are field names; a "field.locale" key addresses a single locale of a
// Localized value.
type Draft map[string]any

// Clone copies the draft and every container value so the copy can be
// mutated without affecting the original.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Localized:
		return val.Clone()
	case []FileRef:
		return append([]FileRef(nil), val...)
	case []string:
		return append([]string(nil), val...)
	case []any:
		return append([]any(nil), val...)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// Merge overwrites d field by field with the values of patch. Values are
// replaced wholesale; a "field.locale" key updates a single locale and
// leaves the other locales of that field alone when field already holds
// Localized text or locale is a known locale. Any other dotted key is kept
// as a plain field.
func (d Draft) Merge(patch Draft) {
	for k, v := range patch {
		key := ParseKey(k)
		if key.Locale != "" {
			_, plain := d[k]
			_, localized := d[key.Field].(Localized)
			if !plain && (localized || key.Locale.Known()) {
				d.SetLocalized(key.Field, key.Locale, ToString(v))
				continue
			}
		}
		d[k] = cloneValue(v)
	}
}

// Lookup resolves a key. A locale key is answered from either a Localized
// value or a flat "field.locale" entry.
func (d Draft) Lookup(key Key) (any, bool) {
	if key.Locale == "" {
		v, ok := d[key.Field]
		return v, ok
	}
	if v, ok := d[key.String()]; ok {
		return v, true
	}
	if loc, ok := d[key.Field].(Localized); ok {
		v, ok := loc[key.Locale]
		return v, ok
	}
	return nil, false
}

// String returns the field as text.
func (d Draft) String(field string) string {
	return ToString(d[field])
}

// Number returns the field as a float; text is parsed, anything else is zero.
func (d Draft) Number(field string) float64 {
	n, _ := ToNumber(d[field])
	return n
}

// Bool returns the field as a boolean.
func (d Draft) Bool(field string) bool {
	return toBool(d[field])
}

func toBool(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// Localized returns the per-locale text of field, never nil.
func (d Draft) Localized(field string) Localized {
	if v, ok := d[field].(Localized); ok {
		return v
	}
	return Localized{}
}

// SetLocalized stores one locale of a localizable field.
func (d Draft) SetLocalized(field string, locale Locale, value string) {
	loc := d.Localized(field).Clone()
	if loc == nil {
		loc = Localized{}
	}
	loc[locale] = value
	d[field] = loc
}

// File returns the file reference stored in field, if any.
func (d Draft) File(field string) (FileRef, bool) {
	f, ok := d[field].(FileRef)
	return f, ok
}

// Files returns the file references stored in field.
func (d Draft) Files(field string) []FileRef {
	switch v := d[field].(type) {
	case []FileRef:
		return v
	case FileRef:
		return []FileRef{v}
	default:
		return nil
	}
}

// HasFiles reports whether any field carries a local file to upload.
func (d Draft) HasFiles() bool {
	for _, v := range d {
		switch val := v.(type) {
		case FileRef:
			if !val.IsZero() && !val.Remote() {
				return true
			}
		case []FileRef:
			for _, f := range val {
				if !f.Remote() {
					return true
				}
			}
		}
	}
	return false
}

// Fields returns the sorted field names.
func (d Draft) Fields() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ToString formats any draft value as text.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case FileRef:
		return val.Name
	case []string:
		return strings.Join(val, "\n")
	case []FileRef:
		names := make([]string, len(val))
		for i, f := range val {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = ToString(p)
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(val)
	}
}

// ToNumber converts numbers and numeric text.
func ToNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// IsEmpty reports whether a value counts as unset.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case FileRef:
		return val.IsZero()
	case []FileRef:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case Localized:
		return len(val) == 0
	default:
		return false
	}
}
