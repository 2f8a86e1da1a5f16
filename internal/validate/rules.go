package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

// DefaultMaxLength bounds SEO descriptions.
const DefaultMaxLength = 160

// Rule checks one value and returns a message when it fails.
// Every rule except Required passes empty values.
type Rule interface {
	Check(key record.Key, value any) string
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(key record.Key, value any) string

func (f RuleFunc) Check(key record.Key, value any) string { return f(key, value) }

type withMessage struct {
	rule Rule
	msg  string
}

func (w withMessage) Check(key record.Key, value any) string {
	msg := w.rule.Check(key, value)
	if msg != "" && w.msg != "" {
		return w.msg
	}
	return msg
}

// WithMessage replaces the default message of r. An empty msg keeps it.
func WithMessage(r Rule, msg string) Rule {
	return withMessage{rule: r, msg: msg}
}

type required struct{}

func (required) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return "This field is required"
	}
	return ""
}

// Required fails on absent, blank, or empty values.
func Required() Rule { return required{} }

// IsRequired reports whether r is a Required rule, with or without a custom
// message.
func IsRequired(r Rule) bool {
	switch v := r.(type) {
	case required:
		return true
	case withMessage:
		return IsRequired(v.rule)
	default:
		return false
	}
}

type maxLength struct{ n int }

func (r maxLength) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return ""
	}
	if utf8.RuneCountInString(record.ToString(v)) > r.n {
		return fmt.Sprintf("Must be at most %d characters", r.n)
	}
	return ""
}

// MaxLength bounds text length in characters. n <= 0 uses DefaultMaxLength.
func MaxLength(n int) Rule {
	if n <= 0 {
		n = DefaultMaxLength
	}
	return maxLength{n: n}
}

type minimum struct{ n float64 }

func (r minimum) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return ""
	}
	n, ok := record.ToNumber(v)
	if !ok {
		return "Must be a number"
	}
	if n < r.n {
		return fmt.Sprintf("Must be at least %s", record.ToString(r.n))
	}
	return ""
}

// Min requires a number no smaller than n.
func Min(n float64) Rule { return minimum{n: n} }

type between struct{ lo, hi float64 }

func (r between) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return ""
	}
	n, ok := record.ToNumber(v)
	if !ok {
		return "Must be a number"
	}
	if n < r.lo || n > r.hi {
		return fmt.Sprintf("Must be between %s and %s", record.ToString(r.lo), record.ToString(r.hi))
	}
	return ""
}

// Range requires a number in [lo, hi].
func Range(lo, hi float64) Rule { return between{lo: lo, hi: hi} }

type oneOf struct{ allowed []string }

func (r oneOf) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return ""
	}
	s := record.ToString(v)
	for _, a := range r.allowed {
		if s == a {
			return ""
		}
	}
	return "Must be one of: " + strings.Join(r.allowed, ", ")
}

// OneOf restricts text to a fixed set.
func OneOf(allowed ...string) Rule { return oneOf{allowed: allowed} }

type isURL struct{}

func (isURL) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return ""
	}
	u, err := url.ParseRequestURI(strings.TrimSpace(record.ToString(v)))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Must be a valid URL"
	}
	return ""
}

// URL requires an absolute http(s) URL.
func URL() Rule { return isURL{} }

type pattern struct {
	re   *regexp.Regexp
	desc string
}

func (r pattern) Check(_ record.Key, v any) string {
	if record.IsEmpty(v) {
		return ""
	}
	if !r.re.MatchString(record.ToString(v)) {
		return "Must be " + r.desc
	}
	return ""
}

// Pattern requires text matching expr; desc completes "Must be ...".
func Pattern(expr, desc string) Rule {
	return pattern{re: regexp.MustCompile(expr), desc: desc}
}

type mimePrefix struct{ prefix string }

func (r mimePrefix) Check(_ record.Key, v any) string {
	switch f := v.(type) {
	case nil:
		return ""
	case record.FileRef:
		if f.IsZero() || f.Remote() || f.HasMIMEPrefix(r.prefix) {
			return ""
		}
	case []record.FileRef:
		for _, item := range f {
			if !item.Remote() && !item.HasMIMEPrefix(r.prefix) {
				return fmt.Sprintf("%s: file type must be %s*", item.Name, r.prefix)
			}
		}
		return ""
	case string:
		if strings.TrimSpace(f) == "" {
			return ""
		}
		return "Must be a file"
	default:
		return "Must be a file"
	}
	return fmt.Sprintf("File type must be %s*", r.prefix)
}

// MIMEPrefix requires file references whose type starts with prefix.
// Lists are checked per element.
func MIMEPrefix(prefix string) Rule { return mimePrefix{prefix: prefix} }
