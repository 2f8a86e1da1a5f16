// Package validate checks draft values against declarative per-field rules.
package validate

import (
	"sort"
	"strings"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

// Errors maps a field key ("price", "title.en") to its message.
// A nil or empty Errors means the values are valid.
type Errors map[string]string

// OK reports whether no rule failed.
func (e Errors) OK() bool { return len(e) == 0 }

// Fields returns the failing keys in sorted order.
func (e Errors) Fields() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, k := range e.Fields() {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// FieldRules declares the rules for one logical field. Localized fields are
// checked once per locale of the set.
type FieldRules struct {
	Field     string
	Localized bool
	Rules     []Rule
}

// RuleSet is the full declaration for a step.
type RuleSet struct {
	Locales []record.Locale
	Fields  []FieldRules
}

// Empty reports whether the set declares no rules.
func (s RuleSet) Empty() bool { return len(s.Fields) == 0 }

// Field starts a declaration for a plain field.
func Field(name string, rules ...Rule) FieldRules {
	return FieldRules{Field: name, Rules: rules}
}

// LocalizedField starts a declaration applied to every locale of name.
func LocalizedField(name string, rules ...Rule) FieldRules {
	return FieldRules{Field: name, Localized: true, Rules: rules}
}

// Validate applies every rule to values. The first failing rule of a key wins.
func Validate(set RuleSet, values record.Draft) Errors {
	errs := Errors{}
	locales := set.Locales
	if len(locales) == 0 {
		locales = record.DefaultLocales
	}
	for _, fr := range set.Fields {
		if !fr.Localized {
			key := record.Key{Field: fr.Field}
			v, _ := values.Lookup(key)
			check(errs, key, v, fr.Rules)
			continue
		}
		for _, loc := range locales {
			key := record.Key{Field: fr.Field, Locale: loc}
			v, _ := values.Lookup(key)
			check(errs, key, v, fr.Rules)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func check(errs Errors, key record.Key, v any, rules []Rule) {
	for _, r := range rules {
		if msg := r.Check(key, v); msg != "" {
			errs[key.String()] = msg
			return
		}
	}
}
