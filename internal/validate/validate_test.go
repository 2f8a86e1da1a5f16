package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cristalexdent/clinicadmin/internal/record"
)

func TestValidate_ValidReturnsNil(t *testing.T) {
	set := RuleSet{Fields: []FieldRules{
		Field("titleKey", Required()),
		Field("price", Required()),
		Field("features"),
	}}
	errs := Validate(set, record.Draft{"titleKey": "x", "price": "100"})
	assert.Nil(t, errs)
	assert.True(t, errs.OK())
}

func TestValidate_ReportsEveryInvalidField(t *testing.T) {
	set := RuleSet{Fields: []FieldRules{
		Field("titleKey", Required()),
		Field("descKey", Required()),
		Field("price", Required()),
	}}
	errs := Validate(set, record.Draft{"titleKey": "x", "price": "  "})
	assert.Equal(t, []string{"descKey", "price"}, errs.Fields())
	for _, k := range errs.Fields() {
		assert.NotEmpty(t, errs[k])
	}
	assert.Contains(t, errs.Error(), "price: This field is required")
}

func TestValidate_LocalizedFanOut(t *testing.T) {
	set := RuleSet{
		Locales: []record.Locale{record.LocaleEN, record.LocaleRO, record.LocaleRU},
		Fields: []FieldRules{
			LocalizedField("title", Required()),
			LocalizedField("seoDescription", MaxLength(0)),
		},
	}
	long := make([]rune, DefaultMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	values := record.Draft{
		"title":             record.Localized{record.LocaleEN: "Smile"},
		"title.ro":          "Zambet",
		"seoDescription.ru": string(long),
	}

	errs := Validate(set, values)
	assert.Equal(t, []string{"seoDescription.ru", "title.ru"}, errs.Fields())
	assert.Equal(t, "Must be at most 160 characters", errs["seoDescription.ru"])
}

func TestValidate_FirstFailingRuleWins(t *testing.T) {
	set := RuleSet{Fields: []FieldRules{
		Field("rating", Required(), Range(1, 5)),
	}}
	assert.Equal(t, "This field is required", Validate(set, record.Draft{})["rating"])
	assert.Equal(t, "Must be between 1 and 5", Validate(set, record.Draft{"rating": "7"})["rating"])
}

func TestRules(t *testing.T) {
	png := record.FileRef{Path: "/a.png", Name: "a.png", MIME: "image/png"}
	mp4 := record.FileRef{Path: "/b.mp4", Name: "b.mp4", MIME: "video/mp4"}
	key := record.Key{Field: "f"}

	tests := []struct {
		name  string
		rule  Rule
		value any
		fails bool
	}{
		{"required rejects nil", Required(), nil, true},
		{"required rejects empty file list", Required(), []record.FileRef{}, true},
		{"required accepts zero number", Required(), 0.0, false},
		{"required accepts false", Required(), false, false},
		{"max length counts runes", MaxLength(3), "ăîș", false},
		{"max length over", MaxLength(3), "abcd", true},
		{"min accepts equal", Min(0), "0", false},
		{"min rejects negative", Min(0), -1.0, true},
		{"min rejects text", Min(0), "abc", true},
		{"min skips empty", Min(0), "", false},
		{"range accepts bound", Range(1, 5), 5.0, false},
		{"one of accepts member", OneOf("photo", "video"), "video", false},
		{"one of rejects other", OneOf("photo", "video"), "audio", true},
		{"one of skips empty", OneOf("photo", "video"), "", false},
		{"url accepts https", URL(), "https://www.instagram.com/reel/abc", false},
		{"url rejects relative", URL(), "/reel/abc", true},
		{"url rejects scheme", URL(), "ftp://host/x", true},
		{"pattern accepts slug", Pattern(`^[a-z0-9]+(-[a-z0-9]+)*$`, "a slug"), "teeth-whitening", false},
		{"pattern rejects spaces", Pattern(`^[a-z0-9]+(-[a-z0-9]+)*$`, "a slug"), "Teeth whitening", true},
		{"mime accepts image", MIMEPrefix("image/"), png, false},
		{"mime rejects video", MIMEPrefix("image/"), mp4, true},
		{"mime checks each element", MIMEPrefix("image/"), []record.FileRef{png, mp4}, true},
		{"mime accepts all images", MIMEPrefix("image/"), []record.FileRef{png, png}, false},
		{"mime rejects text", MIMEPrefix("image/"), "a.png", true},
		{"mime skips empty", MIMEPrefix("image/"), record.FileRef{}, false},
		{"mime accepts stored file", MIMEPrefix("image/"), record.RemoteFile("https://cdn.example.com/a"), false},
		{"mime accepts stored files", MIMEPrefix("image/"), []record.FileRef{png, record.RemoteFile("https://cdn.example.com/b")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.rule.Check(key, tt.value)
			if tt.fails {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestWithMessage(t *testing.T) {
	r := WithMessage(Required(), "Name is required")
	assert.Equal(t, "Name is required", r.Check(record.Key{Field: "name"}, ""))
	assert.Empty(t, r.Check(record.Key{Field: "name"}, "Ana"))

	keep := WithMessage(Required(), "")
	assert.Equal(t, "This field is required", keep.Check(record.Key{Field: "name"}, ""))
	assert.Empty(t, keep.Check(record.Key{Field: "name"}, "Ana"))
}

func TestRuleFunc(t *testing.T) {
	r := RuleFunc(func(key record.Key, v any) string {
		if key.Locale == record.LocaleRO {
			return "no"
		}
		return ""
	})
	errs := Validate(RuleSet{Fields: []FieldRules{LocalizedField("title", r)}}, record.Draft{})
	assert.Equal(t, Errors{"title.ro": "no"}, errs)
}
