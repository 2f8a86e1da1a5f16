package resource

import (
	"github.com/gosimple/slug"

	"github.com/cristalexdent/clinicadmin/internal/listing"
	"github.com/cristalexdent/clinicadmin/internal/record"
	v "github.com/cristalexdent/clinicadmin/internal/validate"
)

const slugPattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

// Gallery and social media choice values.
var (
	MediaTypes = []string{"photo", "video"}
	Categories = []string{"whitening", "orthodontics", "restoration", "implants", "surgery", "general"}
	Platforms  = []string{"instagram", "tiktok"}
)

// ServiceTemplate is the field list of the offline service template.
var ServiceTemplate = []string{
	"id",
	"title",
	"metaDescription",
	"metaKeywords",
	"titleDescription",
	"firstIconTitle",
	"firstIconDescription",
	"secondIconTitle",
	"secondIconDescription",
	"imageTitle",
	"imageTitleDescription",
	"titleKey",
	"descKey",
	"price",
	"features",
}

var catalog = map[string]Resource{
	"team-member": {
		Name:     "team-member",
		Title:    "Team Member",
		Plural:   "team-members",
		Endpoint: "/api/team-members",
		Text: []Field{
			{Name: "name", Label: "Name", Kind: record.KindText, Rules: []v.Rule{v.WithMessage(v.Required(), "Name is required")}},
			{Name: "role", Label: "Role", Kind: record.KindText, Rules: []v.Rule{v.WithMessage(v.Required(), "Role is required")}},
			{Name: "bio", Label: "Bio", Kind: record.KindMultiline},
			{Name: "orderIndex", Label: "Order", Kind: record.KindNumber, Rules: []v.Rule{v.Min(0)}},
		},
		Media: []Field{
			{Name: "image", Label: "Photo", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{
				v.WithMessage(v.Required(), "Image is required"), v.MIMEPrefix("image/"),
			}},
			{Name: "certifications", Label: "Certifications", Kind: record.KindFiles, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
		},
		Columns: []listing.Column{
			{Key: "id", Header: "ID"},
			{Key: "name", Header: "Name"},
			{Key: "role", Header: "Role"},
			{Key: "orderIndex", Header: "Order"},
		},
	},
	"service": {
		Name:     "service",
		Title:    "Service",
		Plural:   "services",
		Endpoint: "/api/services",
		Text: []Field{
			{Name: "titleKey", Label: "Title key", Kind: record.KindText, Rules: []v.Rule{v.WithMessage(v.Required(), "Title is required")}},
			{Name: "descKey", Label: "Description key", Kind: record.KindText, Rules: []v.Rule{v.WithMessage(v.Required(), "Description is required")}},
			{Name: "price", Label: "Price", Kind: record.KindText, Rules: []v.Rule{v.WithMessage(v.Required(), "Price is required")}},
			{Name: "features", Label: "Features (one per line)", Kind: record.KindMultiline},
		},
		Media: []Field{
			{Name: "image", Label: "Image", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
		},
		Template: ServiceTemplate,
		Columns: []listing.Column{
			{Key: "id", Header: "ID"},
			{Key: "titleKey", Header: "Title"},
			{Key: "price", Header: "Price"},
		},
		prepare: splitFeatures,
	},
	"gallery-media": {
		Name:     "gallery-media",
		Title:    "Gallery Media",
		Plural:   "gallery-media",
		Endpoint: "/api/gallery-media",
		Text: []Field{
			{Name: "title", Label: "Title", Kind: record.KindLocalized, Rules: []v.Rule{v.Required()}},
			{Name: "description", Label: "Description", Kind: record.KindLocalized, Multiline: true, Rules: []v.Rule{v.Required()}},
			{Name: "mediaType", Label: "Media type", Kind: record.KindText, Options: MediaTypes, Rules: []v.Rule{v.Required(), v.OneOf(MediaTypes...)}},
			{Name: "category", Label: "Category", Kind: record.KindText, Options: Categories, Rules: []v.Rule{v.Required(), v.OneOf(Categories...)}},
			{Name: "seoDescription", Label: "SEO description", Kind: record.KindLocalized, Rules: []v.Rule{v.MaxLength(v.DefaultMaxLength)}},
			{Name: "seoKeywords", Label: "SEO keywords", Kind: record.KindLocalized},
			{Name: "orderIndex", Label: "Order", Kind: record.KindNumber, Rules: []v.Rule{v.Min(0)}},
			{Name: "isActive", Label: "Active", Kind: record.KindBool},
		},
		Media: []Field{
			{Name: "beforeImage", Label: "Before image", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
			{Name: "afterImage", Label: "After image", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
			{Name: "video", Label: "Video", Kind: record.KindFile, Accept: "video/", Rules: []v.Rule{v.MIMEPrefix("video/")}},
			{Name: "videoPoster", Label: "Video poster", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
		},
		Columns: []listing.Column{
			{Key: "id", Header: "ID"},
			{Key: "title", Header: "Title"},
			{Key: "mediaType", Header: "Type"},
			{Key: "category", Header: "Category"},
			{Key: "orderIndex", Header: "Order"},
			{Key: "isActive", Header: "Active"},
		},
	},
	"social-media-post": {
		Name:     "social-media-post",
		Title:    "Social Media Post",
		Plural:   "social-media-posts",
		Endpoint: "/api/social-media-posts",

		// The plain endpoint only serves active posts.
		ListEndpoint: "/api/social-media-posts/all",

		Text: []Field{
			{Name: "platform", Label: "Platform", Kind: record.KindText, Options: Platforms, Rules: []v.Rule{v.Required(), v.OneOf(Platforms...)}},
			{Name: "videoUrl", Label: "Video URL", Kind: record.KindText, Rules: []v.Rule{v.Required(), v.URL()}},
			{Name: "title", Label: "Title", Kind: record.KindLocalized, Rules: []v.Rule{v.Required()}},
			{Name: "description", Label: "Description", Kind: record.KindLocalized, Multiline: true},
			{Name: "displayOrder", Label: "Display order", Kind: record.KindNumber, Rules: []v.Rule{v.Required(), v.Min(0)}},
			{Name: "isActive", Label: "Active", Kind: record.KindBool},
		},
		Media: []Field{
			{Name: "thumbnail", Label: "Thumbnail", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
		},
		Columns: []listing.Column{
			{Key: "id", Header: "ID"},
			{Key: "platform", Header: "Platform"},
			{Key: "title", Header: "Title"},
			{Key: "displayOrder", Header: "Order"},
			{Key: "isActive", Header: "Active"},
		},
	},
	"testimonial": {
		Name:     "testimonial",
		Title:    "Testimonial",
		Plural:   "testimonials",
		Endpoint: "/api/testimonials",
		Text: []Field{
			{Name: "authorName", Label: "Author", Kind: record.KindText, Rules: []v.Rule{v.Required()}},
			{Name: "content", Label: "Content", Kind: record.KindLocalized, Multiline: true, Rules: []v.Rule{v.Required()}},
			{Name: "rating", Label: "Rating (1-5)", Kind: record.KindNumber, Rules: []v.Rule{v.Required(), v.Range(1, 5)}},
			{Name: "orderIndex", Label: "Order", Kind: record.KindNumber, Rules: []v.Rule{v.Min(0)}},
		},
		Media: []Field{
			{Name: "avatar", Label: "Avatar", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{v.MIMEPrefix("image/")}},
		},
		Columns: []listing.Column{
			{Key: "id", Header: "ID"},
			{Key: "authorName", Header: "Author"},
			{Key: "rating", Header: "Rating"},
			{Key: "orderIndex", Header: "Order"},
		},
	},
	"blog-article": {
		Name:     "blog-article",
		Title:    "Blog Article",
		Plural:   "blog-articles",
		Endpoint: "/api/blog-articles",
		Text: []Field{
			{Name: "title", Label: "Title", Kind: record.KindLocalized, Rules: []v.Rule{v.Required()}},
			{Name: "slug", Label: "Slug (defaults to the English title)", Kind: record.KindText, Rules: []v.Rule{v.Pattern(slugPattern, "lowercase words separated by dashes")}},
			{Name: "excerpt", Label: "Excerpt", Kind: record.KindLocalized, Rules: []v.Rule{v.MaxLength(v.DefaultMaxLength)}},
			{Name: "content", Label: "Content", Kind: record.KindLocalized, Multiline: true, Rules: []v.Rule{v.Required()}},
			{Name: "tags", Label: "Tags (one per line)", Kind: record.KindList},
		},
		Media: []Field{
			{Name: "coverImage", Label: "Cover image", Kind: record.KindFile, Accept: "image/", Rules: []v.Rule{
				v.WithMessage(v.Required(), "Cover image is required"), v.MIMEPrefix("image/"),
			}},
		},
		Columns: []listing.Column{
			{Key: "id", Header: "ID"},
			{Key: "slug", Header: "Slug"},
			{Key: "title", Header: "Title"},
		},
		prepare: defaultSlug,
	},
}

// splitFeatures turns the newline separated features text into a list.
func splitFeatures(d record.Draft) record.Draft {
	if _, ok := d["features"]; ok {
		lines := record.SplitLines(d.String("features"))
		if lines == nil {
			lines = []string{}
		}
		d["features"] = lines
	}
	return d
}

// defaultSlug derives the slug from the English title when none was given.
func defaultSlug(d record.Draft) record.Draft {
	if d.String("slug") != "" {
		return d
	}
	if title := d.Localized("title")[record.LocaleEN]; title != "" {
		d["slug"] = slug.Make(title)
	}
	return d
}
