package dyntag

// Built-in group keys
const (
	GroupPost = "post"
	GroupUser = "user"
	GroupSite = "site"
	GroupTerm = "term"
)

// DefaultCatalogName names the catalog returned by DefaultCatalog.
const DefaultCatalogName = "default"

// DefaultCatalogDefinition returns the definition of the built-in catalog:
// the current post, the current user, the site and the current taxonomy
// term, plus the standard modifier set.
func DefaultCatalogDefinition() CatalogDefinition {
	return CatalogDefinition{
		Name: DefaultCatalogName,
		Groups: []Group{
			{
				Key:      GroupPost,
				Label:    "Post",
				Icon:     "admin-post",
				Contexts: []Context{ContextContent},
				Fields: []Field{
					{Key: "id", Label: "ID", ReturnType: ReturnTypeNumber},
					{Key: "title", Label: "Title", ReturnType: ReturnTypeText},
					{Key: "excerpt", Label: "Excerpt", ReturnType: ReturnTypeText},
					{Key: "content", Label: "Content", ReturnType: ReturnTypeText, Description: "Full post body, **HTML allowed**."},
					{Key: "permalink", Label: "Permalink", ReturnType: ReturnTypeText},
					{Key: "date", Label: "Published date", ReturnType: ReturnTypeDate},
					{Key: "modified", Label: "Modified date", ReturnType: ReturnTypeDate},
					{Key: "author_name", Label: "Author name", ReturnType: ReturnTypeText},
					{Key: "featured_image", Label: "Featured image", ReturnType: ReturnTypeImage},
					{Key: "comment_count", Label: "Comment count", ReturnType: ReturnTypeNumber},
					{Key: "categories", Label: "Categories", ReturnType: ReturnTypeList},
					{Key: "tags", Label: "Tags", ReturnType: ReturnTypeList},
					{Key: "is_sticky", Label: "Is sticky", ReturnType: ReturnTypeBoolean},
				},
			},
			{
				Key:      GroupUser,
				Label:    "User",
				Icon:     "admin-users",
				Contexts: []Context{ContextContent, ContextVisitor},
				Fields: []Field{
					{Key: "id", Label: "ID", ReturnType: ReturnTypeNumber},
					{Key: "display_name", Label: "Display name", ReturnType: ReturnTypeText},
					{Key: "first_name", Label: "First name", ReturnType: ReturnTypeText},
					{Key: "last_name", Label: "Last name", ReturnType: ReturnTypeText},
					{Key: "email", Label: "Email", ReturnType: ReturnTypeText},
					{Key: "avatar", Label: "Avatar", ReturnType: ReturnTypeImage},
					{Key: "registered", Label: "Registration date", ReturnType: ReturnTypeDate},
					{Key: "logged_in", Label: "Is logged in", ReturnType: ReturnTypeBoolean},
				},
			},
			{
				Key:      GroupSite,
				Label:    "Site",
				Icon:     "admin-site",
				Contexts: []Context{ContextContent, ContextVisitor, ContextSite, ContextTaxonomy},
				Fields: []Field{
					{Key: "title", Label: "Site title", ReturnType: ReturnTypeText},
					{Key: "tagline", Label: "Tagline", ReturnType: ReturnTypeText},
					{Key: "url", Label: "Home URL", ReturnType: ReturnTypeText},
					{Key: "logo", Label: "Logo", ReturnType: ReturnTypeImage},
					{Key: "current_date", Label: "Current date", ReturnType: ReturnTypeDate},
				},
			},
			{
				Key:      GroupTerm,
				Label:    "Term",
				Icon:     "tag",
				Contexts: []Context{ContextTaxonomy},
				Fields: []Field{
					{Key: "id", Label: "ID", ReturnType: ReturnTypeNumber},
					{Key: "name", Label: "Name", ReturnType: ReturnTypeText},
					{Key: "slug", Label: "Slug", ReturnType: ReturnTypeText},
					{Key: "description", Label: "Description", ReturnType: ReturnTypeText},
					{Key: "link", Label: "Archive link", ReturnType: ReturnTypeText},
					{Key: "count", Label: "Item count", ReturnType: ReturnTypeNumber},
					{Key: "image", Label: "Term image", ReturnType: ReturnTypeImage},
				},
			},
		},
		Modifiers: []Modifier{
			{
				Key: "truncate", Label: "Truncate", Description: "Shortens text to a number of characters.",
				Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText,
				Args: []ModifierArg{
					{Key: "length", Label: "Length", Type: ArgTypeNumber, Required: true},
					{Key: "suffix", Label: "Suffix", Type: ArgTypeText, Default: StringPtr("…")},
				},
			},
			{Key: "upper", Label: "Uppercase", Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText},
			{Key: "lower", Label: "Lowercase", Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText},
			{Key: "capitalize", Label: "Capitalize", Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText},
			{Key: "trim", Label: "Trim", Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText},
			{Key: "strip_tags", Label: "Strip tags", Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText},
			{
				Key: "date_format", Label: "Date format", Description: "Formats a date with a PHP-style pattern.",
				Accepts: []ReturnType{ReturnTypeDate}, Output: ReturnTypeText,
				Args: []ModifierArg{
					{Key: "format", Label: "Format", Type: ArgTypeText, Default: StringPtr("F j, Y")},
				},
			},
			{Key: "time_ago", Label: "Time ago", Accepts: []ReturnType{ReturnTypeDate}, Output: ReturnTypeText},
			{
				Key: "number_format", Label: "Number format",
				Accepts: []ReturnType{ReturnTypeNumber}, Output: ReturnTypeText,
				Args: []ModifierArg{
					{Key: "decimals", Label: "Decimals", Type: ArgTypeNumber, Default: StringPtr("0")},
					{Key: "thousands", Label: "Thousands separator", Type: ArgTypeText, Default: StringPtr(",")},
				},
			},
			{
				Key: "round", Label: "Round",
				Accepts: []ReturnType{ReturnTypeNumber}, Output: ReturnTypeNumber,
				Args: []ModifierArg{
					{Key: "precision", Label: "Precision", Type: ArgTypeNumber, Default: StringPtr("0")},
				},
			},
			{Key: "count", Label: "Count", Accepts: []ReturnType{ReturnTypeList, ReturnTypeText}, Output: ReturnTypeNumber},
			{
				Key: "join", Label: "Join",
				Accepts: []ReturnType{ReturnTypeList}, Output: ReturnTypeText,
				Args: []ModifierArg{
					{Key: "separator", Label: "Separator", Type: ArgTypeText, Default: StringPtr(", ")},
				},
			},
			{Key: "first", Label: "First item", Accepts: []ReturnType{ReturnTypeList}, Output: ReturnTypeText},
			{
				Key: "image_url", Label: "Image URL",
				Accepts: []ReturnType{ReturnTypeImage}, Output: ReturnTypeText,
				Args: []ModifierArg{
					{
						Key: "size", Label: "Size", Type: ArgTypeEnum, Default: StringPtr("full"),
						Choices: []string{"thumbnail", "medium", "large", "full"},
					},
				},
			},
			{Key: "image_alt", Label: "Image alt text", Accepts: []ReturnType{ReturnTypeImage}, Output: ReturnTypeText},
			{
				Key: "yes_no", Label: "Yes / No",
				Accepts: []ReturnType{ReturnTypeBoolean}, Output: ReturnTypeText,
				Args: []ModifierArg{
					{Key: "yes", Label: "Yes text", Type: ArgTypeText, Default: StringPtr("Yes")},
					{Key: "no", Label: "No text", Type: ArgTypeText, Default: StringPtr("No")},
				},
			},
			{
				Key: "fallback", Label: "Fallback", Description: "Text shown when the value is empty.",
				Accepts: []ReturnType{
					ReturnTypeText, ReturnTypeNumber, ReturnTypeDate,
					ReturnTypeBoolean, ReturnTypeImage, ReturnTypeList,
				},
				Output: ReturnTypeText,
				Args: []ModifierArg{
					{Key: "value", Label: "Fallback text", Type: ArgTypeText, Required: true},
				},
			},
		},
	}
}

// DefaultCatalog builds a fresh catalog from DefaultCatalogDefinition.
func DefaultCatalog() *Catalog {
	return MustNewCatalog(DefaultCatalogDefinition())
}
