package dyntag

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docOpts compares documents by content only.
var docOpts = []cmp.Option{
	cmpopts.IgnoreTypes(Position{}),
	cmpopts.IgnoreFields(Document{}, "Context"),
	cmpopts.EquateEmpty(),
}

func assertDoc(t *testing.T, want, got *Document) {
	t.Helper()
	if diff := cmp.Diff(want, got, docOpts...); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Scenarios(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("single token", func(t *testing.T) {
		doc := Parse("@tags()@post(title)@endtags()", catalog, ContextContent)
		assertDoc(t, NewDocument(ContextContent, Ref("post", "title")), doc)
		assert.Equal(t, ContextContent, doc.Context)
	})

	t.Run("token with typed argument", func(t *testing.T) {
		doc := Parse("@tags()@post(title).truncate(50)@endtags()", catalog, ContextContent)
		assertDoc(t, NewDocument(ContextContent,
			Ref("post", "title", Mod("truncate", NumberArg(50))),
		), doc)
	})

	t.Run("plain literal bypasses the engine", func(t *testing.T) {
		doc := Parse("Hello world", catalog, ContextContent)
		assertDoc(t, NewDocument(ContextContent, Literal("Hello world")), doc)
		assert.False(t, doc.HasTokens())
	})

	t.Run("empty input is an empty document", func(t *testing.T) {
		doc := Parse("", catalog, ContextContent)
		require.NotNil(t, doc.Segments)
		assert.True(t, doc.IsEmpty())
	})
}

func TestParse_Segments(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name  string
		input string
		want  *Document
	}{
		{
			name:  "literal around tokens",
			input: "@tags()By @user(display_name) on @post(date).date_format(\"d M Y\")!@endtags()",
			want: NewDocument("",
				Literal("By "),
				Ref("user", "display_name"),
				Literal(" on "),
				Ref("post", "date", Mod("date_format", TextArg("d M Y"))),
				Literal("!"),
			),
		},
		{
			name:  "chain with several modifiers",
			input: "@tags()@post(tags).join(\" | \").upper()@endtags()",
			want: NewDocument("",
				Ref("post", "tags", Mod("join", TextArg(" | ")), Mod("upper")),
			),
		},
		{
			name:  "arguments typed by declaration",
			input: "@tags()@user(logged_in).yes_no(On, 'Off')@endtags()",
			want: NewDocument("",
				Ref("user", "logged_in", Mod("yes_no", TextArg("On"), TextArg("Off"))),
			),
		},
		{
			name:  "enum argument",
			input: "@tags()@post(featured_image).image_url(medium)@endtags()",
			want: NewDocument("",
				Ref("post", "featured_image", Mod("image_url", EnumArg("medium"))),
			),
		},
		{
			name:  "quoted text containing commas and parens",
			input: `@tags()@post(title).fallback("a, (b) \"c\" \\ d")@endtags()`,
			want: NewDocument("",
				Ref("post", "title", Mod("fallback", TextArg(`a, (b) "c" \ d`))),
			),
		},
		{
			name:  "empty argument list",
			input: "@tags()@post(date).date_format()@endtags()",
			want:  NewDocument("", Ref("post", "date", Mod("date_format"))),
		},
		{
			name:  "unknown keys are kept",
			input: "@tags()@product(price).money(EUR, 2)@endtags()",
			want: NewDocument("",
				Ref("product", "price", Mod("money", RawArg("EUR", false), RawArg("2", false))),
			),
		},
		{
			name:  "failed conversion stays raw",
			input: "@tags()@post(title).truncate(many)@endtags()",
			want: NewDocument("",
				Ref("post", "title", Mod("truncate", RawArg("many", false))),
			),
		},
		{
			name:  "unicode identifiers",
			input: "@tags()@post(título)@endtags()",
			want:  NewDocument("", Ref("post", "título")),
		},
		{
			name:  "multiline content",
			input: "@tags()Line 1\n@post(title)\nLine 3@endtags()",
			want: NewDocument("",
				Literal("Line 1\n"),
				Ref("post", "title"),
				Literal("\nLine 3"),
			),
		},
		{
			name:  "escaped at and dot",
			input: `@tags()mail\@post(title) @post(title)\.@endtags()`,
			want: NewDocument("",
				Literal("mail@post(title) "),
				Ref("post", "title"),
				Literal("."),
			),
		},
		{
			name:  "bare at sign is literal",
			input: "@tags()a @ b@endtags()",
			want:  NewDocument("", Literal("a @ b")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDoc(t, tt.want, Parse(tt.input, catalog, ContextContent))
		})
	}
}

func TestParse_Degradation(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name  string
		input string
		want  *Document
	}{
		{
			name:  "dangling dot after token",
			input: "@tags()@post(title).@endtags()",
			want:  NewDocument("", Ref("post", "title"), Literal(".")),
		},
		{
			name:  "missing field",
			input: "@tags()@post() and @site(title)@endtags()",
			want:  NewDocument("", Literal("@post() and "), Ref("site", "title")),
		},
		{
			name:  "unclosed group",
			input: "@tags()@post(title x @site(url)@endtags()",
			want:  NewDocument("", Literal("@post(title x "), Ref("site", "url")),
		},
		{
			name:  "arguments without separator keep the token",
			input: "@tags()@post(title).truncate(10 @site(url)@endtags()",
			want: NewDocument("",
				Ref("post", "title"),
				Literal(".truncate(10 @site(url)"),
			),
		},
		{
			name:  "trailing comma",
			input: "@tags()@post(title).truncate(10,)@endtags()",
			want:  NewDocument("", Ref("post", "title"), Literal(".truncate(10,)")),
		},
		{
			name:  "modifier without parens",
			input: "@tags()@post(title).upper tail@endtags()",
			want:  NewDocument("", Ref("post", "title"), Literal(".upper tail")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input, catalog, ContextContent)
			assertDoc(t, tt.want, doc)
		})
	}
}

func TestParse_OpenMarkerWithoutClose(t *testing.T) {
	inputs := []string{
		"@tags()@post(title)",
		"@tags()@post(title).truncate(5",
		"@tags()",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			doc := Parse(input, DefaultCatalog(), ContextContent)
			assertDoc(t, NewDocument("", Literal(input)), doc)
			assert.Equal(t, input, Serialize(doc))
		})
	}
}

func TestParse_NilCatalogKeepsArgumentsRaw(t *testing.T) {
	doc := Parse("@tags()@post(title).truncate(5, \"…\")@endtags()", nil, ContextContent)
	assertDoc(t, NewDocument("",
		Ref("post", "title", Mod("truncate", RawArg("5", false), RawArg("…", true))),
	), doc)
}

func TestParse_Positions(t *testing.T) {
	doc := Parse("@tags()Hi\n@post(title).upper()@endtags()", DefaultCatalog(), ContextContent)
	require.Len(t, doc.Segments, 2)

	assert.Equal(t, 1, doc.Segments[0].Pos().Line)
	assert.Equal(t, 8, doc.Segments[0].Pos().Column)

	ts, ok := doc.Segments[1].(*TokenSegment)
	require.True(t, ok)
	assert.Equal(t, 2, ts.Position.Line)
	assert.Equal(t, 1, ts.Position.Column)
	assert.Equal(t, 13, ts.Token.Modifiers[0].Position.Column)
}

func TestTokenize_EndsWithEOF(t *testing.T) {
	for _, input := range []string{"", "plain", "@tags()@post(title)@endtags()"} {
		symbols := Tokenize(input)
		require.NotEmpty(t, symbols)
		assert.True(t, symbols[len(symbols)-1].IsEOF())
	}
}

func TestParse_NeverLosesContent(t *testing.T) {
	inputs := []string{
		"@tags()@@@(((...)))@endtags()",
		"@tags()@post(title).truncate(\"unterminated)@endtags()",
		"@tags()@a(b).c(d).e(@endtags()",
		"@tags()\\@x \\\\ \\. \\q@endtags()",
		"@tags()@post(title)@endtags()@tags()@site(url)@endtags()",
		"@tags()@tags()Sale@endtags()@endtags()",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			doc := Parse(input, DefaultCatalog(), ContextContent)
			again := Parse(Serialize(doc), DefaultCatalog(), ContextContent)
			assert.True(t, doc.Equal(again), "reparse of %q changed the document", Serialize(doc))
			for _, tok := range doc.Tokens() {
				assert.True(t, strings.Contains(input, tok.Group))
			}
		})
	}
}
