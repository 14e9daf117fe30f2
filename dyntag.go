// Package dyntag implements dynamic tag expressions: text values that mix
// literal content with references to contextual data, each optionally
// piped through a chain of modifiers.
//
// An active value is wrapped in markers:
//
//	@tags()Posted by @user(display_name).upper() on @post(date).date_format("d M Y")@endtags()
//
// Tokens have the canonical form @group(field).modifier(arg, ...). Group,
// field and modifier keys come from a Catalog, which also declares the
// contexts a group applies to and the types each modifier accepts and
// returns.
//
// # Basic Usage
//
//	engine := dyntag.MustNew()
//	doc, diags := engine.Check(value, dyntag.ContextContent)
//	for _, d := range diags {
//	    fmt.Println(d)
//	}
//	canonical := engine.Serialize(doc)
//
// Parsing never fails. Fragments that do not form a well-formed token are
// kept as literal text, so a malformed value survives a round trip.
// Catalog problems such as unknown fields or type mismatches are reported
// by validation, not by the parser.
//
// # Builder Sessions
//
// A Session edits one value on behalf of an interactive builder:
//
//	s := engine.Open("Title", attrs["title"], dyntag.ContextContent)
//	_ = s.AppendToken(dyntag.Token{Group: "post", Field: "title"})
//	sugg := engine.SuggestFor("@tags()@post(title).", dyntag.ContextContent)
//	value, err := s.Commit()
//
// # Catalogs
//
// Catalogs load from YAML, JSON or HCL files (LoadCatalog), can be kept
// versioned in a CatalogStorage (memory, filesystem, sqlite or postgres
// drivers) and reloaded on change with a CatalogWatcher.
package dyntag
