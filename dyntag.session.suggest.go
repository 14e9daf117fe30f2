package dyntag

import (
	"slices"
	"strings"

	"github.com/itsatony/go-dyntag/internal"
)

// SuggestionKind says what the text before the cursor expects next.
type SuggestionKind string

// Suggestion kinds
const (
	SuggestNone      SuggestionKind = "none"
	SuggestGroups    SuggestionKind = "groups"
	SuggestFields    SuggestionKind = "fields"
	SuggestModifiers SuggestionKind = "modifiers"
	SuggestArgument  SuggestionKind = "argument"
)

// Suggestions is the completion answer for a cursor position.
type Suggestions struct {
	Kind SuggestionKind `json:"kind"`
	// Prefix is the partial key or value already typed before the cursor.
	Prefix    string     `json:"prefix,omitempty"`
	Groups    []Group    `json:"groups,omitempty"`
	Fields    []Field    `json:"fields,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	// Argument is the declaration of the argument being edited.
	Argument *ModifierArg `json:"argument,omitempty"`
	// RunningType is the type flowing into the next modifier. Empty when
	// it cannot be determined.
	RunningType ReturnType `json:"running_type,omitempty"`
	GroupKey    string     `json:"group,omitempty"`
	ModifierKey string     `json:"modifier,omitempty"`
	ArgIndex    int        `json:"arg_index"`
}

// SuggestAt answers what may be typed at cursor, a byte offset into Text().
func (s *Session) SuggestAt(cursor int) (Suggestions, error) {
	if err := s.checkEdit(); err != nil {
		return Suggestions{}, err
	}
	text := s.Text()
	if cursor < 0 || cursor > len(text) {
		return Suggestions{}, NewCursorError(cursor, len(text))
	}
	return s.engine.SuggestFor(text[:cursor], s.ctx), nil
}

// SuggestFor answers what may be typed after before, the text left of a
// cursor. The text may or may not start with the open marker.
func (e *Engine) SuggestFor(before string, ctx Context) Suggestions {
	open, _ := e.Markers()
	body := strings.TrimPrefix(before, open)
	config := e.lexerConfig()
	config.AssumeOpen = true
	symbols := internal.NewLexerWithConfig(body, config, e.logger).Tokenize()
	if n := len(symbols); n > 0 && symbols[n-1].IsEOF() {
		symbols = symbols[:n-1]
	}
	return suggestFromSymbols(symbols, e.catalog, ctx)
}

func suggestFromSymbols(syms []Symbol, catalog *Catalog, ctx Context) Suggestions {
	none := Suggestions{Kind: SuggestNone}
	n := len(syms)
	if n == 0 {
		return none
	}
	kind := func(i int) SymbolKind {
		if i < 0 || i >= n {
			return ""
		}
		return syms[i].Kind
	}
	last := syms[n-1]

	switch {
	case last.Is(internal.SymbolAt):
		return groupSuggestions(catalog, ctx, "")
	case last.Is(internal.SymbolIdent) && kind(n-2) == internal.SymbolAt:
		return groupSuggestions(catalog, ctx, last.Value)
	case last.Is(internal.SymbolGroupOpen):
		return fieldSuggestions(catalog, syms[n-2].Value, "")
	case last.Is(internal.SymbolIdent) && kind(n-2) == internal.SymbolGroupOpen:
		return fieldSuggestions(catalog, syms[n-3].Value, last.Value)
	case last.Is(internal.SymbolDot):
		return modifierSuggestions(catalog, syms[:n-1], "")
	case last.Is(internal.SymbolIdent) && kind(n-2) == internal.SymbolDot:
		return modifierSuggestions(catalog, syms[:n-2], last.Value)
	case last.Is(internal.SymbolGroupClose) || last.Is(internal.SymbolArgsClose):
		return modifierSuggestions(catalog, syms, "")
	}

	// Inside an argument list: find its opening paren.
	prefix := ""
	end := n
	switch {
	case last.Is(internal.SymbolArg) || last.Is(internal.SymbolString):
		prefix = last.Value
		end = n - 1
	case last.Is(internal.SymbolText):
		// Trailing whitespace or an unterminated quote after `(` or `,`.
		end = n - 1
		for end > 0 && syms[end-1].Is(internal.SymbolText) {
			end--
		}
		if k := kind(end - 1); k != internal.SymbolArgsOpen && k != internal.SymbolComma {
			return none
		}
		prefix = strings.TrimLeft(strings.TrimSpace(internal.JoinRaw(syms[end:])), `"'`)
	}
	commas := 0
	for i := end - 1; i >= 0; i-- {
		switch syms[i].Kind {
		case internal.SymbolComma:
			commas++
		case internal.SymbolArg, internal.SymbolString:
		case internal.SymbolArgsOpen:
			return argumentSuggestions(catalog, syms[:i], commas, prefix)
		default:
			return none
		}
	}
	return none
}

func groupSuggestions(catalog *Catalog, ctx Context, prefix string) Suggestions {
	groups := catalog.GroupsFor(ctx)
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	match := internal.FilterByPrefix(prefix, keys)
	out := Suggestions{Kind: SuggestGroups, Prefix: prefix, Groups: []Group{}}
	for _, g := range groups {
		if slices.Contains(match, g.Key) {
			out.Groups = append(out.Groups, g)
		}
	}
	return out
}

func fieldSuggestions(catalog *Catalog, groupKey, prefix string) Suggestions {
	fields := catalog.FieldsFor(groupKey)
	match := internal.FilterByPrefix(prefix, catalog.fieldKeys(groupKey))
	out := Suggestions{Kind: SuggestFields, Prefix: prefix, GroupKey: groupKey, Fields: []Field{}}
	for _, f := range fields {
		if slices.Contains(match, f.Key) {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// modifierSuggestions offers modifiers for the type flowing out of the
// chain that ends the symbol slice. Every modifier is offered when the type
// cannot be determined.
func modifierSuggestions(catalog *Catalog, chain []Symbol, prefix string) Suggestions {
	tok, ok := trailingToken(chain)
	if !ok {
		return Suggestions{Kind: SuggestNone}
	}
	running := threadType(catalog, tok)
	var mods []Modifier
	if running == "" {
		mods = catalog.Modifiers()
	} else {
		mods = catalog.ModifiersFor(running)
	}
	keys := make([]string, len(mods))
	for i, m := range mods {
		keys[i] = m.Key
	}
	match := internal.FilterByPrefix(prefix, keys)
	out := Suggestions{
		Kind:        SuggestModifiers,
		Prefix:      prefix,
		RunningType: running,
		GroupKey:    tok.Group,
		Modifiers:   []Modifier{},
	}
	for _, m := range mods {
		if slices.Contains(match, m.Key) {
			out.Modifiers = append(out.Modifiers, m)
		}
	}
	return out
}

// argumentSuggestions describes argument index of the modifier whose
// `.key` ends the symbol slice.
func argumentSuggestions(catalog *Catalog, head []Symbol, index int, prefix string) Suggestions {
	n := len(head)
	if n < 2 || !head[n-1].Is(internal.SymbolIdent) || !head[n-2].Is(internal.SymbolDot) {
		return Suggestions{Kind: SuggestNone}
	}
	key := head[n-1].Value
	out := Suggestions{Kind: SuggestArgument, Prefix: prefix, ModifierKey: key, ArgIndex: index}
	if tok, ok := trailingToken(head[:n-2]); ok {
		out.GroupKey = tok.Group
		out.RunningType = threadType(catalog, tok)
	}
	if mod, ok := catalog.Modifier(key); ok {
		if decl, ok := mod.Arg(index); ok {
			out.Argument = &decl
		}
	}
	return out
}

// trailingToken parses the complete token that ends the symbol slice.
func trailingToken(chain []Symbol) (Token, bool) {
	start := -1
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Is(internal.SymbolAt) {
			start = i
			break
		}
	}
	if start < 0 {
		return Token{}, false
	}
	doc := ParseSymbols(chain[start:], nil, "")
	if len(doc.Segments) != 1 {
		return Token{}, false
	}
	ts, ok := doc.Segments[0].(*TokenSegment)
	if !ok {
		return Token{}, false
	}
	return ts.Token, true
}

// threadType returns the type flowing out of a token's chain, or "" when an
// unknown key makes it undeterminable.
func threadType(catalog *Catalog, tok Token) ReturnType {
	var running ReturnType
	if f, ok := catalog.Field(tok.Group, tok.Field); ok {
		running = f.ReturnType
	}
	for _, m := range tok.Modifiers {
		mod, ok := catalog.Modifier(m.Key)
		if !ok {
			return ""
		}
		running = mod.Output
	}
	return running
}
