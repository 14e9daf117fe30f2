package dyntag

import (
	"slices"
	"strconv"
)

// ArgKind is the kind of a concrete argument value.
type ArgKind string

// ArgValue is a concrete argument bound to an applied modifier.
// Only the member matching Kind is meaningful: Text for text, enum and raw
// values, Number for numbers, Bool for booleans.
type ArgValue struct {
	Kind   ArgKind `json:"kind"`
	Text   string  `json:"text,omitempty"`
	Number float64 `json:"number,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
	// Quoted records whether a raw value was written in quotes.
	Quoted bool `json:"quoted,omitempty"`
}

// TextArg returns a text argument.
func TextArg(s string) ArgValue {
	return ArgValue{Kind: ArgKindText, Text: s}
}

// NumberArg returns a number argument.
func NumberArg(n float64) ArgValue {
	return ArgValue{Kind: ArgKindNumber, Number: n}
}

// BoolArg returns a boolean argument.
func BoolArg(b bool) ArgValue {
	return ArgValue{Kind: ArgKindBoolean, Bool: b}
}

// EnumArg returns an enum argument.
func EnumArg(s string) ArgValue {
	return ArgValue{Kind: ArgKindEnum, Text: s}
}

// RawArg returns an argument kept as source text, either because its
// modifier is unknown or because it did not convert to the declared type.
func RawArg(s string, quoted bool) ArgValue {
	return ArgValue{Kind: ArgKindRaw, Text: s, Quoted: quoted}
}

// String returns the value as display text.
func (a ArgValue) String() string {
	switch a.Kind {
	case ArgKindNumber:
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	case ArgKindBoolean:
		return strconv.FormatBool(a.Bool)
	default:
		return a.Text
	}
}

// Equal reports whether two argument values are the same.
func (a ArgValue) Equal(b ArgValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArgKindNumber:
		return a.Number == b.Number
	case ArgKindBoolean:
		return a.Bool == b.Bool
	case ArgKindRaw:
		return a.Text == b.Text && a.Quoted == b.Quoted
	default:
		return a.Text == b.Text
	}
}

// AppliedModifier is a modifier key bound to concrete argument values.
type AppliedModifier struct {
	Key      string     `json:"key"`
	Args     []ArgValue `json:"args,omitempty"`
	Position Position   `json:"-"`
}

// ResolvedArgs returns the arguments with declared defaults filled in for
// positions the author left out. Positions with neither a value nor a
// default are left out of the result.
func (m AppliedModifier) ResolvedArgs(def Modifier) []ArgValue {
	out := slices.Clone(m.Args)
	for i := len(m.Args); i < len(def.Args); i++ {
		a := def.Args[i]
		if a.Default == nil {
			break
		}
		v, ok := convertArg(a, *a.Default)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Token is one concrete data reference with its modifier chain.
type Token struct {
	Group     string            `json:"group"`
	Field     string            `json:"field"`
	Modifiers []AppliedModifier `json:"modifiers,omitempty"`
}

// Clone returns a deep copy of the token.
func (t Token) Clone() Token {
	mods := make([]AppliedModifier, len(t.Modifiers))
	for i, m := range t.Modifiers {
		m.Args = slices.Clone(m.Args)
		mods[i] = m
	}
	if t.Modifiers == nil {
		mods = nil
	}
	t.Modifiers = mods
	return t
}

// WithDefaults returns a copy of the token in which every modifier known to
// the catalog carries its declared default arguments.
func (t Token) WithDefaults(catalog *Catalog) Token {
	out := t.Clone()
	for i, m := range out.Modifiers {
		if def, ok := catalog.Modifier(m.Key); ok {
			out.Modifiers[i].Args = m.ResolvedArgs(def)
		}
	}
	return out
}

// Equal reports whether two tokens reference the same data with the same
// chain. Positions are ignored.
func (t Token) Equal(o Token) bool {
	if t.Group != o.Group || t.Field != o.Field || len(t.Modifiers) != len(o.Modifiers) {
		return false
	}
	for i, m := range t.Modifiers {
		n := o.Modifiers[i]
		if m.Key != n.Key || len(m.Args) != len(n.Args) {
			return false
		}
		for j := range m.Args {
			if !m.Args[j].Equal(n.Args[j]) {
				return false
			}
		}
	}
	return true
}

// Segment is one element of a Document: a *LiteralSegment or a *TokenSegment.
type Segment interface {
	segment()
	// Pos returns where the segment started in the parsed source.
	Pos() Position
}

// LiteralSegment is a run of plain text.
type LiteralSegment struct {
	Text     string
	Position Position
}

func (*LiteralSegment) segment() {}

// Pos implements Segment.
func (s *LiteralSegment) Pos() Position { return s.Position }

// TokenSegment holds one dynamic token.
type TokenSegment struct {
	Token    Token
	Position Position
}

func (*TokenSegment) segment() {}

// Pos implements Segment.
func (s *TokenSegment) Pos() Position { return s.Position }

// Document is the parsed form of one stored attribute value.
type Document struct {
	Segments []Segment
	// Context is the context the document was parsed for.
	Context Context
}

// NewDocument creates a document from segments.
func NewDocument(ctx Context, segments ...Segment) *Document {
	return &Document{Segments: segments, Context: ctx}
}

// Literal returns a literal segment.
func Literal(text string) *LiteralSegment {
	return &LiteralSegment{Text: text}
}

// Ref returns a token segment for group(field) with the given chain.
func Ref(group, field string, mods ...AppliedModifier) *TokenSegment {
	return &TokenSegment{Token: Token{Group: group, Field: field, Modifiers: mods}}
}

// Mod returns an applied modifier.
func Mod(key string, args ...ArgValue) AppliedModifier {
	return AppliedModifier{Key: key, Args: args}
}

// HasTokens reports whether the document contains at least one token.
func (d *Document) HasTokens() bool {
	if d == nil {
		return false
	}
	for _, s := range d.Segments {
		if _, ok := s.(*TokenSegment); ok {
			return true
		}
	}
	return false
}

// Tokens returns the tokens of the document in order.
func (d *Document) Tokens() []Token {
	if d == nil {
		return nil
	}
	var out []Token
	for _, s := range d.Segments {
		if t, ok := s.(*TokenSegment); ok {
			out = append(out, t.Token)
		}
	}
	return out
}

// IsEmpty reports whether the document has no content.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, s := range d.Segments {
		switch v := s.(type) {
		case *TokenSegment:
			return false
		case *LiteralSegment:
			if v.Text != "" {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Context: d.Context, Segments: make([]Segment, len(d.Segments))}
	for i, s := range d.Segments {
		switch v := s.(type) {
		case *LiteralSegment:
			c := *v
			out.Segments[i] = &c
		case *TokenSegment:
			out.Segments[i] = &TokenSegment{Token: v.Token.Clone(), Position: v.Position}
		}
	}
	return out
}

// Equal reports whether two documents have the same segments. Positions and
// context are ignored.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d.IsEmpty() && o.IsEmpty()
	}
	if len(d.Segments) != len(o.Segments) {
		return false
	}
	for i, s := range d.Segments {
		switch v := s.(type) {
		case *LiteralSegment:
			w, ok := o.Segments[i].(*LiteralSegment)
			if !ok || v.Text != w.Text {
				return false
			}
		case *TokenSegment:
			w, ok := o.Segments[i].(*TokenSegment)
			if !ok || !v.Token.Equal(w.Token) {
				return false
			}
		}
	}
	return true
}

// convertArg converts source text to a value of the argument's declared type.
func convertArg(a ModifierArg, s string) (ArgValue, bool) {
	switch a.Type {
	case ArgTypeNumber:
		n, ok := parseNumber(s)
		if !ok {
			return ArgValue{}, false
		}
		return NumberArg(n), true
	case ArgTypeBoolean:
		b, ok := parseBool(s)
		if !ok {
			return ArgValue{}, false
		}
		return BoolArg(b), true
	case ArgTypeEnum:
		return EnumArg(s), true
	default:
		return TextArg(s), true
	}
}
