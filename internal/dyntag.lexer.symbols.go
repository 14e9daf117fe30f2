package internal

import "fmt"

// Position represents a location in the source string
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Symbol is a lexical unit produced by the lexer.
//
// Raw always holds the exact source bytes the symbol was built from, including
// whitespace skipped in front of it, so any run of symbols can be turned back
// into literal text without losing characters.
type Symbol struct {
	Kind     SymbolKind
	Value    string // Decoded value (identifier name, unescaped string content)
	Raw      string
	Position Position
}

// String returns a human-readable representation of the symbol
func (s Symbol) String() string {
	if s.Value == "" {
		return fmt.Sprintf("Symbol{%s @ %s}", s.Kind, s.Position)
	}
	return fmt.Sprintf("Symbol{%s: %q @ %s}", s.Kind, s.Value, s.Position)
}

// IsEOF returns true if this is the end-of-input symbol
func (s Symbol) IsEOF() bool {
	return s.Kind == SymbolEOF
}

// Is reports whether the symbol has the given kind
func (s Symbol) Is(kind SymbolKind) bool {
	return s.Kind == kind
}

// NewSymbol creates a symbol whose raw text equals its value
func NewSymbol(kind SymbolKind, value string, pos Position) Symbol {
	return Symbol{Kind: kind, Value: value, Raw: value, Position: pos}
}

// NewRawSymbol creates a symbol with separate decoded and raw text
func NewRawSymbol(kind SymbolKind, value, raw string, pos Position) Symbol {
	return Symbol{Kind: kind, Value: value, Raw: raw, Position: pos}
}

// JoinRaw concatenates the raw text of the given symbols
func JoinRaw(symbols []Symbol) string {
	n := 0
	for _, s := range symbols {
		n += len(s.Raw)
	}
	buf := make([]byte, 0, n)
	for _, s := range symbols {
		buf = append(buf, s.Raw...)
	}
	return string(buf)
}
