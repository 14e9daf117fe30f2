package dyntag

import (
	"github.com/itsatony/go-dyntag/internal"
	"go.uber.org/zap"
)

// Tokenize lexes a stored attribute string with the default markers.
// The result always ends with an EOF symbol.
func Tokenize(raw string) []Symbol {
	return internal.NewLexer(raw, nil).Tokenize()
}

// Parse parses a stored attribute string with the default markers. Strings
// that are not in dynamic mode bypass the lexer and yield a single literal.
// Parse never fails; unknown keys are kept and malformed fragments become
// literal text.
func Parse(raw string, catalog *Catalog, ctx Context) *Document {
	return parseValue(raw, internal.DefaultLexerConfig(), catalog, ctx, nil)
}

// ParseSymbols builds a document from a symbol stream. Modifier arguments
// are typed by the catalog declaration when the modifier is known.
func ParseSymbols(symbols []Symbol, catalog *Catalog, ctx Context) *Document {
	return newParser(symbols, catalog, nil).parse(ctx)
}

func parseValue(raw string, config internal.LexerConfig, catalog *Catalog, ctx Context, logger *zap.Logger) *Document {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !isActive(raw, config.OpenMarker, config.CloseMarker) {
		logger.Debug(LogMsgBypassLiteral, zap.Int(LogFieldSource, len(raw)))
		doc := &Document{Segments: []Segment{}, Context: ctx}
		if raw != "" {
			doc.Segments = append(doc.Segments, &LiteralSegment{Text: raw, Position: Position{Line: 1, Column: 1}})
		}
		return doc
	}
	symbols := internal.NewLexerWithConfig(raw, config, logger).Tokenize()
	return newParser(symbols, catalog, logger).parse(ctx)
}

// parser turns a symbol stream into a Document. It never fails.
type parser struct {
	symbols  []Symbol
	pos      int
	catalog  *Catalog
	segments []Segment
	logger   *zap.Logger
}

func newParser(symbols []Symbol, catalog *Catalog, logger *zap.Logger) *parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &parser{
		symbols:  symbols,
		catalog:  catalog,
		segments: []Segment{},
		logger:   logger,
	}
}

func (p *parser) parse(ctx Context) *Document {
	p.logger.Debug(LogMsgParseStart, zap.Int(LogFieldSource, len(p.symbols)))

	for p.pos < len(p.symbols) {
		sym := p.symbols[p.pos]
		switch sym.Kind {
		case internal.SymbolEOF:
			p.pos = len(p.symbols)
		case internal.SymbolOpenMarker, internal.SymbolCloseMarker:
			p.pos++
		case internal.SymbolText:
			p.addLiteral(sym.Value, sym.Position)
			p.pos++
		case internal.SymbolAt:
			p.parseToken()
		default:
			// A symbol left over from a broken fragment.
			p.addLiteral(sym.Raw, sym.Position)
			p.pos++
		}
	}

	p.logger.Debug(LogMsgParseEnd, zap.Int(LogFieldSegments, len(p.segments)))
	return &Document{Segments: p.segments, Context: ctx}
}

// parseToken parses `@group(field)` and its modifier chain starting at an At
// symbol. On failure the consumed symbols become literal text and the
// offending symbol is left for the main loop.
func (p *parser) parseToken() {
	start := p.pos
	at := p.symbols[start]

	p.pos++
	group, ok := p.expect(internal.SymbolIdent)
	if ok {
		_, ok = p.expect(internal.SymbolGroupOpen)
	}
	var field Symbol
	if ok {
		field, ok = p.expect(internal.SymbolIdent)
	}
	if ok {
		_, ok = p.expect(internal.SymbolGroupClose)
	}
	if !ok {
		p.degrade(start)
		return
	}

	tok := Token{Group: group.Value, Field: field.Value}
	for p.peek().Is(internal.SymbolDot) {
		chainStart := p.pos
		mod, ok := p.parseModifier()
		if !ok {
			p.segments = append(p.segments, &TokenSegment{Token: tok, Position: at.Position})
			p.degrade(chainStart)
			return
		}
		tok.Modifiers = append(tok.Modifiers, mod)
	}
	p.segments = append(p.segments, &TokenSegment{Token: tok, Position: at.Position})
}

// parseModifier parses `.key(args)`.
func (p *parser) parseModifier() (AppliedModifier, bool) {
	dot := p.symbols[p.pos]
	p.pos++
	key, ok := p.expect(internal.SymbolIdent)
	if !ok {
		return AppliedModifier{}, false
	}
	if _, ok := p.expect(internal.SymbolArgsOpen); !ok {
		return AppliedModifier{}, false
	}

	var values []Symbol
	expectValue := true
	commas := 0
	for {
		sym := p.peek()
		switch {
		case sym.Is(internal.SymbolArgsClose) && (!expectValue || commas == 0):
			p.pos++
			def, known := p.catalog.Modifier(key.Value)
			return AppliedModifier{
				Key:      key.Value,
				Args:     convertArgs(values, def, known),
				Position: dot.Position,
			}, true
		case (sym.Is(internal.SymbolString) || sym.Is(internal.SymbolArg)) && expectValue:
			values = append(values, sym)
			expectValue = false
			p.pos++
		case sym.Is(internal.SymbolComma) && !expectValue:
			commas++
			expectValue = true
			p.pos++
		default:
			return AppliedModifier{}, false
		}
	}
}

// convertArgs types argument symbols by the modifier declaration. Values of
// unknown modifiers, undeclared positions and failed conversions stay raw.
func convertArgs(values []Symbol, def Modifier, known bool) []ArgValue {
	if len(values) == 0 {
		return nil
	}
	out := make([]ArgValue, len(values))
	for i, v := range values {
		quoted := v.Is(internal.SymbolString)
		out[i] = RawArg(v.Value, quoted)
		if !known {
			continue
		}
		decl, ok := def.Arg(i)
		if !ok {
			continue
		}
		if typed, ok := convertArg(decl, v.Value); ok {
			out[i] = typed
		}
	}
	return out
}

func (p *parser) expect(kind SymbolKind) (Symbol, bool) {
	sym := p.peek()
	if !sym.Is(kind) {
		return sym, false
	}
	p.pos++
	return sym, true
}

func (p *parser) peek() Symbol {
	if p.pos >= len(p.symbols) {
		return internal.NewSymbol(internal.SymbolEOF, "", Position{})
	}
	return p.symbols[p.pos]
}

// degrade turns the symbols from start up to the current position into
// literal text.
func (p *parser) degrade(start int) {
	if start >= p.pos {
		return
	}
	fragment := internal.JoinRaw(p.symbols[start:p.pos])
	p.logger.Debug(LogMsgFragmentDegraded, zap.String(LogFieldFragment, fragment))
	p.addLiteral(fragment, p.symbols[start].Position)
}

func (p *parser) addLiteral(text string, pos Position) {
	if text == "" {
		return
	}
	if n := len(p.segments); n > 0 {
		if last, ok := p.segments[n-1].(*LiteralSegment); ok {
			last.Text += text
			return
		}
	}
	p.segments = append(p.segments, &LiteralSegment{Text: text, Position: pos})
}
