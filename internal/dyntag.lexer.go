package internal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	OpenMarker  string // Opening wrapper marker (default: "@tags()")
	CloseMarker string // Closing wrapper marker (default: "@endtags()")
	// AssumeOpen lexes the source as if an open marker had already been
	// consumed. Used to analyze partial expression bodies.
	AssumeOpen bool
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		OpenMarker:  StrOpenMarker,
		CloseMarker: StrCloseMarker,
	}
}

// Lexer converts a stored attribute string into a flat symbol stream.
// It never fails: anything it cannot read as expression syntax is emitted
// as text.
type Lexer struct {
	source  string
	config  LexerConfig
	pos     int // Current byte position
	line    int // Current line (1-indexed)
	column  int // Current column (1-indexed)
	symbols []Symbol
	logger  *zap.Logger
}

// NewLexer creates a new lexer with default configuration
func NewLexer(source string, logger *zap.Logger) *Lexer {
	return NewLexerWithConfig(source, DefaultLexerConfig(), logger)
}

// NewLexerWithConfig creates a lexer with custom configuration
func NewLexerWithConfig(source string, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.OpenMarker == "" {
		config.OpenMarker = StrOpenMarker
	}
	if config.CloseMarker == "" {
		config.CloseMarker = StrCloseMarker
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		config: config,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns the symbol stream, terminated
// by an EOF symbol.
func (l *Lexer) Tokenize() []Symbol {
	l.logger.Debug(LogMsgTokenizerStart)
	l.symbols = l.symbols[:0]
	wrapped := l.config.AssumeOpen

	for !l.isAtEnd() {
		if !wrapped {
			if l.matchStr(l.config.OpenMarker) {
				rest := l.source[l.pos+len(l.config.OpenMarker):]
				if !strings.Contains(rest, l.config.CloseMarker) {
					l.logger.Debug(LogMsgUnclosedWrap, zap.Int(LogFieldOffset, l.pos))
					pos := l.currentPosition()
					l.emitText(l.advanceTo(len(l.source)), pos)
					break
				}
				l.emitFixed(SymbolOpenMarker, l.config.OpenMarker)
				wrapped = true
				continue
			}
			l.scanOuterText()
			continue
		}

		if l.matchStr(l.config.CloseMarker) {
			l.emitFixed(SymbolCloseMarker, l.config.CloseMarker)
			wrapped = false
			continue
		}
		if l.startsExpression() {
			l.scanExpression()
			continue
		}
		l.scanInnerText()
	}

	l.symbols = append(l.symbols, NewSymbol(SymbolEOF, "", l.currentPosition()))
	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldSymbols, len(l.symbols)))
	return l.symbols
}

// scanOuterText scans literal text outside the wrapper up to the next open marker
func (l *Lexer) scanOuterText() {
	pos := l.currentPosition()
	start := l.pos
	for !l.isAtEnd() && !l.matchStr(l.config.OpenMarker) {
		l.advance()
	}
	l.emitText(l.source[start:l.pos], pos)
}

// scanInnerText scans literal text inside the wrapper up to the close marker
// or the start of an expression. A backslash escapes '@', '.' and itself.
func (l *Lexer) scanInnerText() {
	pos := l.currentPosition()
	start := l.pos
	var sb strings.Builder

	for !l.isAtEnd() {
		if l.matchStr(l.config.CloseMarker) || l.startsExpression() {
			break
		}
		if l.peek() == CharBackslash && l.pos+1 < len(l.source) {
			next := l.source[l.pos+1]
			if next == CharAt || next == CharDot || next == CharBackslash {
				l.advance()
				sb.WriteByte(next)
				l.advance()
				continue
			}
		}
		r := l.advance()
		sb.WriteRune(r)
	}

	if l.pos > start {
		l.symbols = append(l.symbols, NewRawSymbol(SymbolText, sb.String(), l.source[start:l.pos], pos))
	}
}

// scanExpression scans `@group(field)` followed by an optional modifier chain.
// It stops at the first character that does not fit the grammar and leaves
// it for the text scanner.
func (l *Lexer) scanExpression() {
	l.emitFixed(SymbolAt, string(CharAt))

	if !l.scanIdent() {
		return
	}
	if l.isAtEnd() || l.peek() != CharLParen {
		return
	}
	l.emitFixed(SymbolGroupOpen, string(CharLParen))

	if !l.scanIdent() {
		return
	}
	if l.isAtEnd() || l.peek() != CharRParen {
		return
	}
	l.emitFixed(SymbolGroupClose, string(CharRParen))

	l.scanChain()
}

// scanChain scans `.modifier(args)` repetitions
func (l *Lexer) scanChain() {
	for !l.isAtEnd() && l.peek() == CharDot {
		next := l.pos + 1
		if next < len(l.source) {
			r, _ := utf8.DecodeRuneInString(l.source[next:])
			if !isIdentStart(r) {
				return
			}
		}
		l.emitFixed(SymbolDot, string(CharDot))
		if !l.scanIdent() {
			return
		}
		if l.isAtEnd() || l.peek() != CharLParen {
			return
		}
		l.emitFixed(SymbolArgsOpen, string(CharLParen))
		if !l.scanArgs() {
			return
		}
	}
}

// scanArgs scans an argument list after its opening paren.
// Returns true when the closing paren was consumed.
func (l *Lexer) scanArgs() bool {
	for {
		triviaPos := l.currentPosition()
		trivia := l.skipWhitespace()

		if l.isAtEnd() || l.matchStr(l.config.CloseMarker) {
			l.emitText(trivia, triviaPos)
			return false
		}

		switch ch := l.peek(); ch {
		case CharRParen:
			l.advance()
			l.symbols = append(l.symbols, NewRawSymbol(SymbolArgsClose, string(CharRParen), trivia+string(CharRParen), triviaPos))
			return true
		case CharComma:
			l.advance()
			l.symbols = append(l.symbols, NewRawSymbol(SymbolComma, string(CharComma), trivia+string(CharComma), triviaPos))
		case CharDoubleQuote, CharSingleQuote:
			if !l.scanQuoted(ch, trivia, triviaPos) {
				l.emitText(trivia, triviaPos)
				return false
			}
		default:
			start := l.pos
			for !l.isAtEnd() {
				c := l.peek()
				if c == CharComma || c == CharRParen || isSpace(c) || l.matchStr(l.config.CloseMarker) {
					break
				}
				l.advance()
			}
			value := l.source[start:l.pos]
			l.symbols = append(l.symbols, NewRawSymbol(SymbolArg, value, trivia+value, triviaPos))
		}
	}
}

// scanQuoted scans a quoted argument. A backslash escapes the quote
// character and itself. Returns false, consuming nothing, when the quote is
// never closed.
func (l *Lexer) scanQuoted(quote byte, trivia string, pos Position) bool {
	end := -1
	for i := l.pos + 1; i < len(l.source); i++ {
		c := l.source[i]
		if c == CharBackslash && i+1 < len(l.source) && (l.source[i+1] == quote || l.source[i+1] == CharBackslash) {
			i++
			continue
		}
		if c == quote {
			end = i
			break
		}
	}
	if end < 0 {
		return false
	}

	var sb strings.Builder
	body := l.source[l.pos+1 : end]
	for i := 0; i < len(body); i++ {
		if body[i] == CharBackslash && i+1 < len(body) && (body[i+1] == quote || body[i+1] == CharBackslash) {
			i++
		}
		sb.WriteByte(body[i])
	}

	raw := l.advanceTo(end + 1)
	l.symbols = append(l.symbols, NewRawSymbol(SymbolString, sb.String(), trivia+raw, pos))
	return true
}

// scanIdent scans an identifier and emits it. Returns false when no
// identifier starts at the current position.
func (l *Lexer) scanIdent() bool {
	if l.isAtEnd() {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	if !isIdentStart(r) {
		return false
	}
	pos := l.currentPosition()
	start := l.pos
	l.advance()
	for !l.isAtEnd() {
		r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.advance()
	}
	l.symbols = append(l.symbols, NewSymbol(SymbolIdent, l.source[start:l.pos], pos))
	return true
}

// startsExpression reports whether an '@' at the current position opens an
// expression: it must be followed by an identifier or sit at end of input.
func (l *Lexer) startsExpression() bool {
	if l.peek() != CharAt {
		return false
	}
	next := l.pos + 1
	if next >= len(l.source) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(l.source[next:])
	return isIdentStart(r)
}

// Helper methods

func (l *Lexer) emitFixed(kind SymbolKind, text string) {
	pos := l.currentPosition()
	l.advanceTo(l.pos + len(text))
	l.symbols = append(l.symbols, NewSymbol(kind, text, pos))
}

func (l *Lexer) emitText(text string, pos Position) {
	if text == "" {
		return
	}
	l.symbols = append(l.symbols, NewSymbol(SymbolText, text, pos))
}

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current byte without advancing
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// advance consumes and returns the current rune
func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	if r == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

// advanceTo advances to the given byte offset and returns the consumed text
func (l *Lexer) advanceTo(offset int) string {
	start := l.pos
	for l.pos < offset && !l.isAtEnd() {
		l.advance()
	}
	return l.source[start:l.pos]
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}

// skipWhitespace skips whitespace and returns what was skipped
func (l *Lexer) skipWhitespace() string {
	start := l.pos
	for !l.isAtEnd() && isSpace(l.peek()) {
		l.advance()
	}
	return l.source[start:l.pos]
}

// Character classification helpers

func isSpace(ch byte) bool {
	return ch == CharSpace || ch == CharTab || ch == CharNewline || ch == CharCarriageRet
}

// IsIdentStart reports whether r may start an identifier
func IsIdentStart(r rune) bool {
	return isIdentStart(r)
}

// IsIdentifier reports whether s is a complete identifier
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
