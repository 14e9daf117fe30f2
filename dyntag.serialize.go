package dyntag

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/itsatony/go-dyntag/internal"
)

// Serialize renders a document in canonical form with the default markers.
// The output is wrapped iff the document holds at least one token; a
// literal-only document serializes to its plain text unless that text
// would itself read as wrapped.
func Serialize(doc *Document) string {
	return serialize(doc, DefaultOpenMarker, DefaultCloseMarker)
}

// FormatToken renders a single token as `@group(field).mod(args)`.
func FormatToken(tok Token) string {
	var sb strings.Builder
	writeToken(&sb, tok)
	return sb.String()
}

// IsActive reports whether s is in dynamic mode with the default markers.
func IsActive(s string) bool {
	return isActive(s, DefaultOpenMarker, DefaultCloseMarker)
}

// Wrap puts x in the default markers. Active strings are returned as is and
// the result never holds the open marker twice. Wrap("") is "".
func Wrap(x string) string {
	return wrap(x, DefaultOpenMarker, DefaultCloseMarker)
}

// Unwrap strips the default markers from an active string. Other strings
// are returned unchanged.
func Unwrap(s string) string {
	return unwrap(s, DefaultOpenMarker, DefaultCloseMarker)
}

func serialize(doc *Document, open, close string) string {
	if doc == nil {
		return ""
	}
	var sb strings.Builder
	if !doc.HasTokens() {
		for _, s := range doc.Segments {
			if lit, ok := s.(*LiteralSegment); ok {
				sb.WriteString(lit.Text)
			}
		}
		text := sb.String()
		if !isActive(text, open, close) {
			return text
		}
		// Text that reads as wrapped is escaped inside a wrapper of its own.
		sb.Reset()
		sb.WriteString(open)
		writeLiteral(&sb, text, false)
		sb.WriteString(close)
		return sb.String()
	}

	sb.WriteString(open)
	afterToken := false
	for _, s := range doc.Segments {
		switch v := s.(type) {
		case *LiteralSegment:
			writeLiteral(&sb, v.Text, afterToken)
			afterToken = false
		case *TokenSegment:
			writeToken(&sb, v.Token)
			afterToken = true
		}
	}
	sb.WriteString(close)
	return sb.String()
}

// writeLiteral escapes text so the lexer reads it back as literal text
// inside a wrapper.
func writeLiteral(sb *strings.Builder, text string, afterToken bool) {
	for i, r := range text {
		switch r {
		case internal.CharBackslash:
			sb.WriteString(`\\`)
		case internal.CharAt:
			next, _ := utf8.DecodeRuneInString(text[i+1:])
			if i+1 < len(text) && internal.IsIdentStart(next) {
				sb.WriteByte(internal.CharBackslash)
			}
			sb.WriteRune(r)
		case internal.CharDot:
			if i == 0 && afterToken {
				sb.WriteByte(internal.CharBackslash)
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
}

func writeToken(sb *strings.Builder, tok Token) {
	sb.WriteByte(internal.CharAt)
	sb.WriteString(tok.Group)
	sb.WriteByte(internal.CharLParen)
	sb.WriteString(tok.Field)
	sb.WriteByte(internal.CharRParen)
	for _, m := range tok.Modifiers {
		sb.WriteByte(internal.CharDot)
		sb.WriteString(m.Key)
		sb.WriteByte(internal.CharLParen)
		for i, a := range m.Args {
			if i > 0 {
				sb.WriteByte(internal.CharComma)
			}
			writeArg(sb, a)
		}
		sb.WriteByte(internal.CharRParen)
	}
}

func writeArg(sb *strings.Builder, a ArgValue) {
	switch a.Kind {
	case ArgKindNumber:
		sb.WriteString(strconv.FormatFloat(a.Number, 'f', -1, 64))
	case ArgKindBoolean:
		sb.WriteString(strconv.FormatBool(a.Bool))
	case ArgKindRaw:
		if !a.Quoted && isBareSafe(a.Text) {
			sb.WriteString(a.Text)
			return
		}
		writeQuoted(sb, a.Text)
	default:
		writeQuoted(sb, a.Text)
	}
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte(internal.CharDoubleQuote)
	for _, r := range s {
		if r == internal.CharDoubleQuote || r == internal.CharBackslash {
			sb.WriteByte(internal.CharBackslash)
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(internal.CharDoubleQuote)
}

// isBareSafe reports whether a raw argument reads back unchanged without quotes.
func isBareSafe(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n,()\"'\\@")
}

func isActive(s, open, close string) bool {
	return strings.HasPrefix(s, open) && strings.Contains(s[len(open):], close)
}

func wrap(x, open, close string) string {
	if x == "" || isActive(x, open, close) {
		return x
	}
	for strings.Contains(x, open) {
		x = strings.ReplaceAll(x, open, "")
	}
	if strings.Contains(x, close) {
		return open + x
	}
	return open + x + close
}

func unwrap(s, open, close string) string {
	if !isActive(s, open, close) {
		return s
	}
	body := s[len(open):]
	// An empty expression keeps its close marker so Wrap can restore it.
	if body != close && strings.Count(body, close) == 1 && strings.HasSuffix(body, close) {
		return body[:len(body)-len(close)]
	}
	return body
}
