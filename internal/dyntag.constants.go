package internal

// SymbolKind identifies the kind of a lexical symbol
type SymbolKind string

// Symbol kind constants
const (
	SymbolText        SymbolKind = "TEXT"
	SymbolOpenMarker  SymbolKind = "OPEN_MARKER"
	SymbolCloseMarker SymbolKind = "CLOSE_MARKER"
	SymbolAt          SymbolKind = "AT"
	SymbolIdent       SymbolKind = "IDENT"
	SymbolGroupOpen   SymbolKind = "GROUP_OPEN"
	SymbolGroupClose  SymbolKind = "GROUP_CLOSE"
	SymbolDot         SymbolKind = "DOT"
	SymbolArgsOpen    SymbolKind = "ARGS_OPEN"
	SymbolArgsClose   SymbolKind = "ARGS_CLOSE"
	SymbolComma       SymbolKind = "COMMA"
	SymbolString      SymbolKind = "STRING"
	SymbolArg         SymbolKind = "ARG"
	SymbolEOF         SymbolKind = "EOF"
)

// Character constants
const (
	CharAt          = '@'
	CharDot         = '.'
	CharLParen      = '('
	CharRParen      = ')'
	CharComma       = ','
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
)

// Default wrapper markers
const (
	StrOpenMarker  = "@tags()"
	StrCloseMarker = "@endtags()"
)

// Log message constants
const (
	LogMsgLexerCreated   = "lexer created"
	LogMsgTokenizerStart = "starting tokenization"
	LogMsgTokenizerEnd   = "tokenization complete"
	LogMsgUnclosedWrap   = "open marker without close marker, treating remainder as literal"
)

// Log field names
const (
	LogFieldSource  = "source_length"
	LogFieldSymbols = "symbol_count"
	LogFieldOffset  = "offset"
)

// Suggestion defaults
const (
	DefaultMaxSuggestions = 3
)
