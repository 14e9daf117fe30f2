package main

// Command names
const (
	CmdNameParse     = "parse"
	CmdNameValidate  = "validate"
	CmdNameFormat    = "format"
	CmdNameSuggest   = "suggest"
	CmdNameWrap      = "wrap"
	CmdNameUnwrap    = "unwrap"
	CmdNameCatalog   = "catalog"
	CmdNameShow      = "show"
	CmdNameReference = "reference"
	CmdNameSave      = "save"
	CmdNameGet       = "get"
	CmdNameList      = "list"
	CmdNameVersion   = "version"
)

// Flag names - long form
const (
	FlagCatalog = "catalog"
	FlagContext = "context"
	FlagFormat  = "format"
	FlagVerbose = "verbose"
	FlagValue   = "value"
	FlagCursor  = "cursor"
	FlagHTML    = "html"
	FlagDriver  = "driver"
	FlagDSN     = "dsn"
	FlagName    = "name"
	FlagVersion = "version"
	FlagAuthor  = "author"
	FlagStrict  = "strict"
)

// Flag names - short form
const (
	FlagCatalogShort = "c"
	FlagContextShort = "x"
	FlagFormatShort  = "F"
	FlagVerboseShort = "v"
	FlagValueShort   = "e"
	FlagNameShort    = "n"
)

// Flag default values
const (
	FlagDefaultFormat = OutputFormatText
	FlagDefaultDriver = "filesystem"
	FlagDefaultCursor = -1
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgReadInputFailed   = "failed to read input"
	ErrMsgTooManyInputs     = "give either a file argument or --value, not both"
	ErrMsgLoadCatalogFailed = "failed to load catalog"
	ErrMsgEngineFailed      = "failed to create engine"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgCursorOutOfRange  = "cursor out of range"
	ErrMsgStorageFailed     = "catalog storage failed"
	ErrMsgMissingName       = "catalog name required"
	ErrMsgMissingDSN        = "storage connection string required"
)

// Text output
const (
	ValidationTextSuccess     = "Expression is valid"
	ValidationTextIssueHeader = "Validation issues:"
	ValidationTextIssueFormat = "  [%s] %s at line %d, column %d"
	ValidationTextSummary     = "%d issue(s)"
	ParseTextLiteralFormat    = "literal %d:%d %q"
	ParseTextTokenFormat      = "token   %d:%d %s"
	ParseTextResolvedFormat   = "        = %s"
	SuggestTextHeader         = "Suggestions (%s):"
	SuggestTextItemFormat     = "  %s\t%s"
	SuggestTextArgFormat      = "  %s (%s)%s"
	SavedTextFormat           = "saved %s v%d (%s)"
	VersionTextTemplate       = "go-dyntag version %s\nGo: %s"
	VersionUnknown            = "unknown"
)

// CLI metadata
const (
	CLIName        = "dyntag"
	CLIDescription = "Parse, validate and build dynamic tag expressions"
	ModulePath     = "github.com/itsatony/go-dyntag"
)

// Format string constants
const (
	FmtErrorWithCause = "%s: %v\n"
	FmtNewline        = "\n"
)
