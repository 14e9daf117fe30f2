package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/itsatony/go-dyntag"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// exitError carries an exit code out of a command
type exitError struct {
	code  int
	msg   string
	cause error
}

func (e *exitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *exitError) Unwrap() error {
	return e.cause
}

func fail(code int, msg string, cause error) error {
	return &exitError{code: code, msg: msg, cause: cause}
}

// cliState holds the global flags and the engine built from them
type cliState struct {
	catalogPath string
	context     string
	format      string
	verbose     bool

	stdin  io.Reader
	stderr io.Writer
	engine *dyntag.Engine
	logger *zap.Logger
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	state := &cliState{stdin: stdin, stderr: stderr}
	root := newRootCmd(state)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if state.logger != nil {
		_ = state.logger.Sync()
	}
	if err == nil {
		return ExitCodeSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(stderr, "%s\n", ee.Error())
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "%v\n", err)
	return ExitCodeUsageError
}

func newRootCmd(state *cliState) *cobra.Command {
	root := &cobra.Command{
		Use:           CLIName,
		Short:         CLIDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&state.catalogPath, FlagCatalog, FlagCatalogShort, "", "catalog file (.yaml, .hcl or .json); default: built-in catalog")
	flags.StringVarP(&state.context, FlagContext, FlagContextShort, string(dyntag.ContextContent), "context the expression renders in")
	flags.StringVarP(&state.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	flags.BoolVarP(&state.verbose, FlagVerbose, FlagVerboseShort, false, "log debug output to stderr")

	root.AddCommand(
		newParseCmd(state),
		newValidateCmd(state),
		newFormatCmd(state),
		newSuggestCmd(state),
		newWrapCmd(state),
		newUnwrapCmd(state),
		newCatalogCmd(state),
		newVersionCmd(state),
	)
	return root
}

// setup validates the global flags and builds the engine
func (s *cliState) setup() error {
	if s.format != OutputFormatText && s.format != OutputFormatJSON && s.format != OutputFormatYAML {
		return fail(ExitCodeUsageError, ErrMsgInvalidFormat, errors.New(s.format))
	}

	s.logger = zap.NewNop()
	if s.verbose {
		s.logger = newDevelopmentLogger(s.stderr)
	}

	opts := []dyntag.Option{dyntag.WithLogger(s.logger)}
	if s.catalogPath != "" {
		catalog, err := dyntag.LoadCatalog(s.catalogPath)
		if err != nil {
			return fail(ExitCodeInputError, ErrMsgLoadCatalogFailed, err)
		}
		s.logger.Debug(dyntag.LogMsgCatalogLoaded,
			zap.String(dyntag.LogFieldPath, s.catalogPath),
			zap.String(dyntag.LogFieldCatalog, catalog.Name()))
		opts = append(opts, dyntag.WithCatalog(catalog))
	}

	engine, err := dyntag.New(opts...)
	if err != nil {
		return fail(ExitCodeError, ErrMsgEngineFailed, err)
	}
	s.engine = engine
	return nil
}

// newDevelopmentLogger logs debug output in zap's development format to w
func newDevelopmentLogger(w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core, zap.Development())
}

func (s *cliState) ctx() dyntag.Context {
	return dyntag.Context(s.context)
}
