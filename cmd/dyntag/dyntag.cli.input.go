package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// addValueFlag registers the inline --value flag on cmd
func addValueFlag(cmd *cobra.Command, value *string) {
	cmd.Flags().StringVarP(value, FlagValue, FlagValueShort, "", "expression given inline instead of a file")
}

// readExpression returns the inline value, or the content of the file
// argument ("-" or no argument reads stdin). A single trailing newline from
// files is dropped.
func (s *cliState) readExpression(cmd *cobra.Command, args []string, value string) (string, error) {
	if cmd.Flags().Changed(FlagValue) {
		if len(args) > 0 {
			return "", fail(ExitCodeUsageError, ErrMsgTooManyInputs, nil)
		}
		return value, nil
	}

	path := InputSourceStdin
	if len(args) > 0 {
		path = args[0]
	}
	data, err := readInput(path, s.stdin)
	if err != nil {
		return "", fail(ExitCodeInputError, ErrMsgReadInputFailed, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		if stdin == nil {
			return nil, errors.New(ErrMsgReadInputFailed)
		}
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeStructured writes v as indented JSON or YAML
func writeStructured(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	if format == OutputFormatYAML {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	if _, err := w.Write(data); err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
