package main

import (
	"fmt"
	"strings"

	"github.com/itsatony/go-dyntag"
	"github.com/spf13/cobra"
)

// segmentOutput is the structured view of one document segment
type segmentOutput struct {
	Type   string        `json:"type" yaml:"type"`
	Text   string        `json:"text,omitempty" yaml:"text,omitempty"`
	Token  *dyntag.Token `json:"token,omitempty" yaml:"token,omitempty"`
	Source string        `json:"source,omitempty" yaml:"source,omitempty"`
	Line   int           `json:"line" yaml:"line"`
	Column int           `json:"column" yaml:"column"`
	// Resolved is the token with declared argument defaults filled in.
	Resolved string `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

type parseOutput struct {
	Active   bool            `json:"active" yaml:"active"`
	Context  string          `json:"context" yaml:"context"`
	Segments []segmentOutput `json:"segments" yaml:"segments"`
}

type diagnosticOutput struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Message     string   `json:"message" yaml:"message"`
	Subject     string   `json:"subject" yaml:"subject"`
	Segment     int      `json:"segment" yaml:"segment"`
	Modifier    int      `json:"modifier" yaml:"modifier"`
	Line        int      `json:"line" yaml:"line"`
	Column      int      `json:"column" yaml:"column"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

type validationOutput struct {
	Valid  bool               `json:"valid" yaml:"valid"`
	Issues []diagnosticOutput `json:"issues" yaml:"issues"`
}

func newParseCmd(s *cliState) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   CmdNameParse + " [file]",
		Short: "Show the segments of a stored expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.readExpression(cmd, args, value)
			if err != nil {
				return err
			}
			doc := s.engine.Parse(raw, s.ctx())

			out := parseOutput{
				Active:   s.engine.IsActive(raw),
				Context:  s.context,
				Segments: make([]segmentOutput, 0, len(doc.Segments)),
			}
			for _, seg := range doc.Segments {
				pos := seg.Pos()
				so := segmentOutput{Line: pos.Line, Column: pos.Column}
				switch v := seg.(type) {
				case *dyntag.LiteralSegment:
					so.Type = "literal"
					so.Text = v.Text
				case *dyntag.TokenSegment:
					tok := v.Token
					so.Type = "token"
					so.Token = &tok
					so.Source = dyntag.FormatToken(tok)
					so.Resolved = dyntag.FormatToken(tok.WithDefaults(s.engine.Catalog()))
				}
				out.Segments = append(out.Segments, so)
			}

			if s.format != OutputFormatText {
				return writeStructured(cmd.OutOrStdout(), s.format, out)
			}
			w := cmd.OutOrStdout()
			for _, so := range out.Segments {
				if so.Type == "literal" {
					fmt.Fprintf(w, ParseTextLiteralFormat+FmtNewline, so.Line, so.Column, so.Text)
				} else {
					fmt.Fprintf(w, ParseTextTokenFormat+FmtNewline, so.Line, so.Column, so.Source)
					if so.Resolved != so.Source {
						fmt.Fprintf(w, ParseTextResolvedFormat+FmtNewline, so.Resolved)
					}
				}
			}
			return nil
		},
	}
	addValueFlag(cmd, &value)
	return cmd
}

func newValidateCmd(s *cliState) *cobra.Command {
	var (
		value  string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   CmdNameValidate + " [file]",
		Short: "Check an expression against the catalog",
		Long: "Check an expression against the catalog. Diagnostics are advisory: " +
			"the exit code is non-zero only with --strict.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.readExpression(cmd, args, value)
			if err != nil {
				return err
			}
			_, diags := s.engine.Check(raw, s.ctx())

			out := validationOutput{Valid: len(diags) == 0, Issues: make([]diagnosticOutput, 0, len(diags))}
			for _, d := range diags {
				out.Issues = append(out.Issues, diagnosticOutput{
					Kind:        string(d.Kind),
					Message:     d.Message,
					Subject:     d.Subject,
					Segment:     d.SegmentIndex,
					Modifier:    d.ModifierIndex,
					Line:        d.Position.Line,
					Column:      d.Position.Column,
					Suggestions: d.Suggestions,
				})
			}

			w := cmd.OutOrStdout()
			if s.format != OutputFormatText {
				if err := writeStructured(w, s.format, out); err != nil {
					return err
				}
			} else if out.Valid {
				fmt.Fprintln(w, ValidationTextSuccess)
			} else {
				fmt.Fprintln(w, ValidationTextIssueHeader)
				for _, d := range diags {
					fmt.Fprintf(w, ValidationTextIssueFormat+FmtNewline,
						d.Kind, d.String(), d.Position.Line, d.Position.Column)
				}
				fmt.Fprintf(w, ValidationTextSummary+FmtNewline, len(diags))
			}

			if strict && !out.Valid {
				return fail(ExitCodeValidationError, "", nil)
			}
			return nil
		},
	}
	addValueFlag(cmd, &value)
	cmd.Flags().BoolVar(&strict, FlagStrict, false, "exit with status 3 when there are diagnostics")
	return cmd
}

func newFormatCmd(s *cliState) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   CmdNameFormat + " [file]",
		Short: "Rewrite an expression in canonical form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.readExpression(cmd, args, value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.engine.Format(raw, s.ctx()))
			return nil
		},
	}
	addValueFlag(cmd, &value)
	return cmd
}

func newWrapCmd(s *cliState) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   CmdNameWrap + " [file]",
		Short: "Put text in the expression markers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.readExpression(cmd, args, value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.engine.Wrap(raw))
			return nil
		},
	}
	addValueFlag(cmd, &value)
	return cmd
}

func newUnwrapCmd(s *cliState) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   CmdNameUnwrap + " [file]",
		Short: "Strip the expression markers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.readExpression(cmd, args, value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.engine.Unwrap(raw))
			return nil
		},
	}
	addValueFlag(cmd, &value)
	return cmd
}

func newSuggestCmd(s *cliState) *cobra.Command {
	var (
		value  string
		cursor int
	)
	cmd := &cobra.Command{
		Use:   CmdNameSuggest + " [file]",
		Short: "List what may be typed at a cursor position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := s.readExpression(cmd, args, value)
			if err != nil {
				return err
			}
			if cursor == FlagDefaultCursor {
				cursor = len(raw)
			}
			if cursor < 0 || cursor > len(raw) {
				return fail(ExitCodeUsageError, ErrMsgCursorOutOfRange, fmt.Errorf("%d", cursor))
			}
			sugg := s.engine.SuggestFor(raw[:cursor], s.ctx())

			w := cmd.OutOrStdout()
			if s.format != OutputFormatText {
				return writeStructured(w, s.format, sugg)
			}
			fmt.Fprintf(w, SuggestTextHeader+FmtNewline, sugg.Kind)
			for _, g := range sugg.Groups {
				fmt.Fprintf(w, SuggestTextItemFormat+FmtNewline, g.Key, g.Label)
			}
			for _, f := range sugg.Fields {
				fmt.Fprintf(w, SuggestTextItemFormat+FmtNewline, f.Key, f.ReturnType)
			}
			for _, m := range sugg.Modifiers {
				fmt.Fprintf(w, SuggestTextItemFormat+FmtNewline, m.Key, m.Label)
			}
			if a := sugg.Argument; a != nil {
				choices := ""
				if len(a.Choices) > 0 {
					choices = ": " + strings.Join(a.Choices, ", ")
				}
				fmt.Fprintf(w, SuggestTextArgFormat+FmtNewline, a.Key, a.Type, choices)
			}
			return nil
		},
	}
	addValueFlag(cmd, &value)
	cmd.Flags().IntVar(&cursor, FlagCursor, FlagDefaultCursor, "byte offset of the cursor (default: end of input)")
	return cmd
}
