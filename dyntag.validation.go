package dyntag

import (
	"fmt"
	"slices"

	"github.com/itsatony/go-dyntag/internal"
)

// DiagnosticKind classifies a validation finding.
type DiagnosticKind string

// Diagnostic kinds
const (
	DiagUnknownGroup                DiagnosticKind = "UnknownGroup"
	DiagUnknownField                DiagnosticKind = "UnknownField"
	DiagGroupNotApplicableInContext DiagnosticKind = "GroupNotApplicableInContext"
	DiagUnknownModifier             DiagnosticKind = "UnknownModifier"
	DiagModifierTypeMismatch        DiagnosticKind = "ModifierTypeMismatch"
	DiagMissingRequiredArgument     DiagnosticKind = "MissingRequiredArgument"
	DiagInvalidArgument             DiagnosticKind = "InvalidArgument"
)

// NoModifier is the ModifierIndex of diagnostics about the group or field.
const NoModifier = -1

// Diagnostic is one advisory validation finding. Diagnostics never block
// serialization or commit.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	// SegmentIndex is the index of the token segment in the document.
	SegmentIndex int `json:"segment"`
	// ModifierIndex is the position in the chain, or NoModifier.
	ModifierIndex int `json:"modifier"`
	// Subject is the offending key: group, field, modifier or argument.
	Subject     string   `json:"subject"`
	Suggestions []string `json:"suggestions,omitempty"`
	Position    Position `json:"-"`
}

// String returns a human-readable form of the diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s '%s'%s", d.Kind, d.Message, d.Subject, internal.FormatSuggestions(d.Suggestions))
}

// Validate checks every token of doc against the catalog in ctx. The
// result is ordered by segment, then by chain position, and is empty (not
// nil) for a clean document.
func Validate(doc *Document, catalog *Catalog, ctx Context) []Diagnostic {
	diags := []Diagnostic{}
	if doc == nil {
		return diags
	}
	for i, s := range doc.Segments {
		ts, ok := s.(*TokenSegment)
		if !ok {
			continue
		}
		diags = validateToken(diags, i, ts, catalog, ctx)
	}
	return diags
}

// validateToken type-threads one token. An unknown running type (after an
// unknown group, field or modifier) suppresses type checks until a known
// modifier sets it again.
func validateToken(diags []Diagnostic, index int, ts *TokenSegment, catalog *Catalog, ctx Context) []Diagnostic {
	tok := ts.Token
	add := func(kind DiagnosticKind, msg string, mod int, subject string, suggestions []string, pos Position) {
		diags = append(diags, Diagnostic{
			Kind:          kind,
			Message:       msg,
			SegmentIndex:  index,
			ModifierIndex: mod,
			Subject:       subject,
			Suggestions:   suggestions,
			Position:      pos,
		})
	}

	var running ReturnType
	group, ok := catalog.Group(tok.Group)
	switch {
	case !ok:
		add(DiagUnknownGroup, DiagMsgUnknownGroup, NoModifier, tok.Group,
			internal.FindSimilarStrings(tok.Group, groupKeysFor(catalog, ctx), internal.DefaultMaxSuggestions), ts.Position)
	default:
		if !group.AppliesTo(ctx) {
			add(DiagGroupNotApplicableInContext, DiagMsgGroupNotApplicable, NoModifier, tok.Group, nil, ts.Position)
		}
		if field, ok := catalog.Field(tok.Group, tok.Field); ok {
			running = field.ReturnType
		} else {
			add(DiagUnknownField, DiagMsgUnknownField, NoModifier, tok.Group+"."+tok.Field,
				internal.FindSimilarStrings(tok.Field, catalog.fieldKeys(tok.Group), internal.DefaultMaxSuggestions), ts.Position)
		}
	}

	for mi, applied := range tok.Modifiers {
		mod, ok := catalog.Modifier(applied.Key)
		if !ok {
			add(DiagUnknownModifier, DiagMsgUnknownModifier, mi, applied.Key,
				internal.FindSimilarStrings(applied.Key, catalog.modifierKeys(), internal.DefaultMaxSuggestions), applied.Position)
			running = ""
			continue
		}
		if running != "" && !mod.AcceptsType(running) {
			add(DiagModifierTypeMismatch, fmt.Sprintf("%s (%s)", DiagMsgModifierTypeMismatch, running), mi, applied.Key,
				modifierKeysFor(catalog, running, applied.Key), applied.Position)
		}
		for _, d := range checkArgs(applied, mod) {
			add(DiagInvalidArgument, d.msg, mi, d.subject, d.suggestions, applied.Position)
		}
		for ai := len(applied.Args); ai < len(mod.Args); ai++ {
			if mod.Args[ai].MustBeSupplied() {
				add(DiagMissingRequiredArgument, DiagMsgMissingArgument, mi, applied.Key+"."+mod.Args[ai].Key, nil, applied.Position)
			}
		}
		running = mod.Output
	}
	return diags
}

type argFinding struct {
	msg         string
	subject     string
	suggestions []string
}

// checkArgs reports arguments that do not fit their declaration.
func checkArgs(applied AppliedModifier, mod Modifier) []argFinding {
	var out []argFinding
	for i, v := range applied.Args {
		decl, ok := mod.Arg(i)
		if !ok {
			out = append(out, argFinding{msg: DiagMsgTooManyArguments, subject: applied.Key})
			break
		}
		subject := applied.Key + "." + decl.Key
		switch decl.Type {
		case ArgTypeNumber:
			if v.Kind != ArgKindNumber {
				out = append(out, argFinding{msg: DiagMsgInvalidNumber, subject: subject})
			}
		case ArgTypeBoolean:
			if v.Kind != ArgKindBoolean {
				out = append(out, argFinding{msg: DiagMsgInvalidBoolean, subject: subject})
			}
		case ArgTypeEnum:
			if !slices.Contains(decl.Choices, v.String()) {
				out = append(out, argFinding{
					msg:         DiagMsgInvalidChoice,
					subject:     subject,
					suggestions: internal.FindSimilarStrings(v.String(), decl.Choices, internal.DefaultMaxSuggestions),
				})
			}
		}
	}
	return out
}

// groupKeysFor lists groups applicable in ctx, falling back to every group.
func groupKeysFor(catalog *Catalog, ctx Context) []string {
	groups := catalog.GroupsFor(ctx)
	if len(groups) == 0 {
		return catalog.groupKeys()
	}
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

// modifierKeysFor suggests modifiers that accept rt and resemble key.
func modifierKeysFor(catalog *Catalog, rt ReturnType, key string) []string {
	mods := catalog.ModifiersFor(rt)
	keys := make([]string, len(mods))
	for i, m := range mods {
		keys[i] = m.Key
	}
	return internal.FindSimilarStrings(key, keys, internal.DefaultMaxSuggestions)
}
