package dyntag

import (
	"slices"

	"github.com/itsatony/go-dyntag/internal"
)

// Position is a location in a stored attribute string.
type Position = internal.Position

// Symbol is one lexical unit of a stored attribute string.
type Symbol = internal.Symbol

// SymbolKind identifies the kind of a Symbol.
type SymbolKind = internal.SymbolKind

// Context names the kind of subject a control renders against, such as the
// current content item or the site. It restricts which data groups apply.
type Context string

// ReturnType is the type of value a field or modifier produces.
type ReturnType string

// IsValid reports whether t is one of the known return types.
func (t ReturnType) IsValid() bool {
	switch t {
	case ReturnTypeText, ReturnTypeNumber, ReturnTypeDate,
		ReturnTypeBoolean, ReturnTypeImage, ReturnTypeList:
		return true
	default:
		return false
	}
}

// ArgType is the declared type of a modifier argument.
type ArgType string

// IsValid reports whether t is one of the known argument types.
func (t ArgType) IsValid() bool {
	switch t {
	case ArgTypeText, ArgTypeNumber, ArgTypeBoolean, ArgTypeEnum:
		return true
	default:
		return false
	}
}

// Field is a leaf attribute of a data group.
type Field struct {
	Key         string     `yaml:"key" json:"key"`
	Label       string     `yaml:"label,omitempty" json:"label,omitempty"`
	ReturnType  ReturnType `yaml:"type" json:"type"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
}

// Group is a named namespace of fields tied to one kind of contextual
// subject, e.g. the current post or the site.
type Group struct {
	Key         string    `yaml:"key" json:"key"`
	Label       string    `yaml:"label,omitempty" json:"label,omitempty"`
	Icon        string    `yaml:"icon,omitempty" json:"icon,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Contexts    []Context `yaml:"contexts" json:"contexts"`
	Fields      []Field   `yaml:"fields" json:"fields"`
}

// AppliesTo reports whether the group may be referenced in ctx.
func (g Group) AppliesTo(ctx Context) bool {
	return slices.Contains(g.Contexts, ctx)
}

// ModifierArg is a declared parameter of a modifier.
type ModifierArg struct {
	Key         string   `yaml:"key" json:"key"`
	Label       string   `yaml:"label,omitempty" json:"label,omitempty"`
	Type        ArgType  `yaml:"type" json:"type"`
	Required    bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Default     *string  `yaml:"default,omitempty" json:"default,omitempty"`
	Choices     []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// HasDefault reports whether the argument declares a default value.
func (a ModifierArg) HasDefault() bool {
	return a.Default != nil
}

// MustBeSupplied reports whether a chain is incomplete without this argument.
func (a ModifierArg) MustBeSupplied() bool {
	return a.Required && a.Default == nil
}

// Modifier is a named, pure transformation from one of its accepted input
// types to its output type.
type Modifier struct {
	Key         string        `yaml:"key" json:"key"`
	Label       string        `yaml:"label,omitempty" json:"label,omitempty"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Accepts     []ReturnType  `yaml:"accepts" json:"accepts"`
	Output      ReturnType    `yaml:"output" json:"output"`
	Args        []ModifierArg `yaml:"args,omitempty" json:"args,omitempty"`
}

// AcceptsType reports whether the modifier can follow a value of type t.
func (m Modifier) AcceptsType(t ReturnType) bool {
	return slices.Contains(m.Accepts, t)
}

// Arg returns the declared argument at position i.
func (m Modifier) Arg(i int) (ModifierArg, bool) {
	if i < 0 || i >= len(m.Args) {
		return ModifierArg{}, false
	}
	return m.Args[i], true
}

// CatalogDefinition is the serializable description of a catalog. It is the
// format of catalog files and of stored catalogs.
type CatalogDefinition struct {
	Name      string     `yaml:"name,omitempty" json:"name,omitempty"`
	Groups    []Group    `yaml:"groups" json:"groups"`
	Modifiers []Modifier `yaml:"modifiers" json:"modifiers"`
}

// Clone returns a deep copy of the definition.
func (d CatalogDefinition) Clone() CatalogDefinition {
	out := CatalogDefinition{Name: d.Name}
	if d.Groups != nil {
		out.Groups = make([]Group, len(d.Groups))
		for i, g := range d.Groups {
			out.Groups[i] = cloneGroup(g)
		}
	}
	if d.Modifiers != nil {
		out.Modifiers = make([]Modifier, len(d.Modifiers))
		for i, m := range d.Modifiers {
			out.Modifiers[i] = cloneModifier(m)
		}
	}
	return out
}

// StringPtr returns a pointer to s. Handy for ModifierArg.Default.
func StringPtr(s string) *string {
	return &s
}

func cloneGroup(g Group) Group {
	g.Contexts = slices.Clone(g.Contexts)
	g.Fields = slices.Clone(g.Fields)
	return g
}

func cloneArg(a ModifierArg) ModifierArg {
	if a.Default != nil {
		a.Default = StringPtr(*a.Default)
	}
	a.Choices = slices.Clone(a.Choices)
	return a
}

func cloneModifier(m Modifier) Modifier {
	m.Accepts = slices.Clone(m.Accepts)
	m.Args = slices.Clone(m.Args)
	for i := range m.Args {
		m.Args[i] = cloneArg(m.Args[i])
	}
	return m
}
