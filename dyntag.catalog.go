package dyntag

import (
	"math"
	"slices"
	"strconv"

	"github.com/itsatony/go-dyntag/internal"
)

// Catalog is the registry of data groups, fields and modifiers available to
// the engine. It is immutable after construction and safe for concurrent
// reads. A nil *Catalog behaves as an empty catalog.
type Catalog struct {
	name          string
	groups        []Group
	groupIndex    map[string]int
	fieldIndex    map[string]map[string]int
	modifiers     []Modifier
	modifierIndex map[string]int
	contexts      []Context
}

// NewCatalog validates def and builds a catalog from it. The definition is
// copied; later changes to def do not affect the catalog.
func NewCatalog(def CatalogDefinition) (*Catalog, error) {
	c := &Catalog{
		name:          def.Name,
		groups:        make([]Group, 0, len(def.Groups)),
		groupIndex:    make(map[string]int, len(def.Groups)),
		fieldIndex:    make(map[string]map[string]int, len(def.Groups)),
		modifiers:     make([]Modifier, 0, len(def.Modifiers)),
		modifierIndex: make(map[string]int, len(def.Modifiers)),
	}

	for _, g := range def.Groups {
		if err := c.addGroup(cloneGroup(g)); err != nil {
			return nil, err
		}
	}
	for _, m := range def.Modifiers {
		if err := c.addModifier(cloneModifier(m)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCatalog builds a catalog and panics if the definition is invalid.
func MustNewCatalog(def CatalogDefinition) *Catalog {
	c, err := NewCatalog(def)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) addGroup(g Group) error {
	if err := checkKey(g.Key, MetaKeyGroup); err != nil {
		return err
	}
	if _, exists := c.groupIndex[g.Key]; exists {
		return NewCatalogDefinitionError(ErrMsgDuplicateGroup, MetaKeyGroup, g.Key)
	}

	fields := make(map[string]int, len(g.Fields))
	for i, f := range g.Fields {
		subject := g.Key + "." + f.Key
		if err := checkKey(f.Key, MetaKeyField); err != nil {
			return err
		}
		if _, exists := fields[f.Key]; exists {
			return NewCatalogDefinitionError(ErrMsgDuplicateField, MetaKeyField, subject)
		}
		if !f.ReturnType.IsValid() {
			return NewCatalogDefinitionError(ErrMsgUnknownReturnType, MetaKeyField, subject)
		}
		fields[f.Key] = i
	}

	for _, ctx := range g.Contexts {
		if !slices.Contains(c.contexts, ctx) {
			c.contexts = append(c.contexts, ctx)
		}
	}

	c.groupIndex[g.Key] = len(c.groups)
	c.fieldIndex[g.Key] = fields
	c.groups = append(c.groups, g)
	return nil
}

func (c *Catalog) addModifier(m Modifier) error {
	if err := checkKey(m.Key, MetaKeyModifier); err != nil {
		return err
	}
	if _, exists := c.modifierIndex[m.Key]; exists {
		return NewCatalogDefinitionError(ErrMsgDuplicateModifier, MetaKeyModifier, m.Key)
	}
	if len(m.Accepts) == 0 {
		return NewCatalogDefinitionError(ErrMsgNoAcceptedTypes, MetaKeyModifier, m.Key)
	}
	for _, t := range m.Accepts {
		if !t.IsValid() {
			return NewCatalogDefinitionError(ErrMsgUnknownReturnType, MetaKeyModifier, m.Key)
		}
	}
	if !m.Output.IsValid() {
		return NewCatalogDefinitionError(ErrMsgUnknownReturnType, MetaKeyModifier, m.Key)
	}

	seen := make(map[string]bool, len(m.Args))
	for _, a := range m.Args {
		subject := m.Key + "." + a.Key
		if err := checkKey(a.Key, MetaKeyArgument); err != nil {
			return err
		}
		if seen[a.Key] {
			return NewCatalogDefinitionError(ErrMsgDuplicateArgument, MetaKeyArgument, subject)
		}
		seen[a.Key] = true
		if err := checkArg(a, subject); err != nil {
			return err
		}
	}

	c.modifierIndex[m.Key] = len(c.modifiers)
	c.modifiers = append(c.modifiers, m)
	return nil
}

func checkKey(key, metaKey string) error {
	if key == "" {
		return NewCatalogDefinitionError(ErrMsgEmptyKey, metaKey, key)
	}
	if !internal.IsIdentifier(key) {
		return NewCatalogDefinitionError(ErrMsgInvalidKey, metaKey, key)
	}
	return nil
}

func checkArg(a ModifierArg, subject string) error {
	if !a.Type.IsValid() {
		return NewCatalogDefinitionError(ErrMsgUnknownArgType, MetaKeyArgument, subject)
	}
	if a.Type == ArgTypeEnum && len(a.Choices) == 0 {
		return NewCatalogDefinitionError(ErrMsgEnumWithoutChoices, MetaKeyArgument, subject)
	}
	if a.Default == nil {
		return nil
	}
	switch a.Type {
	case ArgTypeNumber:
		if _, ok := parseNumber(*a.Default); !ok {
			return NewCatalogDefinitionError(ErrMsgDefaultNotConvertible, MetaKeyArgument, subject)
		}
	case ArgTypeBoolean:
		if _, ok := parseBool(*a.Default); !ok {
			return NewCatalogDefinitionError(ErrMsgDefaultNotConvertible, MetaKeyArgument, subject)
		}
	case ArgTypeEnum:
		if !slices.Contains(a.Choices, *a.Default) {
			return NewCatalogDefinitionError(ErrMsgDefaultNotInChoices, MetaKeyArgument, subject)
		}
	}
	return nil
}

// Name returns the catalog name, if the definition had one.
func (c *Catalog) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// GroupsFor returns, in catalog order, the groups that may be referenced in
// ctx. Unknown contexts yield an empty list.
func (c *Catalog) GroupsFor(ctx Context) []Group {
	if c == nil {
		return []Group{}
	}
	out := make([]Group, 0, len(c.groups))
	for _, g := range c.groups {
		if g.AppliesTo(ctx) {
			out = append(out, cloneGroup(g))
		}
	}
	return out
}

// FieldsFor returns the fields of the group in catalog order. Unknown groups
// yield an empty list.
func (c *Catalog) FieldsFor(groupKey string) []Field {
	g, ok := c.Group(groupKey)
	if !ok || g.Fields == nil {
		return []Field{}
	}
	return g.Fields
}

// ModifiersFor returns, in catalog order, the modifiers that accept a value
// of type rt.
func (c *Catalog) ModifiersFor(rt ReturnType) []Modifier {
	if c == nil {
		return []Modifier{}
	}
	out := make([]Modifier, 0, len(c.modifiers))
	for _, m := range c.modifiers {
		if m.AcceptsType(rt) {
			out = append(out, cloneModifier(m))
		}
	}
	return out
}

// Group looks up a group by key.
func (c *Catalog) Group(key string) (Group, bool) {
	if c == nil {
		return Group{}, false
	}
	i, ok := c.groupIndex[key]
	if !ok {
		return Group{}, false
	}
	return cloneGroup(c.groups[i]), true
}

// Field looks up a field of a group.
func (c *Catalog) Field(groupKey, fieldKey string) (Field, bool) {
	if c == nil {
		return Field{}, false
	}
	gi, ok := c.groupIndex[groupKey]
	if !ok {
		return Field{}, false
	}
	fi, ok := c.fieldIndex[groupKey][fieldKey]
	if !ok {
		return Field{}, false
	}
	return c.groups[gi].Fields[fi], true
}

// Modifier looks up a modifier by key.
func (c *Catalog) Modifier(key string) (Modifier, bool) {
	if c == nil {
		return Modifier{}, false
	}
	i, ok := c.modifierIndex[key]
	if !ok {
		return Modifier{}, false
	}
	return cloneModifier(c.modifiers[i]), true
}

// Groups returns every group in catalog order.
func (c *Catalog) Groups() []Group {
	if c == nil {
		return []Group{}
	}
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = cloneGroup(g)
	}
	return out
}

// Modifiers returns every modifier in catalog order.
func (c *Catalog) Modifiers() []Modifier {
	if c == nil {
		return []Modifier{}
	}
	out := make([]Modifier, len(c.modifiers))
	for i, m := range c.modifiers {
		out[i] = cloneModifier(m)
	}
	return out
}

// Contexts returns every context named by at least one group, in order of
// first appearance.
func (c *Catalog) Contexts() []Context {
	if c == nil {
		return []Context{}
	}
	return slices.Clone(c.contexts)
}

// Definition returns a copy of the definition the catalog was built from.
func (c *Catalog) Definition() CatalogDefinition {
	return CatalogDefinition{
		Name:      c.Name(),
		Groups:    c.Groups(),
		Modifiers: c.Modifiers(),
	}
}

func (c *Catalog) groupKeys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.groups))
	for i, g := range c.groups {
		keys[i] = g.Key
	}
	return keys
}

func (c *Catalog) fieldKeys(groupKey string) []string {
	fields := c.FieldsFor(groupKey)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

func (c *Catalog) modifierKeys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.modifiers))
	for i, m := range c.modifiers {
		keys[i] = m.Key
	}
	return keys
}

// parseNumber converts an argument literal to a finite number.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseBool accepts exactly "true" or "false".
func parseBool(s string) (bool, bool) {
	switch s {
	case BoolLiteralTrue:
		return true, true
	case BoolLiteralFalse:
		return false, true
	default:
		return false, false
	}
}
