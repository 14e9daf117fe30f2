package dyntag

import (
	"sync"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopDefinition() CatalogDefinition {
	return CatalogDefinition{
		Name: "shop",
		Groups: []Group{
			{
				Key:      "product",
				Label:    "Product",
				Contexts: []Context{"content"},
				Fields: []Field{
					{Key: "name", ReturnType: ReturnTypeText},
					{Key: "price", ReturnType: ReturnTypeNumber},
				},
			},
			{
				Key:      "store",
				Contexts: []Context{"content", "site"},
				Fields: []Field{
					{Key: "opened", ReturnType: ReturnTypeDate},
				},
			},
		},
		Modifiers: []Modifier{
			{
				Key: "round", Accepts: []ReturnType{ReturnTypeNumber}, Output: ReturnTypeNumber,
				Args: []ModifierArg{{Key: "precision", Type: ArgTypeNumber, Default: StringPtr("2")}},
			},
			{Key: "upper", Accepts: []ReturnType{ReturnTypeText}, Output: ReturnTypeText},
		},
	}
}

func TestNewCatalog_Lookups(t *testing.T) {
	c, err := NewCatalog(shopDefinition())
	require.NoError(t, err)

	assert.Equal(t, "shop", c.Name())

	t.Run("groups for context keep catalog order", func(t *testing.T) {
		groups := c.GroupsFor("content")
		require.Len(t, groups, 2)
		assert.Equal(t, "product", groups[0].Key)
		assert.Equal(t, "store", groups[1].Key)

		site := c.GroupsFor("site")
		require.Len(t, site, 1)
		assert.Equal(t, "store", site[0].Key)
	})

	t.Run("unknown context yields empty list", func(t *testing.T) {
		groups := c.GroupsFor("nowhere")
		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	})

	t.Run("fields for group", func(t *testing.T) {
		fields := c.FieldsFor("product")
		require.Len(t, fields, 2)
		assert.Equal(t, "name", fields[0].Key)
		assert.Equal(t, ReturnTypeNumber, fields[1].ReturnType)
	})

	t.Run("unknown group yields empty fields", func(t *testing.T) {
		fields := c.FieldsFor("missing")
		assert.NotNil(t, fields)
		assert.Empty(t, fields)
	})

	t.Run("modifiers for return type", func(t *testing.T) {
		mods := c.ModifiersFor(ReturnTypeNumber)
		require.Len(t, mods, 1)
		assert.Equal(t, "round", mods[0].Key)
		assert.Empty(t, c.ModifiersFor(ReturnTypeImage))
	})

	t.Run("point lookups", func(t *testing.T) {
		f, ok := c.Field("product", "price")
		require.True(t, ok)
		assert.Equal(t, ReturnTypeNumber, f.ReturnType)

		_, ok = c.Field("product", "missing")
		assert.False(t, ok)
		_, ok = c.Field("missing", "price")
		assert.False(t, ok)

		m, ok := c.Modifier("round")
		require.True(t, ok)
		assert.Equal(t, "2", *m.Args[0].Default)
	})

	t.Run("contexts in order of first appearance", func(t *testing.T) {
		assert.Equal(t, []Context{"content", "site"}, c.Contexts())
	})
}

func TestNewCatalog_CopiesDefinition(t *testing.T) {
	def := shopDefinition()
	c, err := NewCatalog(def)
	require.NoError(t, err)

	def.Groups[0].Fields[0].Key = "changed"
	*def.Modifiers[0].Args[0].Default = "9"

	_, ok := c.Field("product", "name")
	assert.True(t, ok)
	m, _ := c.Modifier("round")
	assert.Equal(t, "2", *m.Args[0].Default)

	// Returned values are copies too.
	g, _ := c.Group("product")
	g.Fields[0].Key = "mutated"
	_, ok = c.Field("product", "name")
	assert.True(t, ok)
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CatalogDefinition)
		reason string
	}{
		{
			name:   "duplicate group",
			mutate: func(d *CatalogDefinition) { d.Groups = append(d.Groups, d.Groups[0]) },
			reason: ErrMsgDuplicateGroup,
		},
		{
			name: "duplicate field",
			mutate: func(d *CatalogDefinition) {
				d.Groups[0].Fields = append(d.Groups[0].Fields, Field{Key: "name", ReturnType: ReturnTypeText})
			},
			reason: ErrMsgDuplicateField,
		},
		{
			name:   "invalid group key",
			mutate: func(d *CatalogDefinition) { d.Groups[0].Key = "bad key" },
			reason: ErrMsgInvalidKey,
		},
		{
			name:   "empty field key",
			mutate: func(d *CatalogDefinition) { d.Groups[0].Fields[0].Key = "" },
			reason: ErrMsgEmptyKey,
		},
		{
			name:   "unknown return type",
			mutate: func(d *CatalogDefinition) { d.Groups[0].Fields[0].ReturnType = "money" },
			reason: ErrMsgUnknownReturnType,
		},
		{
			name:   "duplicate modifier",
			mutate: func(d *CatalogDefinition) { d.Modifiers = append(d.Modifiers, d.Modifiers[1]) },
			reason: ErrMsgDuplicateModifier,
		},
		{
			name:   "modifier without accepted types",
			mutate: func(d *CatalogDefinition) { d.Modifiers[1].Accepts = nil },
			reason: ErrMsgNoAcceptedTypes,
		},
		{
			name:   "unknown argument type",
			mutate: func(d *CatalogDefinition) { d.Modifiers[0].Args[0].Type = "float" },
			reason: ErrMsgUnknownArgType,
		},
		{
			name: "enum without choices",
			mutate: func(d *CatalogDefinition) {
				d.Modifiers[0].Args[0] = ModifierArg{Key: "mode", Type: ArgTypeEnum}
			},
			reason: ErrMsgEnumWithoutChoices,
		},
		{
			name:   "number default that does not convert",
			mutate: func(d *CatalogDefinition) { d.Modifiers[0].Args[0].Default = StringPtr("two") },
			reason: ErrMsgDefaultNotConvertible,
		},
		{
			name: "enum default outside choices",
			mutate: func(d *CatalogDefinition) {
				d.Modifiers[0].Args[0] = ModifierArg{
					Key: "mode", Type: ArgTypeEnum, Choices: []string{"a", "b"}, Default: StringPtr("c"),
				}
			},
			reason: ErrMsgDefaultNotInChoices,
		},
		{
			name: "duplicate argument",
			mutate: func(d *CatalogDefinition) {
				d.Modifiers[0].Args = append(d.Modifiers[0].Args, d.Modifiers[0].Args[0])
			},
			reason: ErrMsgDuplicateArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := shopDefinition()
			tt.mutate(&def)

			c, err := NewCatalog(def)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), tt.reason)

			var cerr *cuserr.CustomError
			require.ErrorAs(t, err, &cerr)
			reason, ok := cerr.GetMetadata(MetaKeyReason)
			require.True(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestMustNewCatalog_Panics(t *testing.T) {
	def := shopDefinition()
	def.Groups[0].Key = ""
	assert.Panics(t, func() { MustNewCatalog(def) })
}

func TestCatalog_NilIsEmpty(t *testing.T) {
	var c *Catalog
	assert.Equal(t, "", c.Name())
	assert.Empty(t, c.GroupsFor(ContextContent))
	assert.Empty(t, c.FieldsFor(GroupPost))
	assert.Empty(t, c.ModifiersFor(ReturnTypeText))
	assert.Empty(t, c.Groups())
	assert.Empty(t, c.Modifiers())
	_, ok := c.Modifier("upper")
	assert.False(t, ok)
}

func TestCatalog_ConcurrentReads(t *testing.T) {
	c := DefaultCatalog()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.GroupsFor(ContextContent)
				_ = c.FieldsFor(GroupPost)
				_ = c.ModifiersFor(ReturnTypeText)
				_, _ = c.Field(GroupUser, "display_name")
			}
		}()
	}
	wg.Wait()
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, DefaultCatalogName, c.Name())

	tests := []struct {
		ctx    Context
		groups []string
	}{
		{ContextContent, []string{GroupPost, GroupUser, GroupSite}},
		{ContextVisitor, []string{GroupUser, GroupSite}},
		{ContextSite, []string{GroupSite}},
		{ContextTaxonomy, []string{GroupSite, GroupTerm}},
	}
	for _, tt := range tests {
		t.Run(string(tt.ctx), func(t *testing.T) {
			var keys []string
			for _, g := range c.GroupsFor(tt.ctx) {
				keys = append(keys, g.Key)
			}
			assert.Equal(t, tt.groups, keys)
		})
	}

	title, ok := c.Field(GroupPost, "title")
	require.True(t, ok)
	assert.Equal(t, ReturnTypeText, title.ReturnType)

	truncate, ok := c.Modifier("truncate")
	require.True(t, ok)
	assert.True(t, truncate.AcceptsType(ReturnTypeText))
	assert.True(t, truncate.Args[0].MustBeSupplied())
	assert.False(t, truncate.Args[1].MustBeSupplied())

	// Every modifier that accepts dates.
	var dateMods []string
	for _, m := range c.ModifiersFor(ReturnTypeDate) {
		dateMods = append(dateMods, m.Key)
	}
	assert.Equal(t, []string{"date_format", "time_ago", "fallback"}, dateMods)
}

func TestCatalogDefinition_Clone(t *testing.T) {
	def := DefaultCatalogDefinition()
	clone := def.Clone()

	clone.Groups[0].Fields[0].Key = "x"
	*clone.Modifiers[0].Args[1].Default = "..."
	clone.Modifiers[0].Accepts[0] = ReturnTypeList

	assert.Equal(t, "id", def.Groups[0].Fields[0].Key)
	assert.Equal(t, "…", *def.Modifiers[0].Args[1].Default)
	assert.Equal(t, ReturnTypeText, def.Modifiers[0].Accepts[0])
}
