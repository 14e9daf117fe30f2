package dyntag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppliedModifier_ResolvedArgs(t *testing.T) {
	catalog := DefaultCatalog()
	builtin := func(key string) Modifier {
		def, ok := catalog.Modifier(key)
		require.True(t, ok, key)
		return def
	}

	pad := Modifier{
		Key: "pad",
		Args: []ModifierArg{
			{Key: "width", Type: ArgTypeNumber, Default: StringPtr("4")},
			{Key: "char", Type: ArgTypeText},
			{Key: "side", Type: ArgTypeText, Default: StringPtr("left")},
		},
	}
	broken := Modifier{
		Key:  "scale",
		Args: []ModifierArg{{Key: "factor", Type: ArgTypeNumber, Default: StringPtr("wide")}},
	}

	tests := []struct {
		name string
		mod  AppliedModifier
		def  Modifier
		want []ArgValue
	}{
		{"fills trailing default", Mod("truncate", NumberArg(50)), builtin("truncate"), []ArgValue{NumberArg(50), TextArg("…")}},
		{"explicit values win", Mod("truncate", NumberArg(5), TextArg("!")), builtin("truncate"), []ArgValue{NumberArg(5), TextArg("!")}},
		{"first argument has no default", Mod("truncate"), builtin("truncate"), nil},
		{"enum default", Mod("image_url"), builtin("image_url"), []ArgValue{EnumArg("full")}},
		{"all defaults", Mod("yes_no"), builtin("yes_no"), []ArgValue{TextArg("Yes"), TextArg("No")}},
		{"stops at the first gap", Mod("pad"), pad, []ArgValue{NumberArg(4)}},
		{"default that does not convert", Mod("scale"), broken, nil},
		{"no declared arguments", Mod("upper"), builtin("upper"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tt.mod.Args)
			assert.Equal(t, tt.want, tt.mod.ResolvedArgs(tt.def))
			assert.Len(t, tt.mod.Args, before)
		})
	}
}

func TestToken_WithDefaults(t *testing.T) {
	tok := Token{
		Group: "post",
		Field: "title",
		Modifiers: []AppliedModifier{
			Mod("truncate", NumberArg(50)),
			Mod("shout"),
			Mod("upper"),
		},
	}

	resolved := tok.WithDefaults(DefaultCatalog())
	assert.Equal(t, `@post(title).truncate(50,"…").shout().upper()`, FormatToken(resolved))
	assert.Equal(t, "@post(title).truncate(50).shout().upper()", FormatToken(tok))

	assert.True(t, tok.Equal(tok.WithDefaults(nil)))
}
