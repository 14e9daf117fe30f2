package dyntag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideChannelName(t *testing.T) {
	assert.Equal(t, "titleDynamicTag", SideChannelName("title"))
	assert.Equal(t, "urlDynamicTag", SideChannelBinding{Base: "url"}.Name())
}

func TestWholeValueBinding(t *testing.T) {
	b := WholeValueBinding{Attribute: "heading"}
	attrs := Attributes{"heading": "Static heading"}

	assert.Equal(t, "Static heading", b.Read(attrs))

	b.Write(attrs, "@tags()@post(title)@endtags()")
	assert.Equal(t, "@tags()@post(title)@endtags()", b.Effective(attrs))

	b.Write(attrs, Disable(b.Read(attrs)))
	assert.Equal(t, "", attrs["heading"])
}

func TestSideChannelBinding(t *testing.T) {
	b := SideChannelBinding{Base: "title"}
	attrs := Attributes{"title": "Fallback"}

	t.Run("no override uses the base literal", func(t *testing.T) {
		assert.Equal(t, "", b.Read(attrs))
		assert.Equal(t, "Fallback", b.Effective(attrs))
	})

	t.Run("override wins", func(t *testing.T) {
		b.Write(attrs, "@tags()@site(title)@endtags()")
		assert.Equal(t, "@tags()@site(title)@endtags()", attrs["titleDynamicTag"])
		assert.Equal(t, "@tags()@site(title)@endtags()", b.Effective(attrs))
		assert.Equal(t, "Fallback", attrs["title"])
	})

	t.Run("empty commit removes the override", func(t *testing.T) {
		b.Write(attrs, "")
		_, ok := attrs["titleDynamicTag"]
		assert.False(t, ok)
		assert.Equal(t, "Fallback", b.Effective(attrs))
	})

	t.Run("empty override falls back", func(t *testing.T) {
		attrs["titleDynamicTag"] = ""
		assert.Equal(t, "Fallback", b.Effective(attrs))
	})
}

func TestBinding_WriteNilAttributes(t *testing.T) {
	for _, b := range []Binding{
		WholeValueBinding{Attribute: "title"},
		SideChannelBinding{Base: "title"},
	} {
		attrs := b.Write(nil, "@tags()@site(title)@endtags()")
		require.NotNil(t, attrs, "%T", b)
		assert.Equal(t, "@tags()@site(title)@endtags()", b.Effective(attrs))
		assert.Equal(t, "@tags()@site(title)@endtags()", b.Read(attrs))
	}

	assert.Nil(t, SideChannelBinding{Base: "title"}.Write(nil, ""))
	assert.Equal(t, Attributes{"title": ""}, WholeValueBinding{Attribute: "title"}.Write(nil, ""))
}

func TestBinding_SessionRoundTrip(t *testing.T) {
	engine := MustNew()

	for _, b := range []Binding{
		WholeValueBinding{Attribute: "text"},
		SideChannelBinding{Base: "text"},
	} {
		attrs := Attributes{"text": "Hello"}

		s := engine.Open("Text", b.Read(attrs), ContextContent)
		require.NoError(t, s.AppendToken(Token{Group: "user", Field: "first_name"}))
		out, err := s.Commit()
		require.NoError(t, err)
		attrs = b.Write(attrs, out)

		effective := b.Effective(attrs)
		assert.True(t, engine.IsActive(effective), "%T: %q", b, effective)

		s = engine.Open("Text", b.Read(attrs), ContextContent)
		require.NoError(t, s.Clear())
		out, err = s.Commit()
		require.NoError(t, err)
		b.Write(attrs, out)
		assert.False(t, engine.IsActive(b.Effective(attrs)))
	}
}
