package dyntag

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// WriteCatalogReference writes a Markdown reference of the catalog: one
// section per group listing its fields with their canonical token, followed
// by the modifiers and their arguments.
func WriteCatalogReference(w io.Writer, catalog *Catalog) error {
	var b strings.Builder

	title := catalog.Name()
	if title == "" {
		title = DefaultCatalogName
	}
	fmt.Fprintf(&b, "# %s\n\n", mdCell(title))

	b.WriteString("## Groups\n\n")
	for _, g := range catalog.Groups() {
		fmt.Fprintf(&b, "### %s\n\n", mdCell(labelOr(g.Label, g.Key)))
		if g.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", g.Description)
		}
		contexts := make([]string, len(g.Contexts))
		for i, c := range g.Contexts {
			contexts[i] = "`" + string(c) + "`"
		}
		fmt.Fprintf(&b, "Contexts: %s\n\n", strings.Join(contexts, ", "))

		b.WriteString("| Token | Label | Type | Description |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range g.Fields {
			token := FormatToken(Token{Group: g.Key, Field: f.Key})
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
				token, mdCell(labelOr(f.Label, f.Key)), f.ReturnType, mdCell(f.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Modifiers\n\n")
	for _, m := range catalog.Modifiers() {
		fmt.Fprintf(&b, "### `.%s`\n\n", m.Key)
		if m.Label != "" {
			fmt.Fprintf(&b, "**%s**", mdCell(m.Label))
			if m.Description != "" {
				b.WriteString(": " + m.Description)
			}
			b.WriteString("\n\n")
		} else if m.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", m.Description)
		}
		accepts := make([]string, len(m.Accepts))
		for i, t := range m.Accepts {
			accepts[i] = string(t)
		}
		fmt.Fprintf(&b, "Accepts %s, returns %s.\n\n", strings.Join(accepts, " or "), m.Output)

		if len(m.Args) == 0 {
			continue
		}
		b.WriteString("| Argument | Type | Required | Default | Choices |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, a := range m.Args {
			def := ""
			if a.Default != nil {
				def = "`" + mdCell(*a.Default) + "`"
			}
			required := "no"
			if a.Required {
				required = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				mdCell(labelOr(a.Label, a.Key)), a.Type, required, def, mdCell(strings.Join(a.Choices, ", ")))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCatalogReferenceHTML renders the Markdown reference to HTML.
func RenderCatalogReferenceHTML(w io.Writer, catalog *Catalog) error {
	var src bytes.Buffer
	if err := WriteCatalogReference(&src, catalog); err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	return md.Convert(src.Bytes(), w)
}

func labelOr(label, key string) string {
	if label != "" {
		return label
	}
	return key
}

// mdCell keeps text on one table row.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
