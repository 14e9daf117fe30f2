package dyntag

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// CatalogFormat names a catalog file encoding.
type CatalogFormat string

// Catalog file formats
const (
	CatalogFormatYAML CatalogFormat = "yaml"
	CatalogFormatHCL  CatalogFormat = "hcl"
	CatalogFormatJSON CatalogFormat = "json"
)

// CatalogFormatForPath picks the format from a file extension.
func CatalogFormatForPath(path string) (CatalogFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case CatalogExtYAML, CatalogExtYML:
		return CatalogFormatYAML, true
	case CatalogExtHCL:
		return CatalogFormatHCL, true
	case CatalogExtJSON:
		return CatalogFormatJSON, true
	default:
		return "", false
	}
}

// LoadCatalog reads a catalog file and builds a validated catalog.
func LoadCatalog(path string) (*Catalog, error) {
	def, err := LoadCatalogDefinition(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(def)
}

// LoadCatalogDefinition reads a YAML, HCL or JSON catalog file. The format
// is chosen by extension.
func LoadCatalogDefinition(path string) (CatalogDefinition, error) {
	format, ok := CatalogFormatForPath(path)
	if !ok {
		return CatalogDefinition{}, NewCatalogFormatError(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return CatalogDefinition{}, NewCatalogReadError(path, err)
	}
	return DecodeCatalogDefinition(data, format, path)
}

// DecodeCatalogDefinition decodes a catalog in the given format. The name is
// used in error messages and, for HCL, in diagnostics.
func DecodeCatalogDefinition(data []byte, format CatalogFormat, name string) (CatalogDefinition, error) {
	var def CatalogDefinition
	switch format {
	case CatalogFormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return CatalogDefinition{}, NewCatalogDecodeError(name, err)
		}
	case CatalogFormatJSON:
		if err := json.Unmarshal(data, &def); err != nil {
			return CatalogDefinition{}, NewCatalogDecodeError(name, err)
		}
	case CatalogFormatHCL:
		return decodeCatalogHCL(data, name)
	default:
		return CatalogDefinition{}, NewCatalogFormatError(name)
	}
	return def, nil
}

// EncodeCatalogDefinition encodes a catalog as YAML or JSON. HCL catalogs are
// read-only.
func EncodeCatalogDefinition(def CatalogDefinition, format CatalogFormat) ([]byte, error) {
	switch format {
	case CatalogFormatYAML:
		return yaml.Marshal(def)
	case CatalogFormatJSON:
		return json.MarshalIndent(def, "", "  ")
	default:
		return nil, NewCatalogFormatError(string(format))
	}
}

// HCL catalog schema:
//
//	name = "shop"
//	group "product" {
//	  label    = "Product"
//	  contexts = ["content"]
//	  field "price" {
//	    type = "number"
//	  }
//	}
//	modifier "round" {
//	  accepts = ["number"]
//	  output  = "number"
//	  arg "precision" {
//	    type    = "number"
//	    default = "0"
//	  }
//	}
type hclCatalog struct {
	Name      string        `hcl:"name,optional"`
	Groups    []hclGroup    `hcl:"group,block"`
	Modifiers []hclModifier `hcl:"modifier,block"`
}

type hclGroup struct {
	Key         string     `hcl:"key,label"`
	Label       string     `hcl:"label,optional"`
	Icon        string     `hcl:"icon,optional"`
	Description string     `hcl:"description,optional"`
	Contexts    []string   `hcl:"contexts,optional"`
	Fields      []hclField `hcl:"field,block"`
}

type hclField struct {
	Key         string `hcl:"key,label"`
	Label       string `hcl:"label,optional"`
	Type        string `hcl:"type"`
	Description string `hcl:"description,optional"`
}

type hclModifier struct {
	Key         string   `hcl:"key,label"`
	Label       string   `hcl:"label,optional"`
	Description string   `hcl:"description,optional"`
	Accepts     []string `hcl:"accepts"`
	Output      string   `hcl:"output"`
	Args        []hclArg `hcl:"arg,block"`
}

type hclArg struct {
	Key         string   `hcl:"key,label"`
	Label       string   `hcl:"label,optional"`
	Type        string   `hcl:"type"`
	Required    bool     `hcl:"required,optional"`
	Default     *string  `hcl:"default,optional"`
	Choices     []string `hcl:"choices,optional"`
	Description string   `hcl:"description,optional"`
}

func decodeCatalogHCL(data []byte, name string) (CatalogDefinition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return CatalogDefinition{}, NewCatalogDecodeError(name, errors.New(diags.Error()))
	}

	var raw hclCatalog
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return CatalogDefinition{}, NewCatalogDecodeError(name, errors.New(diags.Error()))
	}

	def := CatalogDefinition{Name: raw.Name}
	for _, g := range raw.Groups {
		group := Group{
			Key:         g.Key,
			Label:       g.Label,
			Icon:        g.Icon,
			Description: g.Description,
		}
		for _, c := range g.Contexts {
			group.Contexts = append(group.Contexts, Context(c))
		}
		for _, f := range g.Fields {
			group.Fields = append(group.Fields, Field{
				Key:         f.Key,
				Label:       f.Label,
				ReturnType:  ReturnType(f.Type),
				Description: f.Description,
			})
		}
		def.Groups = append(def.Groups, group)
	}
	for _, m := range raw.Modifiers {
		mod := Modifier{
			Key:         m.Key,
			Label:       m.Label,
			Description: m.Description,
			Output:      ReturnType(m.Output),
		}
		for _, t := range m.Accepts {
			mod.Accepts = append(mod.Accepts, ReturnType(t))
		}
		for _, a := range m.Args {
			mod.Args = append(mod.Args, ModifierArg{
				Key:         a.Key,
				Label:       a.Label,
				Type:        ArgType(a.Type),
				Required:    a.Required,
				Default:     a.Default,
				Choices:     a.Choices,
				Description: a.Description,
			})
		}
		def.Modifiers = append(def.Modifiers, mod)
	}
	return def, nil
}
