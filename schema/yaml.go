package schema

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/bytecoding/errors"
)

// File is a parsed schema file: an optional target package name and the
// declared type set.
type File struct {
	Package string
	Types   *Set
}

// LoadFile reads and parses a YAML schema file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	return Load(data, path)
}

// Load parses a YAML schema document. The filename is only used in
// diagnostics.
func Load(data []byte, filename string) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.ParseFailed(filename, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Detail("schema file %s is empty", filename).
			Build()
	}

	l := &loader{file: filename}
	return l.file_(root.Content[0])
}

type loader struct {
	file string
}

func (l *loader) loc(n *yaml.Node) errors.Loc {
	return errors.Loc{File: l.file, Line: n.Line, Col: n.Column}
}

func (l *loader) errorf(n *yaml.Node, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Loc(l.loc(n)).
		Detail(format, args...).
		Build()
}

// mapping iterates key/value pairs of a mapping node.
func (l *loader) mapping(n *yaml.Node, visit func(key string, keyNode, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return l.errorf(n, "expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := visit(n.Content[i].Value, n.Content[i], n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) file_(n *yaml.Node) (*File, error) {
	out := &File{}
	var typesNode *yaml.Node

	err := l.mapping(n, func(key string, keyNode, value *yaml.Node) error {
		switch key {
		case "package":
			out.Package = value.Value
		case "types":
			typesNode = value
		default:
			return l.errorf(keyNode, "unknown schema key %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if typesNode == nil {
		return nil, l.errorf(n, "schema has no types")
	}
	if typesNode.Kind != yaml.SequenceNode {
		return nil, l.errorf(typesNode, "types must be a sequence")
	}

	set := &Set{byName: make(map[string]*Type)}
	for _, tn := range typesNode.Content {
		t, err := l.typeDecl(tn)
		if err != nil {
			return nil, err
		}
		if err := set.Add(t); err != nil {
			return nil, err
		}
	}
	out.Types = set
	return out, nil
}

func (l *loader) typeDecl(n *yaml.Node) (*Type, error) {
	t := &Type{Loc: l.loc(n)}
	var fieldsNode, variantsNode *yaml.Node
	tuple := false

	err := l.mapping(n, func(key string, keyNode, value *yaml.Node) error {
		switch key {
		case "name":
			t.Name = value.Value
		case "annotations":
			blocks, err := l.blocks(value)
			if err != nil {
				return err
			}
			t.Annotations = blocks
		case "fields":
			fieldsNode = value
		case "variants":
			variantsNode = value
		case "tuple":
			tuple = value.Value == "true"
		default:
			return l.errorf(keyNode, "unknown type key %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t.Name == "" {
		return nil, l.errorf(n, "type has no name")
	}
	if fieldsNode != nil && variantsNode != nil {
		return nil, l.errorf(n, "type %q declares both fields and variants", t.Name)
	}

	switch {
	case variantsNode != nil:
		t.Kind = Union
		if variantsNode.Kind != yaml.SequenceNode {
			return nil, l.errorf(variantsNode, "variants must be a sequence")
		}
		for _, vn := range variantsNode.Content {
			v, err := l.variant(vn)
			if err != nil {
				return nil, err
			}
			t.Variants = append(t.Variants, v)
		}

	case fieldsNode != nil:
		fields, positional, err := l.fields(fieldsNode)
		if err != nil {
			return nil, err
		}
		t.Fields = fields
		t.Kind = Record
		if tuple || positional {
			t.Kind = Tuple
		}

	default:
		// A unit record: no fields, no variants.
		t.Kind = Record
	}

	return t, nil
}

func (l *loader) variant(n *yaml.Node) (Variant, error) {
	v := Variant{Loc: l.loc(n)}

	// A bare string is shorthand for a unit variant.
	if n.Kind == yaml.ScalarNode {
		v.Name = n.Value
		if v.Name == "" {
			return Variant{}, l.errorf(n, "variant has no name")
		}
		return v, nil
	}

	var fieldsNode *yaml.Node
	err := l.mapping(n, func(key string, keyNode, value *yaml.Node) error {
		switch key {
		case "name":
			v.Name = value.Value
		case "discriminant":
			v.Discriminant = value.Value
		case "tuple":
			v.Tuple = value.Value == "true"
		case "fields":
			fieldsNode = value
		case "annotations":
			blocks, err := l.blocks(value)
			if err != nil {
				return err
			}
			v.Annotations = blocks
		default:
			return l.errorf(keyNode, "unknown variant key %q", key)
		}
		return nil
	})
	if err != nil {
		return Variant{}, err
	}

	if v.Name == "" {
		return Variant{}, l.errorf(n, "variant has no name")
	}
	if fieldsNode != nil {
		fields, positional, err := l.fields(fieldsNode)
		if err != nil {
			return Variant{}, err
		}
		v.Fields = fields
		v.Tuple = v.Tuple || positional
	}
	return v, nil
}

func (l *loader) fields(n *yaml.Node) (fields []Field, positional bool, err error) {
	if n.Kind != yaml.SequenceNode {
		return nil, false, l.errorf(n, "fields must be a sequence")
	}

	named := 0
	for _, fn := range n.Content {
		f, err := l.field(fn)
		if err != nil {
			return nil, false, err
		}
		if f.Name != "" {
			named++
		}
		fields = append(fields, f)
	}

	if named != 0 && named != len(fields) {
		return nil, false, l.errorf(n, "cannot mix named and positional fields")
	}
	return fields, len(fields) > 0 && named == 0, nil
}

func (l *loader) field(n *yaml.Node) (Field, error) {
	f := Field{Loc: l.loc(n)}
	var typeNode *yaml.Node

	err := l.mapping(n, func(key string, keyNode, value *yaml.Node) error {
		switch key {
		case "name":
			f.Name = value.Value
		case "type":
			typeNode = value
		case "annotations":
			blocks, err := l.blocks(value)
			if err != nil {
				return err
			}
			f.Annotations = blocks
		default:
			return l.errorf(keyNode, "unknown field key %q", key)
		}
		return nil
	})
	if err != nil {
		return Field{}, err
	}

	if typeNode == nil {
		return Field{}, l.errorf(n, "field has no type")
	}
	ref, err := ParseTypeRef(typeNode.Value, l.loc(typeNode))
	if err != nil {
		return Field{}, err
	}
	f.Type = ref
	return f, nil
}

func (l *loader) blocks(n *yaml.Node) ([]Block, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, l.errorf(n, "annotations must be a sequence of blocks")
	}

	var blocks []Block
	for _, bn := range n.Content {
		block := Block{Loc: l.loc(bn)}

		switch bn.Kind {
		case yaml.ScalarNode:
			// Shorthand for a single flag entry.
			block.Entries = append(block.Entries, Entry{
				Key:  bn.Value,
				Form: FormFlag,
				Loc:  l.loc(bn),
			})

		case yaml.MappingNode:
			err := l.mapping(bn, func(key string, keyNode, value *yaml.Node) error {
				entry, err := l.entry(key, keyNode, value)
				if err != nil {
					return err
				}
				block.Entries = append(block.Entries, entry)
				return nil
			})
			if err != nil {
				return nil, err
			}

		default:
			return nil, l.errorf(bn, "annotation block must be a mapping or a flag name")
		}

		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (l *loader) entry(key string, keyNode, value *yaml.Node) (Entry, error) {
	entry := Entry{Key: key, Loc: l.loc(keyNode)}

	if value.Kind != yaml.ScalarNode {
		return Entry{}, l.errorf(value, "annotation %q must have a scalar value", key)
	}

	switch value.Tag {
	case "!!str":
		entry.Form = FormString
		entry.Str = value.Value
	case "!!int":
		if strings.HasPrefix(value.Value, "-") {
			return Entry{}, l.errorf(value, "annotation %q must be non-negative", key)
		}
		entry.Form = FormInt
		entry.Int = value.Value
	case "!!null":
		entry.Form = FormFlag
	case "!!bool":
		if value.Value != "true" {
			return Entry{}, l.errorf(value, "annotation flag %q cannot be false", key)
		}
		entry.Form = FormFlag
	default:
		return Entry{}, l.errorf(value, "annotation %q has unsupported value", key)
	}
	return entry, nil
}
