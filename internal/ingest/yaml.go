package ingest

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arcvalue/internal/value"
)

type yamlDecoder struct {
	dec *yaml.Decoder
	b   builder
}

// rawYAMLKeys converts mapping keys without normalization; builder.object
// normalizes them once the entries are ordered.
var rawYAMLKeys = &yamlDecoder{}

func newYAMLDecoder(r io.Reader, b builder) *yamlDecoder {
	return &yamlDecoder{dec: yaml.NewDecoder(r), b: b}
}

func (d *yamlDecoder) next() (value.Value, error) {
	var doc yaml.Node
	if err := d.dec.Decode(&doc); err != nil {
		return nil, err
	}
	return d.convert(&doc)
}

func (d *yamlDecoder) convert(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Unit{}, nil
		}
		return d.convert(n.Content[0])
	case yaml.AliasNode:
		return d.convert(n.Alias)
	case yaml.SequenceNode:
		elems := make([]value.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := d.convert(c)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return d.tagged(n, value.NewSeq(elems...)), nil
	case yaml.MappingNode:
		entries := make([]value.Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := rawYAMLKeys.convert(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := d.convert(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Content[i].Line, err)
			}
			entries = append(entries, value.Entry{Key: k, Value: v})
		}
		return d.tagged(n, d.b.object(entries)), nil
	case yaml.ScalarNode:
		return d.scalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func (d *yamlDecoder) scalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Unit{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return d.b.integer(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.U64(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.F64(f), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.NewBytes(b), nil
	case "!!str", "!!timestamp":
		return d.b.str(n.Value), nil
	default:
		return d.tagged(n, d.b.str(n.Value)), nil
	}
}

// tagged wraps nodes carrying an application tag (e.g. !point) in a
// Newtype, mirroring how CBOR tags are represented.
func (d *yamlDecoder) tagged(n *yaml.Node, v value.Value) value.Value {
	if n.Tag == "" || strings.HasPrefix(n.Tag, "!!") || n.Tag == "!" {
		return v
	}
	return value.Wrap(v)
}
