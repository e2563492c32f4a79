package formatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent int
	// LiteralBlockStrings emits multi-line strings as "|" blocks.
	LiteralBlockStrings bool
	// ExpandEscapedNewlines turns literal "\n" sequences into newlines.
	ExpandEscapedNewlines bool
}

// FormatYAML renders v as a YAML document.
func FormatYAML(v jsonvalue.Value, opts YAMLFormatOptions) (string, error) {
	node := toNode(v, opts)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toNode(v jsonvalue.Value, opts YAMLFormatOptions) *yaml.Node {
	switch v.Kind() {
	case jsonvalue.KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Object().Members() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				toNode(m.Value, opts))
		}
		return n
	case jsonvalue.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			n.Content = append(n.Content, toNode(item, opts))
		}
		return n
	case jsonvalue.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case jsonvalue.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: scalarText(v)}
	case jsonvalue.KindNumber:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.NumberText().String()}
	default:
		s := v.Str()
		if opts.ExpandEscapedNewlines {
			s = strings.ReplaceAll(s, `\n`, "\n")
		}
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
		if opts.LiteralBlockStrings && strings.Contains(s, "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n
	}
}
