package navigator

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents a parsed segment of a path input.
// Path example: regions.asia.countries[0].city["postal-code"]
type Node interface{}

// Field represents a simple dotted field name.
type Field struct {
	Name string
}

// QuotedKey represents a field accessed via bracket-quoted key: ["key"]
type QuotedKey struct {
	Name string
}

// ArrayIndex represents an array index like [0]
type ArrayIndex struct {
	Index int
}

// ParsePath parses a simple path into nodes. It supports dots, bracket
// indices and bracket quoted keys; numeric dotted segments ("items.0") are
// read as indices.
func ParsePath(input string) ([]Node, error) {
	var nodes []Node
	input = NormalizePath(strings.TrimSpace(input))
	i := 0
	for i < len(input) {
		ch := input[i]
		if ch == '.' {
			i++
			continue
		}
		if ch == '[' {
			end := strings.IndexByte(input[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("unterminated bracket at offset %d in %q", i, input)
			}
			segment := input[i+1 : i+end]
			switch {
			case len(segment) >= 2 && strings.HasPrefix(segment, `"`) && strings.HasSuffix(segment, `"`):
				nodes = append(nodes, QuotedKey{Name: segment[1 : len(segment)-1]})
			default:
				n, err := strconv.Atoi(segment)
				if err != nil {
					nodes = append(nodes, Field{Name: segment})
				} else {
					nodes = append(nodes, ArrayIndex{Index: n})
				}
			}
			i += end + 1
			continue
		}
		j := i
		for j < len(input) && input[j] != '.' && input[j] != '[' {
			j++
		}
		if name := input[i:j]; name != "" {
			nodes = append(nodes, Field{Name: name})
		}
		i = j
	}
	return nodes, nil
}

// ReconstructPath rebuilds a path string from nodes.
func ReconstructPath(nodes []Node) string {
	var b strings.Builder
	for idx, n := range nodes {
		switch v := n.(type) {
		case Field:
			if idx > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v.Name)
		case QuotedKey:
			b.WriteString(`["`)
			b.WriteString(v.Name)
			b.WriteString(`"]`)
		case ArrayIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Label is the display label of a single node.
func Label(n Node) string {
	switch v := n.(type) {
	case Field:
		return v.Name
	case QuotedKey:
		return v.Name
	case ArrayIndex:
		return "[" + strconv.Itoa(v.Index) + "]"
	}
	return ""
}
