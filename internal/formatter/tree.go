// Package formatter renders documents in the outline output formats: an
// ASCII tree and YAML. Member order follows the source document.
package formatter

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// defaultMaxArrayInline is the max number of array elements to show inline.
const defaultMaxArrayInline = 3

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// NoValues hides values at leaf nodes (structure only).
	NoValues bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// ExpandArrays shows every element of scalar arrays instead of an inline
	// list or "[N items]" summary.
	ExpandArrays bool
	// MaxArrayInline is max items to show inline for scalar arrays (default 3).
	MaxArrayInline int
	// MaxStringLen truncates longer strings. 0 = unlimited.
	MaxStringLen int
	// ArrayStyle controls how array indices are displayed:
	// "index" = [0], [1]; "numbered" = 1, 2; "bullet" = •; "none" = skip index.
	ArrayStyle string
}

// ValidArrayStyles contains all valid array style values.
var ValidArrayStyles = []string{"index", "numbered", "bullet", "none"}

// ValidateArrayStyle returns an error if the style is invalid.
func ValidateArrayStyle(style string) error {
	if style == "" {
		return nil
	}
	for _, valid := range ValidArrayStyles {
		if style == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid array-style %q: valid values are %s", style, strings.Join(ValidArrayStyles, ", "))
}

// FormatArrayIndex formats an array index based on style.
func FormatArrayIndex(i int, style string) string {
	switch style {
	case "numbered":
		return fmt.Sprintf("%d", i+1)
	case "bullet":
		return "•"
	case "none":
		return ""
	default:
		return fmt.Sprintf("[%d]", i)
	}
}

// FormatTree renders v as an ASCII tree. Objects become branches labelled by
// key, arrays get indexed children and scalars sit inline at the leaves.
func FormatTree(v jsonvalue.Value, opts TreeOptions) string {
	if opts.MaxArrayInline == 0 {
		opts.MaxArrayInline = defaultMaxArrayInline
	}
	tree := treeprint.New()
	switch v.Kind() {
	case jsonvalue.KindObject, jsonvalue.KindArray:
		children(tree, v, opts, 0)
	default:
		tree.AddNode(scalar(v, opts))
	}
	return tree.String()
}

func children(branch treeprint.Tree, v jsonvalue.Value, opts TreeOptions, depth int) {
	if v.Kind() == jsonvalue.KindObject {
		for _, m := range v.Object().Members() {
			add(branch, m.Key, m.Value, opts, depth)
		}
		return
	}
	for i, item := range v.Items() {
		add(branch, FormatArrayIndex(i, opts.ArrayStyle), item, opts, depth)
	}
}

func add(branch treeprint.Tree, key string, v jsonvalue.Value, opts TreeOptions, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		branch.AddNode(keyValue(key, "..."))
		return
	}
	leaf := func(text string) {
		if opts.NoValues {
			branch.AddNode(keyOnly(key))
			return
		}
		branch.AddNode(keyValue(key, text))
	}

	switch v.Kind() {
	case jsonvalue.KindObject:
		if v.Len() == 0 {
			leaf("{}")
			return
		}
		children(branch.AddBranch(keyOnly(key)), v, opts, depth+1)
	case jsonvalue.KindArray:
		switch {
		case v.Len() == 0:
			leaf("[]")
		case !opts.ExpandArrays && scalarArray(v) && v.Len() <= opts.MaxArrayInline:
			leaf(inline(v))
		case !opts.ExpandArrays && scalarArray(v):
			leaf(fmt.Sprintf("[%d items]", v.Len()))
		default:
			children(branch.AddBranch(keyOnly(key)), v, opts, depth+1)
		}
	default:
		leaf(scalar(v, opts))
	}
}

func keyValue(key, value string) string {
	if key == "" {
		return value
	}
	return key + ": " + value
}

func keyOnly(key string) string {
	if key == "" {
		return "(item)"
	}
	return key
}

func scalarArray(v jsonvalue.Value) bool {
	for _, item := range v.Items() {
		if item.IsContainer() {
			return false
		}
	}
	return true
}

func inline(v jsonvalue.Value) string {
	parts := make([]string, v.Len())
	for i, item := range v.Items() {
		parts[i] = scalarText(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func scalar(v jsonvalue.Value, opts TreeOptions) string {
	s := scalarText(v)
	if opts.MaxStringLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= opts.MaxStringLen {
		return s
	}
	if opts.MaxStringLen <= 3 {
		return "..."
	}
	return string(r[:opts.MaxStringLen-3]) + "..."
}

func scalarText(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return "null"
	case jsonvalue.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case jsonvalue.KindNumber:
		return v.NumberText().String()
	case jsonvalue.KindString:
		return v.Str()
	default:
		return jsonvalue.Marshal(v)
	}
}
