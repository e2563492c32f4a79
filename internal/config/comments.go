package config

import (
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// annotate copies yamlcomment struct tags onto the matching mapping keys of
// node, recursing into nested structs.
func annotate(node *yaml.Node, v any) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		annotate(node.Content[0], v)
		return
	}
	annotateStruct(node, reflect.ValueOf(v))
}

func annotateStruct(node *yaml.Node, rv reflect.Value) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || node.Kind != yaml.MappingNode {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		key, val := lookup(node, name)
		if key == nil {
			continue
		}
		if comment := field.Tag.Get("yamlcomment"); comment != "" {
			key.HeadComment = comment
		}
		annotateStruct(val, rv.Field(i))
	}
}

func lookup(node *yaml.Node, name string) (*yaml.Node, *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == name {
			return node.Content[i], node.Content[i+1]
		}
	}
	return nil, nil
}
