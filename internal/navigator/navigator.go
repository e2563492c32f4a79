// Package navigator resolves user supplied paths, either simple dotted paths
// or CEL expressions, against a document.
package navigator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/jsontable/internal/cel"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// ErrNotFound is returned when a simple path step has no target.
var ErrNotFound = errors.New("path not found")

// Hop is one resolved step of a path.
type Hop struct {
	Label string
	Value jsonvalue.Value
}

// DisplayName is the focus name for the hop's value, e.g. "items (Array)".
func (h Hop) DisplayName() string {
	return DisplayName(h.Label, h.Value)
}

// DisplayName names a value reached under label the way focused cells are
// named.
func DisplayName(label string, v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindArray:
		return label + " (Array)"
	case jsonvalue.KindObject:
		return label + " (Object)"
	}
	return label
}

// Resolver resolves paths against a document. Complex expressions are
// evaluated with CEL.
type Resolver struct {
	eval *cel.Evaluator
}

// NewResolver creates a resolver. A nil evaluator gets the default CEL
// environment on first use.
func NewResolver(eval *cel.Evaluator) *Resolver {
	return &Resolver{eval: eval}
}

// Resolve walks path from root and returns one hop per step. Simple paths
// yield a hop for every segment; CEL expressions yield a single hop labelled
// with the expression. An empty path yields no hops.
func (r *Resolver) Resolve(root jsonvalue.Value, path string) ([]Hop, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == cel.RootVariable {
		return nil, nil
	}
	if !IsComplexCEL(trimmed) {
		nodes, err := ParsePath(trimmed)
		if err != nil {
			return nil, err
		}
		return Walk(root, nodes)
	}
	if r.eval == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		r.eval = eval
	}
	v, err := r.eval.EvaluateValue(trimmed, root)
	if err != nil {
		return nil, fmt.Errorf("CEL evaluation error: %w", err)
	}
	return []Hop{{Label: trimmed, Value: v}}, nil
}

// Value resolves path and returns only the final value.
func (r *Resolver) Value(root jsonvalue.Value, path string) (jsonvalue.Value, error) {
	hops, err := r.Resolve(root, path)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(hops) == 0 {
		return root, nil
	}
	return hops[len(hops)-1].Value, nil
}

// Walk applies nodes to root one at a time.
func Walk(root jsonvalue.Value, nodes []Node) ([]Hop, error) {
	hops := make([]Hop, 0, len(nodes))
	cur := root
	for i, n := range nodes {
		next, err := step(cur, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ReconstructPath(nodes[:i+1]), err)
		}
		hops = append(hops, Hop{Label: Label(n), Value: next})
		cur = next
	}
	return hops, nil
}

func step(cur jsonvalue.Value, n Node) (jsonvalue.Value, error) {
	switch v := n.(type) {
	case Field:
		return stepKey(cur, v.Name)
	case QuotedKey:
		return stepKey(cur, v.Name)
	case ArrayIndex:
		if cur.Kind() != jsonvalue.KindArray {
			return jsonvalue.Value{}, fmt.Errorf("cannot index %s with [%d]", cur.Kind(), v.Index)
		}
		item, ok := cur.Index(v.Index)
		if !ok {
			return jsonvalue.Value{}, fmt.Errorf("index %d out of range: %w", v.Index, ErrNotFound)
		}
		return item, nil
	}
	return jsonvalue.Value{}, fmt.Errorf("unsupported path node %T", n)
}

func stepKey(cur jsonvalue.Value, key string) (jsonvalue.Value, error) {
	switch cur.Kind() {
	case jsonvalue.KindObject:
		v, ok := cur.Field(key)
		if !ok {
			return jsonvalue.Value{}, fmt.Errorf("key '%s': %w", key, ErrNotFound)
		}
		return v, nil
	case jsonvalue.KindArray:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return jsonvalue.Value{}, fmt.Errorf("expected numeric index into array but got '%s'", key)
		}
		return step(cur, ArrayIndex{Index: idx})
	}
	return jsonvalue.Value{}, fmt.Errorf("cannot descend into %s at '%s'", cur.Kind(), key)
}

// IsComplexCEL reports whether path needs CEL rather than simple
// navigation.
func IsComplexCEL(path string) bool {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) && len(trimmed) >= 2 {
		return true
	}
	if strings.HasPrefix(trimmed, "{") {
		return true
	}
	// [1] and ["key"] are navigation; [1, 2] and [x.y] are list literals.
	if strings.HasPrefix(trimmed, "[") {
		closeBracket := strings.Index(trimmed, "]")
		if closeBracket > 0 {
			inside := trimmed[1:closeBracket]
			if _, err := strconv.Atoi(inside); err == nil {
				return false
			}
			if strings.HasPrefix(inside, `"`) && strings.HasSuffix(inside, `"`) {
				return false
			}
			return true
		}
	}
	if strings.Contains(trimmed, "(") && strings.Contains(trimmed, ")") {
		return true
	}
	if strings.HasPrefix(trimmed, "_.") || strings.HasPrefix(trimmed, "_[") {
		return true
	}
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">", "&&", "||", "+", "?"} {
		if strings.Contains(trimmed, op) {
			return true
		}
	}
	return false
}
