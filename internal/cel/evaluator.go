// Package cel evaluates CEL expressions against a loaded document. The
// document is bound to the variable "_".
package cel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// RootVariable is the name the document is bound to.
const RootVariable = "_"

var rootRef = regexp.MustCompile(`(^|[^A-Za-z0-9_])_([^A-Za-z0-9_]|$)`)

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the string, encoder, list and math
// extensions. Extra options extend the environment.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	all := make([]cel.EnvOption, 0, 5+len(opts))
	all = append(all,
		cel.Variable(RootVariable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	all = append(all, opts...)
	env, err := cel.NewEnv(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Evaluate runs expr against data (plain Go values) and returns plain Go
// values.
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	result, _, err := prg.Eval(map[string]any{RootVariable: data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	converted := ToGo(result)
	if rv, ok := converted.(ref.Val); ok {
		converted = rv.Value()
	}
	return converted, nil
}

// EvaluateValue runs expr against a document. Expressions that do not
// mention the root variable are treated as paths relative to it, so "items"
// means "_.items".
func (e *Evaluator) EvaluateValue(expr string, doc jsonvalue.Value) (jsonvalue.Value, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == RootVariable {
		return doc, nil
	}
	out, err := e.Evaluate(qualify(expr), jsonvalue.ToAny(doc))
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.FromAny(out), nil
}

func qualify(expr string) string {
	if rootRef.MatchString(expr) {
		return expr
	}
	if strings.HasPrefix(expr, "[") {
		return RootVariable + expr
	}
	return RootVariable + "." + expr
}

// ToGo converts CEL values to Go values recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	inner := val.Value()
	switch x := inner.(type) {
	case []ref.Val:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = goValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, elem := range x {
			out[k] = goValue(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(x))
		for k, elem := range x {
			out[fmt.Sprint(k.Value())] = ToGo(elem)
		}
		return out
	}
	return inner
}

func goValue(x any) any {
	switch v := x.(type) {
	case ref.Val:
		return ToGo(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = goValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = goValue(elem)
		}
		return out
	}
	return x
}
