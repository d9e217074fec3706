package graph

import (
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Expression compiles a CEL boolean expression into a Predicate. The
// expression sees the source output, converted to its JSON shape, as the
// variable "output":
//
//	pred, err := graph.Expression(`output.risk.score <= 30.0`)
//
// JSON numbers are doubles, so numeric literals should be written as such.
func Expression(expr string) (Predicate, error) {
	env, err := cel.NewEnv(
		cel.Variable("output", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: expression %q: %v", ErrInvalidGraph, expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: expression %q: %v", ErrInvalidGraph, expr, err)
	}

	return func(output any) (bool, error) {
		shaped, err := jsonShape(output)
		if err != nil {
			return false, err
		}

		out, _, err := prg.Eval(map[string]any{"output": shaped})
		if err != nil {
			return false, fmt.Errorf("evaluate %q: %w", expr, err)
		}

		result, ok := out.Value().(bool)
		if !ok {
			return false, fmt.Errorf("evaluate %q: result %T is not boolean", expr, out.Value())
		}
		return result, nil
	}, nil
}

func jsonShape(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert output to JSON: %w", err)
	}

	var shaped any
	if err := json.Unmarshal(data, &shaped); err != nil {
		return nil, fmt.Errorf("convert output to JSON: %w", err)
	}
	return shaped, nil
}
