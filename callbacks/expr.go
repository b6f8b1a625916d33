package callbacks

import (
	"github.com/expr-lang/expr"
)

// Expression is a small evaluate_expression implementation backed by
// expr-lang/expr, grounded on the teacher's own chtml/expr.go (which
// compiles and runs expr-lang programs for CHTML's "${...}" interpolation
// and "c:if" conditions). Unlike the teacher, this implementation has no
// static shape-checking pass: #ifexpr results only need a runtime value,
// not a compile-time output shape, so we skip the teacher's Shape/Checker
// machinery and simply compile-and-run per call.
type Expression struct{}

// Evaluate compiles src and runs it with vars bound as string variables in
// its environment, returning the typed Value the #ifexpr/[[ifexpr]] rules
// and *-flagged WikiScript assignments expect.
func (Expression) Evaluate(src string, vars map[string]string) (Value, error) {
	env := make(map[string]any, len(vars))
	for k, v := range vars {
		env[k] = v
	}

	program, err := expr.Compile(src, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return Value{Kind: ValueNone}, err
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return Value{Kind: ValueNone}, err
	}

	return toValue(out), nil
}

func toValue(out any) Value {
	switch v := out.(type) {
	case nil:
		return Value{Kind: ValueNone}
	case bool:
		return Value{Kind: ValueBool, Bool: v}
	case int:
		return Value{Kind: ValueInt, Int: int64(v)}
	case int64:
		return Value{Kind: ValueInt, Int: v}
	case float64:
		return Value{Kind: ValueFloat, Flt: v}
	case string:
		return Value{Kind: ValueString, Str: v}
	default:
		return Value{Kind: ValueNone}
	}
}
