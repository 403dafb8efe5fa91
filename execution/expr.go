package execution

import (
	"fmt"
	"github.com/xiaobogaga/logquery/common"
)

// Expr is a physical expression. After lowering, expressions reference only
// variable names: literals from the logical plan live in the constant
// environment under synthetic names, so evaluation is a lookup against the
// merged runtime+constant environment for every kind of operand.
type Expr interface {
	Evaluate(variables common.Variables) (common.Value, error)
	String() string
}

type VariableExpr struct {
	Name common.VariableName
}

func (variable VariableExpr) Evaluate(variables common.Variables) (common.Value, error) {
	value, ok := variables[variable.Name]
	if !ok {
		return common.Value{}, fmt.Errorf("%w: %s", common.ErrUndefinedVariable, variable.Name)
	}
	return value, nil
}

func (variable VariableExpr) String() string {
	return variable.Name
}

// LogicExpr wraps a formula so a boolean condition can appear in value
// position.
type LogicExpr struct {
	Formula Formula
}

func (logic LogicExpr) Evaluate(variables common.Variables) (common.Value, error) {
	b, err := logic.Formula.Evaluate(variables)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewBoolValue(b), nil
}

func (logic LogicExpr) String() string {
	return logic.Formula.String()
}

type FuncCallExpr struct {
	Name string
	Args []Named
}

func (funcCall FuncCallExpr) Evaluate(variables common.Variables) (common.Value, error) {
	fn := getFunc(funcCall.Name)
	if fn == nil {
		return common.Value{}, fmt.Errorf("%w: unknown function '%s'", common.ErrPlanNotSupported, funcCall.Name)
	}
	if len(funcCall.Args) != fn.ParamSize {
		return common.Value{}, fmt.Errorf("%w: %s takes %d params, got %d", common.ErrTypeMismatch,
			fn.Name, fn.ParamSize, len(funcCall.Args))
	}
	params := make([]common.Value, 0, len(funcCall.Args))
	for _, arg := range funcCall.Args {
		named, ok := arg.(NamedExpr)
		if !ok {
			return common.Value{}, fmt.Errorf("%w: * is not a valid function argument", common.ErrTypeMismatch)
		}
		value, err := named.Expr.Evaluate(variables)
		if err != nil {
			return common.Value{}, err
		}
		params = append(params, value)
	}
	return fn.Fn(params)
}

func (funcCall FuncCallExpr) String() string {
	args := ""
	for i, arg := range funcCall.Args {
		if i > 0 {
			args += ", "
		}
		args += arg.String()
	}
	return fmt.Sprintf("%s(%s)", funcCall.Name, args)
}

// Named is one output column of a Map stage: either an aliased expression or
// the wildcard passing every source field through unchanged.
type Named interface {
	String() string
}

type NamedExpr struct {
	Expr  Expr
	Alias common.VariableName
}

// FieldName is the output column name: the alias when one was given,
// otherwise the expression itself.
func (named NamedExpr) FieldName() common.VariableName {
	if named.Alias != "" {
		return named.Alias
	}
	return named.Expr.String()
}

func (named NamedExpr) String() string {
	if named.Alias != "" {
		return fmt.Sprintf("%s as %s", named.Expr, named.Alias)
	}
	return named.Expr.String()
}

type Star struct{}

func (star Star) String() string {
	return "*"
}
