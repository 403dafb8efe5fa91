package execution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/logquery/common"
)

func TestVariableExpr(t *testing.T) {
	variables := common.Variables{"host": common.NewStringValue("a.com")}
	value, err := VariableExpr{Name: "host"}.Evaluate(variables)
	assert.Nil(t, err)
	assert.Equal(t, common.NewStringValue("a.com"), value)

	_, err = VariableExpr{Name: "missing"}.Evaluate(variables)
	assert.ErrorIs(t, err, common.ErrUndefinedVariable)
}

func TestFuncCallExpr(t *testing.T) {
	variables := common.Variables{"name": common.NewStringValue("  MixedCase  ")}

	lower := FuncCallExpr{Name: "lower", Args: []Named{NamedExpr{Expr: VariableExpr{Name: "name"}}}}
	value, err := lower.Evaluate(variables)
	assert.Nil(t, err)
	assert.Equal(t, common.NewStringValue("  mixedcase  "), value)

	trim := FuncCallExpr{Name: "trim", Args: []Named{NamedExpr{Expr: VariableExpr{Name: "name"}}}}
	value, err = trim.Evaluate(variables)
	assert.Nil(t, err)
	assert.Equal(t, common.NewStringValue("MixedCase"), value)

	length := FuncCallExpr{Name: "length", Args: []Named{NamedExpr{Expr: VariableExpr{Name: "name"}}}}
	value, err = length.Evaluate(variables)
	assert.Nil(t, err)
	assert.Equal(t, common.NewIntValue(13), value)
}

func TestFuncCallExprAbs(t *testing.T) {
	variables := common.Variables{"v": common.NewIntValue(-3)}
	abs := FuncCallExpr{Name: "abs", Args: []Named{NamedExpr{Expr: VariableExpr{Name: "v"}}}}
	value, err := abs.Evaluate(variables)
	assert.Nil(t, err)
	assert.Equal(t, common.NewIntValue(3), value)

	variables["v"] = common.NewFloatValue(-1.5)
	value, err = abs.Evaluate(variables)
	assert.Nil(t, err)
	assert.Equal(t, common.NewFloatValue(1.5), value)

	// -MinInt64 is not representable.
	variables["v"] = common.NewIntValue(math.MinInt64)
	_, err = abs.Evaluate(variables)
	assert.ErrorIs(t, err, common.ErrTypeMismatch)

	variables["v"] = common.NewStringValue("x")
	_, err = abs.Evaluate(variables)
	assert.ErrorIs(t, err, common.ErrTypeMismatch)
}

func TestFuncCallExprErrors(t *testing.T) {
	unknown := FuncCallExpr{Name: "nope", Args: []Named{NamedExpr{Expr: VariableExpr{Name: "v"}}}}
	_, err := unknown.Evaluate(common.EmptyVariables())
	assert.NotNil(t, err)

	star := FuncCallExpr{Name: "lower", Args: []Named{Star{}}}
	_, err = star.Evaluate(common.EmptyVariables())
	assert.ErrorIs(t, err, common.ErrTypeMismatch)

	arity := FuncCallExpr{Name: "lower", Args: nil}
	_, err = arity.Evaluate(common.EmptyVariables())
	assert.NotNil(t, err)
}

func TestPredicateFormula(t *testing.T) {
	variables := common.Variables{
		"status": common.NewIntValue(500),
		"limit":  common.NewIntValue(400),
	}
	check := func(rel Relation, expected bool) {
		formula := PredicateFormula{
			Rel:   rel,
			Left:  VariableExpr{Name: "status"},
			Right: VariableExpr{Name: "limit"},
		}
		got, err := formula.Evaluate(variables)
		assert.Nil(t, err)
		assert.Equal(t, expected, got)
	}
	check(Equal, false)
	check(NotEqual, true)
	check(MoreThan, true)
	check(LessThan, false)
	check(GreaterEqual, true)
	check(LessEqual, false)
}

func TestBooleanFormulas(t *testing.T) {
	yes := ConstantFormula{Value: true}
	no := ConstantFormula{Value: false}
	variables := common.EmptyVariables()

	got, err := AndFormula{Left: yes, Right: no}.Evaluate(variables)
	assert.Nil(t, err)
	assert.False(t, got)

	got, err = OrFormula{Left: yes, Right: no}.Evaluate(variables)
	assert.Nil(t, err)
	assert.True(t, got)

	got, err = NotFormula{Input: no}.Evaluate(variables)
	assert.Nil(t, err)
	assert.True(t, got)
}

func TestNamedExprFieldName(t *testing.T) {
	named := NamedExpr{Expr: VariableExpr{Name: "port"}, Alias: "p"}
	assert.Equal(t, common.VariableName("p"), named.FieldName())

	unnamed := NamedExpr{Expr: VariableExpr{Name: "port"}}
	assert.Equal(t, common.VariableName("port"), unnamed.FieldName())
}
