package plan

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
	"github.com/xiaobogaga/logquery/execution"
)

// LogicExpr is a logical expression. Physical lowers it into its executable
// counterpart and returns the constant bindings hoisted out of the subtree.
type LogicExpr interface {
	Physical(creator *PhysicalPlanCreator) (execution.Expr, common.Variables, error)
	String() string
}

// ConstantLogicExpr is the one lowering case that consumes a counter tick:
// the literal moves into the returned bindings under a synthetic name and
// the physical expression is a plain variable reference. The physical tree
// never carries literal values inline.
type ConstantLogicExpr struct {
	Value common.Value
}

func (constant ConstantLogicExpr) Physical(creator *PhysicalPlanCreator) (execution.Expr, common.Variables, error) {
	name := creator.NewConstantName()
	variables := common.Variables{name: constant.Value}
	return execution.VariableExpr{Name: name}, variables, nil
}

func (constant ConstantLogicExpr) String() string {
	return constant.Value.String()
}

type IdentifierLogicExpr struct {
	Name common.VariableName
}

func (identifier IdentifierLogicExpr) Physical(creator *PhysicalPlanCreator) (execution.Expr, common.Variables, error) {
	return execution.VariableExpr{Name: identifier.Name}, common.EmptyVariables(), nil
}

func (identifier IdentifierLogicExpr) String() string {
	return identifier.Name
}

// FormulaLogicExpr wraps a formula in value position.
type FormulaLogicExpr struct {
	Formula Formula
}

func (formula FormulaLogicExpr) Physical(creator *PhysicalPlanCreator) (execution.Expr, common.Variables, error) {
	physical, variables, err := formula.Formula.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.LogicExpr{Formula: physical}, variables, nil
}

func (formula FormulaLogicExpr) String() string {
	return formula.Formula.String()
}

type FuncCallLogicExpr struct {
	Name string
	Args []Named
}

func (funcCall FuncCallLogicExpr) Physical(creator *PhysicalPlanCreator) (execution.Expr, common.Variables, error) {
	args := make([]execution.Named, 0, len(funcCall.Args))
	variables := common.EmptyVariables()
	for _, arg := range funcCall.Args {
		physical, argVariables, err := arg.Physical(creator)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, physical)
		variables = common.Merge(variables, argVariables)
	}
	return execution.FuncCallExpr{Name: funcCall.Name, Args: args}, variables, nil
}

func (funcCall FuncCallLogicExpr) String() string {
	args := ""
	for i, arg := range funcCall.Args {
		if i > 0 {
			args += ", "
		}
		args += arg.String()
	}
	return fmt.Sprintf("%s(%s)", funcCall.Name, args)
}

// Named is one Map output column: an aliased expression or Star.
type Named interface {
	Physical(creator *PhysicalPlanCreator) (execution.Named, common.Variables, error)
	String() string
}

type NamedExpr struct {
	Expr  LogicExpr
	Alias common.VariableName
}

func (named NamedExpr) Physical(creator *PhysicalPlanCreator) (execution.Named, common.Variables, error) {
	expr, variables, err := named.Expr.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NamedExpr{Expr: expr, Alias: named.Alias}, variables, nil
}

func (named NamedExpr) String() string {
	if named.Alias != "" {
		return fmt.Sprintf("%s as %s", named.Expr, named.Alias)
	}
	return named.Expr.String()
}

type Star struct{}

func (star Star) Physical(creator *PhysicalPlanCreator) (execution.Named, common.Variables, error) {
	return execution.Star{}, common.EmptyVariables(), nil
}

func (star Star) String() string {
	return "*"
}

// Formula is a logical boolean condition.
type Formula interface {
	Physical(creator *PhysicalPlanCreator) (execution.Formula, common.Variables, error)
	String() string
}

type AndFormula struct {
	Left  Formula
	Right Formula
}

func (and AndFormula) Physical(creator *PhysicalPlanCreator) (execution.Formula, common.Variables, error) {
	left, right, variables, err := lowerFormulaPair(and.Left, and.Right, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.AndFormula{Left: left, Right: right}, variables, nil
}

func (and AndFormula) String() string {
	return fmt.Sprintf("And(%s, %s)", and.Left, and.Right)
}

type OrFormula struct {
	Left  Formula
	Right Formula
}

func (or OrFormula) Physical(creator *PhysicalPlanCreator) (execution.Formula, common.Variables, error) {
	left, right, variables, err := lowerFormulaPair(or.Left, or.Right, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.OrFormula{Left: left, Right: right}, variables, nil
}

func (or OrFormula) String() string {
	return fmt.Sprintf("Or(%s, %s)", or.Left, or.Right)
}

func lowerFormulaPair(left, right Formula, creator *PhysicalPlanCreator) (execution.Formula, execution.Formula, common.Variables, error) {
	physicalLeft, leftVariables, err := left.Physical(creator)
	if err != nil {
		return nil, nil, nil, err
	}
	physicalRight, rightVariables, err := right.Physical(creator)
	if err != nil {
		return nil, nil, nil, err
	}
	return physicalLeft, physicalRight, common.Merge(leftVariables, rightVariables), nil
}

type NotFormula struct {
	Input Formula
}

func (not NotFormula) Physical(creator *PhysicalPlanCreator) (execution.Formula, common.Variables, error) {
	input, variables, err := not.Input.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NotFormula{Input: input}, variables, nil
}

func (not NotFormula) String() string {
	return fmt.Sprintf("Not(%s)", not.Input)
}

type ConstantFormula struct {
	Value bool
}

func (constant ConstantFormula) Physical(creator *PhysicalPlanCreator) (execution.Formula, common.Variables, error) {
	return execution.ConstantFormula{Value: constant.Value}, common.EmptyVariables(), nil
}

func (constant ConstantFormula) String() string {
	return fmt.Sprintf("%t", constant.Value)
}

type PredicateFormula struct {
	Rel   Relation
	Left  LogicExpr
	Right LogicExpr
}

func (predicate PredicateFormula) Physical(creator *PhysicalPlanCreator) (execution.Formula, common.Variables, error) {
	left, leftVariables, err := predicate.Left.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	right, rightVariables, err := predicate.Right.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	rel, err := predicate.Rel.Physical()
	if err != nil {
		return nil, nil, err
	}
	return execution.PredicateFormula{Rel: rel, Left: left, Right: right},
		common.Merge(leftVariables, rightVariables), nil
}

func (predicate PredicateFormula) String() string {
	return fmt.Sprintf("%s(%s, %s)", predicate.Rel, predicate.Left, predicate.Right)
}

type Relation int

const (
	Equal Relation = iota
	NotEqual
	MoreThan
	LessThan
	GreaterEqual
	LessEqual
)

// Physical is a 1:1 mapping today. It stays fallible so relation kinds the
// data source cannot represent can be rejected here later.
func (rel Relation) Physical() (execution.Relation, error) {
	switch rel {
	case Equal:
		return execution.Equal, nil
	case NotEqual:
		return execution.NotEqual, nil
	case MoreThan:
		return execution.MoreThan, nil
	case LessThan:
		return execution.LessThan, nil
	case GreaterEqual:
		return execution.GreaterEqual, nil
	case LessEqual:
		return execution.LessEqual, nil
	default:
		return 0, fmt.Errorf("%w: relation %d", common.ErrPlanNotSupported, rel)
	}
}

func (rel Relation) String() string {
	switch rel {
	case Equal:
		return "Equal"
	case NotEqual:
		return "NotEqual"
	case MoreThan:
		return "MoreThan"
	case LessThan:
		return "LessThan"
	case GreaterEqual:
		return "GreaterEqual"
	case LessEqual:
		return "LessEqual"
	default:
		return "unknown"
	}
}

type Ordering int

const (
	Asc Ordering = iota
	Desc
)

func (ordering Ordering) Physical() (execution.Ordering, error) {
	switch ordering {
	case Asc:
		return execution.Asc, nil
	case Desc:
		return execution.Desc, nil
	default:
		return 0, fmt.Errorf("%w: ordering %d", common.ErrPlanNotSupported, ordering)
	}
}

func (ordering Ordering) String() string {
	if ordering == Desc {
		return "desc"
	}
	return "asc"
}
