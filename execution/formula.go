package execution

import (
	"fmt"
	"github.com/xiaobogaga/logquery/common"
)

// Formula is a physical boolean condition evaluated against the merged
// environment.
type Formula interface {
	Evaluate(variables common.Variables) (bool, error)
	String() string
}

type AndFormula struct {
	Left  Formula
	Right Formula
}

func (and AndFormula) Evaluate(variables common.Variables) (bool, error) {
	left, err := and.Left.Evaluate(variables)
	if err != nil {
		return false, err
	}
	right, err := and.Right.Evaluate(variables)
	if err != nil {
		return false, err
	}
	return left && right, nil
}

func (and AndFormula) String() string {
	return fmt.Sprintf("And(%s, %s)", and.Left, and.Right)
}

type OrFormula struct {
	Left  Formula
	Right Formula
}

func (or OrFormula) Evaluate(variables common.Variables) (bool, error) {
	left, err := or.Left.Evaluate(variables)
	if err != nil {
		return false, err
	}
	right, err := or.Right.Evaluate(variables)
	if err != nil {
		return false, err
	}
	return left || right, nil
}

func (or OrFormula) String() string {
	return fmt.Sprintf("Or(%s, %s)", or.Left, or.Right)
}

type NotFormula struct {
	Input Formula
}

func (not NotFormula) Evaluate(variables common.Variables) (bool, error) {
	value, err := not.Input.Evaluate(variables)
	if err != nil {
		return false, err
	}
	return !value, nil
}

func (not NotFormula) String() string {
	return fmt.Sprintf("Not(%s)", not.Input)
}

type ConstantFormula struct {
	Value bool
}

func (constant ConstantFormula) Evaluate(variables common.Variables) (bool, error) {
	return constant.Value, nil
}

func (constant ConstantFormula) String() string {
	return fmt.Sprintf("%t", constant.Value)
}

type PredicateFormula struct {
	Rel   Relation
	Left  Expr
	Right Expr
}

func (predicate PredicateFormula) Evaluate(variables common.Variables) (bool, error) {
	left, err := predicate.Left.Evaluate(variables)
	if err != nil {
		return false, err
	}
	right, err := predicate.Right.Evaluate(variables)
	if err != nil {
		return false, err
	}
	return predicate.Rel.Apply(left, right)
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

func (rel Relation) Apply(left, right common.Value) (bool, error) {
	cmp, err := left.Compare(right)
	if err != nil {
		return false, err
	}
	switch rel {
	case Equal:
		return cmp == 0, nil
	case NotEqual:
		return cmp != 0, nil
	case MoreThan:
		return cmp > 0, nil
	case LessThan:
		return cmp < 0, nil
	case GreaterEqual:
		return cmp >= 0, nil
	case LessEqual:
		return cmp <= 0, nil
	default:
		return false, fmt.Errorf("%w: unknown relation %d", common.ErrTypeMismatch, rel)
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

func (ordering Ordering) String() string {
	if ordering == Desc {
		return "desc"
	}
	return "asc"
}
