package plan

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
	"github.com/xiaobogaga/logquery/execution"
)

// Aggregate is one logical aggregate operator. Physical pairs the lowered
// operand with a fresh, zero-state accumulator of the matching kind.
type Aggregate interface {
	Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error)
	String() string
}

// NamedAggregate pairs an aggregate with an optional output alias.
type NamedAggregate struct {
	Aggregate Aggregate
	Name      common.VariableName
}

func NewNamedAggregate(aggregate Aggregate, name common.VariableName) NamedAggregate {
	return NamedAggregate{Aggregate: aggregate, Name: name}
}

func (named NamedAggregate) Physical(creator *PhysicalPlanCreator) (execution.NamedAggregate, common.Variables, error) {
	aggregate, variables, err := named.Aggregate.Physical(creator)
	if err != nil {
		return execution.NamedAggregate{}, nil, err
	}
	return execution.NewNamedAggregate(aggregate, named.Name), variables, nil
}

func (named NamedAggregate) String() string {
	if named.Name != "" {
		return fmt.Sprintf("%s as %s", named.Aggregate, named.Name)
	}
	return named.Aggregate.String()
}

// lowerAggregateOperand lowers a unary aggregate operand exactly as Map
// lowers a Named: an expression contributes its hoisted bindings, Star
// contributes none.
func lowerAggregateOperand(named Named, creator *PhysicalPlanCreator) (execution.Named, common.Variables, error) {
	return named.Physical(creator)
}

type AvgAggregate struct {
	Named Named
}

func (avg AvgAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(avg.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewAvgAggregate(named), variables, nil
}

func (avg AvgAggregate) String() string {
	return fmt.Sprintf("avg(%s)", avg.Named)
}

type CountAggregate struct {
	Named Named
}

func (count CountAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(count.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewCountAggregate(named), variables, nil
}

func (count CountAggregate) String() string {
	return fmt.Sprintf("count(%s)", count.Named)
}

type SumAggregate struct {
	Named Named
}

func (sum SumAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(sum.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewSumAggregate(named), variables, nil
}

func (sum SumAggregate) String() string {
	return fmt.Sprintf("sum(%s)", sum.Named)
}

type FirstAggregate struct {
	Named Named
}

func (first FirstAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(first.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewFirstAggregate(named), variables, nil
}

func (first FirstAggregate) String() string {
	return fmt.Sprintf("first(%s)", first.Named)
}

type LastAggregate struct {
	Named Named
}

func (last LastAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(last.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewLastAggregate(named), variables, nil
}

func (last LastAggregate) String() string {
	return fmt.Sprintf("last(%s)", last.Named)
}

type MinAggregate struct {
	Named Named
}

func (min MinAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(min.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewMinAggregate(named), variables, nil
}

func (min MinAggregate) String() string {
	return fmt.Sprintf("min(%s)", min.Named)
}

type MaxAggregate struct {
	Named Named
}

func (max MaxAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(max.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewMaxAggregate(named), variables, nil
}

func (max MaxAggregate) String() string {
	return fmt.Sprintf("max(%s)", max.Named)
}

type ApproxCountDistinctAggregate struct {
	Named Named
}

func (distinct ApproxCountDistinctAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	named, variables, err := lowerAggregateOperand(distinct.Named, creator)
	if err != nil {
		return nil, nil, err
	}
	return execution.NewApproxCountDistinctAggregate(named), variables, nil
}

func (distinct ApproxCountDistinctAggregate) String() string {
	return fmt.Sprintf("approx_count_distinct(%s)", distinct.Named)
}

// PercentileDiscAggregate carries no operand expression: the target is a
// plain column name, so lowering contributes no bindings.
type PercentileDiscAggregate struct {
	Percentile float64
	Column     common.VariableName
	Ordering   Ordering
}

func (percentile PercentileDiscAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	ordering, err := percentile.Ordering.Physical()
	if err != nil {
		return nil, nil, err
	}
	aggregate := execution.NewPercentileDiscAggregate(percentile.Percentile, percentile.Column, ordering)
	return aggregate, common.EmptyVariables(), nil
}

func (percentile PercentileDiscAggregate) String() string {
	return fmt.Sprintf("percentile_disc(%v, %s %s)", percentile.Percentile, percentile.Column, percentile.Ordering)
}

type ApproxPercentileAggregate struct {
	Percentile float64
	Column     common.VariableName
	Ordering   Ordering
}

func (percentile ApproxPercentileAggregate) Physical(creator *PhysicalPlanCreator) (execution.Aggregate, common.Variables, error) {
	ordering, err := percentile.Ordering.Physical()
	if err != nil {
		return nil, nil, err
	}
	aggregate := execution.NewApproxPercentileAggregate(percentile.Percentile, percentile.Column, ordering)
	return aggregate, common.EmptyVariables(), nil
}

func (percentile ApproxPercentileAggregate) String() string {
	return fmt.Sprintf("approx_percentile(%v, %s %s)", percentile.Percentile, percentile.Column, percentile.Ordering)
}
