package plan

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
	"github.com/xiaobogaga/logquery/execution"
)

// LogicPlan is one node of the logical plan tree. Physical lowers the
// subtree into its executable counterpart, returning the merged constant
// bindings hoisted out of it. Lowering is pure and deterministic for a given
// creator state; it only advances the creator's counter.
type LogicPlan interface {
	Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error)
	Child() []LogicPlan
	String() string
}

type DataSourceLogicPlan struct {
	Source common.DataSource
	Name   string
}

func (dataSource DataSourceLogicPlan) Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error) {
	node := execution.DataSourceNode{Source: dataSource.Source, Name: dataSource.Name}
	return node, common.EmptyVariables(), nil
}

func (dataSource DataSourceLogicPlan) Child() []LogicPlan {
	return nil
}

func (dataSource DataSourceLogicPlan) String() string {
	return fmt.Sprintf("DataSource(%s, %s)", dataSource.Source, dataSource.Name)
}

type FilterLogicPlan struct {
	Predicate Formula
	Input     LogicPlan
}

func (filter FilterLogicPlan) Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error) {
	predicate, predicateVariables, err := filter.Predicate.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	input, inputVariables, err := filter.Input.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	node := execution.FilterNode{Input: input, Predicate: predicate}
	return node, common.Merge(predicateVariables, inputVariables), nil
}

func (filter FilterLogicPlan) Child() []LogicPlan {
	return []LogicPlan{filter.Input}
}

func (filter FilterLogicPlan) String() string {
	return fmt.Sprintf("Filter(%s, %s)", filter.Predicate, filter.Input)
}

type MapLogicPlan struct {
	NamedList []Named
	Input     LogicPlan
}

// The named list lowers left to right, which fixes constant numbering.
// Child bindings merge last, so they win on name collision.
func (mapPlan MapLogicPlan) Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error) {
	namedList := make([]execution.Named, 0, len(mapPlan.NamedList))
	variables := common.EmptyVariables()
	for _, named := range mapPlan.NamedList {
		physical, namedVariables, err := named.Physical(creator)
		if err != nil {
			return nil, nil, err
		}
		namedList = append(namedList, physical)
		variables = common.Merge(variables, namedVariables)
	}
	input, inputVariables, err := mapPlan.Input.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	node := execution.MapNode{NamedList: namedList, Input: input}
	return node, common.Merge(variables, inputVariables), nil
}

func (mapPlan MapLogicPlan) Child() []LogicPlan {
	return []LogicPlan{mapPlan.Input}
}

func (mapPlan MapLogicPlan) String() string {
	return fmt.Sprintf("Map(%v, %s)", mapPlan.NamedList, mapPlan.Input)
}

type GroupByLogicPlan struct {
	Fields     []common.VariableName
	Aggregates []NamedAggregate
	Input      LogicPlan
}

func (groupBy GroupByLogicPlan) Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error) {
	aggregates := make([]execution.NamedAggregate, 0, len(groupBy.Aggregates))
	variables := common.EmptyVariables()
	for _, aggregate := range groupBy.Aggregates {
		physical, aggregateVariables, err := aggregate.Physical(creator)
		if err != nil {
			return nil, nil, err
		}
		variables = common.Merge(variables, aggregateVariables)
		aggregates = append(aggregates, physical)
	}
	input, inputVariables, err := groupBy.Input.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	node := execution.GroupByNode{Fields: groupBy.Fields, Aggregates: aggregates, Input: input}
	return node, common.Merge(variables, inputVariables), nil
}

func (groupBy GroupByLogicPlan) Child() []LogicPlan {
	return []LogicPlan{groupBy.Input}
}

func (groupBy GroupByLogicPlan) String() string {
	return fmt.Sprintf("GroupBy(%v, %s)", groupBy.Fields, groupBy.Input)
}

type LimitLogicPlan struct {
	Count int
	Input LogicPlan
}

func (limit LimitLogicPlan) Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error) {
	input, inputVariables, err := limit.Input.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	node := execution.LimitNode{Count: limit.Count, Input: input}
	return node, inputVariables, nil
}

func (limit LimitLogicPlan) Child() []LogicPlan {
	return []LogicPlan{limit.Input}
}

func (limit LimitLogicPlan) String() string {
	return fmt.Sprintf("Limit(%d, %s)", limit.Count, limit.Input)
}

type OrderByLogicPlan struct {
	Fields    []common.VariableName
	Orderings []Ordering
	Input     LogicPlan
}

func (orderBy OrderByLogicPlan) Physical(creator *PhysicalPlanCreator) (execution.Node, common.Variables, error) {
	input, inputVariables, err := orderBy.Input.Physical(creator)
	if err != nil {
		return nil, nil, err
	}
	orderings := make([]execution.Ordering, 0, len(orderBy.Orderings))
	for _, ordering := range orderBy.Orderings {
		physical, err := ordering.Physical()
		if err != nil {
			return nil, nil, err
		}
		orderings = append(orderings, physical)
	}
	node := execution.OrderByNode{Fields: orderBy.Fields, Orderings: orderings, Input: input}
	return node, inputVariables, nil
}

func (orderBy OrderByLogicPlan) Child() []LogicPlan {
	return []LogicPlan{orderBy.Input}
}

func (orderBy OrderByLogicPlan) String() string {
	return fmt.Sprintf("OrderBy(%v, %s)", orderBy.Fields, orderBy.Input)
}
