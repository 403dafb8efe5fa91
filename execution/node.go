package execution

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
)

// Node is one node of the physical plan. Stream builds the pull pipeline for
// the subtree, threading the hoisted constant environment into every stage.
// Construction wires the pipeline but never pulls from any child.
type Node interface {
	Stream(variables common.Variables) (RecordStream, error)
	String() string
}

type DataSourceNode struct {
	Source common.DataSource
	Name   string
}

func (dataSource DataSourceNode) Stream(variables common.Variables) (RecordStream, error) {
	return NewDataSourceStream(dataSource.Source, dataSource.Name)
}

func (dataSource DataSourceNode) String() string {
	return fmt.Sprintf("DataSource(%s, %s)", dataSource.Source, dataSource.Name)
}

type FilterNode struct {
	Input     Node
	Predicate Formula
}

func (filter FilterNode) Stream(variables common.Variables) (RecordStream, error) {
	source, err := filter.Input.Stream(variables)
	if err != nil {
		return nil, err
	}
	return NewFilterStream(filter.Predicate, variables, source), nil
}

func (filter FilterNode) String() string {
	return fmt.Sprintf("Filter(%s, %s)", filter.Predicate, filter.Input)
}

type MapNode struct {
	NamedList []Named
	Input     Node
}

func (mapNode MapNode) Stream(variables common.Variables) (RecordStream, error) {
	source, err := mapNode.Input.Stream(variables)
	if err != nil {
		return nil, err
	}
	return NewMapStream(mapNode.NamedList, variables, source), nil
}

func (mapNode MapNode) String() string {
	return fmt.Sprintf("Map(%v, %s)", mapNode.NamedList, mapNode.Input)
}

type GroupByNode struct {
	Fields     []common.VariableName
	Aggregates []NamedAggregate
	Input      Node
}

func (groupBy GroupByNode) Stream(variables common.Variables) (RecordStream, error) {
	source, err := groupBy.Input.Stream(variables)
	if err != nil {
		return nil, err
	}
	return NewGroupByStream(groupBy.Fields, groupBy.Aggregates, variables, source), nil
}

func (groupBy GroupByNode) String() string {
	return fmt.Sprintf("GroupBy(%v, %s)", groupBy.Fields, groupBy.Input)
}

type OrderByNode struct {
	Fields    []common.VariableName
	Orderings []Ordering
	Input     Node
}

func (orderBy OrderByNode) Stream(variables common.Variables) (RecordStream, error) {
	source, err := orderBy.Input.Stream(variables)
	if err != nil {
		return nil, err
	}
	return NewOrderByStream(orderBy.Fields, orderBy.Orderings, variables, source), nil
}

func (orderBy OrderByNode) String() string {
	return fmt.Sprintf("OrderBy(%v, %s)", orderBy.Fields, orderBy.Input)
}

type LimitNode struct {
	Count int
	Input Node
}

func (limit LimitNode) Stream(variables common.Variables) (RecordStream, error) {
	source, err := limit.Input.Stream(variables)
	if err != nil {
		return nil, err
	}
	return NewLimitStream(limit.Count, source), nil
}

func (limit LimitNode) String() string {
	return fmt.Sprintf("Limit(%d, %s)", limit.Count, limit.Input)
}
