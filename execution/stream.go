package execution

import (
	"github.com/xiaobogaga/logquery/common"
)

// Record is one row flowing through the stream pipeline. FieldNames and Data
// align positionally; field names of different records emitted by different
// stages may repeat.
type Record struct {
	FieldNames []common.VariableName
	Data       []common.Value
}

func NewRecord(fieldNames []common.VariableName, data []common.Value) *Record {
	return &Record{FieldNames: fieldNames, Data: data}
}

type Tuple struct {
	Name  common.VariableName
	Value common.Value
}

func (record *Record) ToVariables() common.Variables {
	variables := make(common.Variables, len(record.FieldNames))
	for i, name := range record.FieldNames {
		variables[name] = record.Data[i]
	}
	return variables
}

// ToTuples keeps the field declaration order. Star expansion relies on it.
func (record *Record) ToTuples() []Tuple {
	ret := make([]Tuple, len(record.FieldNames))
	for i, name := range record.FieldNames {
		ret[i] = Tuple{Name: name, Value: record.Data[i]}
	}
	return ret
}

// RecordStream is the pull iterator over one pipeline stage. Next returns
// (nil, nil) once the stream is exhausted and keeps doing so on later calls.
// A stream is consumed once; re-running a query means rebuilding the
// pipeline from the physical plan. Close releases underlying resources, is
// safe to call more than once and safe to call on a partially consumed
// stream.
type RecordStream interface {
	Next() (*Record, error)
	Close()
}

// MapStream projects each source record through its named list. The stage's
// compile-time constants are merged under the record's own bindings, record
// values winning on collision, matching the planner's merge precedence.
type MapStream struct {
	NamedList []Named
	Variables common.Variables
	Source    RecordStream
}

func NewMapStream(namedList []Named, variables common.Variables, source RecordStream) *MapStream {
	return &MapStream{NamedList: namedList, Variables: variables, Source: source}
}

func (stream *MapStream) Next() (*Record, error) {
	record, err := stream.Source.Next()
	if err != nil || record == nil {
		return nil, err
	}
	variables := common.Merge(stream.Variables, record.ToVariables())
	var fieldNames []common.VariableName
	var data []common.Value
	for _, named := range stream.NamedList {
		switch named := named.(type) {
		case NamedExpr:
			value, err := named.Expr.Evaluate(variables)
			if err != nil {
				return nil, err
			}
			fieldNames = append(fieldNames, named.FieldName())
			data = append(data, value)
		case Star:
			for _, tuple := range record.ToTuples() {
				fieldNames = append(fieldNames, tuple.Name)
				data = append(data, tuple.Value)
			}
		}
	}
	return NewRecord(fieldNames, data), nil
}

func (stream *MapStream) Close() {
	stream.Source.Close()
}

// FilterStream yields the source records whose formula evaluates true. One
// Next call may consume any number of source records.
type FilterStream struct {
	Formula   Formula
	Variables common.Variables
	Source    RecordStream
}

func NewFilterStream(formula Formula, variables common.Variables, source RecordStream) *FilterStream {
	return &FilterStream{Formula: formula, Variables: variables, Source: source}
}

func (stream *FilterStream) Next() (*Record, error) {
	for {
		record, err := stream.Source.Next()
		if err != nil || record == nil {
			return nil, err
		}
		variables := common.Merge(stream.Variables, record.ToVariables())
		predicate, err := stream.Formula.Evaluate(variables)
		if err != nil {
			return nil, err
		}
		if predicate {
			return record, nil
		}
	}
}

func (stream *FilterStream) Close() {
	stream.Source.Close()
}

// LimitStream passes through at most Count records, then reports exhaustion
// without pulling from the source again.
type LimitStream struct {
	Count  int
	Source RecordStream
	seen   int
}

func NewLimitStream(count int, source RecordStream) *LimitStream {
	return &LimitStream{Count: count, Source: source}
}

func (stream *LimitStream) Next() (*Record, error) {
	if stream.seen >= stream.Count {
		return nil, nil
	}
	record, err := stream.Source.Next()
	if err != nil || record == nil {
		return nil, err
	}
	stream.seen++
	return record, nil
}

func (stream *LimitStream) Close() {
	stream.Source.Close()
}
