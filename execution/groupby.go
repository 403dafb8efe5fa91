package execution

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
)

// GroupByStream buckets the source by the tuple of grouping-field values and
// feeds every bucket's rows into per-bucket accumulator clones. Aggregation
// is blocking: the whole source is consumed on the first pull, which is the
// documented latency/memory trade-off.
type GroupByStream struct {
	Fields     []common.VariableName
	Aggregates []NamedAggregate
	Variables  common.Variables
	Source     RecordStream
	groups     []*Record
	index      int
	done       bool
	err        error
}

func NewGroupByStream(fields []common.VariableName, aggregates []NamedAggregate,
	variables common.Variables, source RecordStream) *GroupByStream {
	return &GroupByStream{Fields: fields, Aggregates: aggregates, Variables: variables, Source: source}
}

type group struct {
	keyValues  []common.Value
	aggregates []NamedAggregate
}

// Next fails sticky: once initialization errors, every later call returns
// the same error rather than partially built groups.
func (stream *GroupByStream) Next() (*Record, error) {
	if stream.err != nil {
		return nil, stream.err
	}
	if !stream.done {
		if err := stream.initialize(); err != nil {
			stream.err = err
			stream.groups = nil
			return nil, err
		}
	}
	if stream.index >= len(stream.groups) {
		return nil, nil
	}
	record := stream.groups[stream.index]
	stream.index++
	return record, nil
}

// initialize drains the source, bucketing rows in arrival order. Buckets are
// emitted in first-seen order; group key equality is exact value equality.
func (stream *GroupByStream) initialize() error {
	buckets := map[string]*group{}
	var order []string
	for {
		record, err := stream.Source.Next()
		if err != nil {
			return err
		}
		if record == nil {
			break
		}
		variables := common.Merge(stream.Variables, record.ToVariables())
		key, keyValues, err := stream.groupKey(variables)
		if err != nil {
			return err
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &group{keyValues: keyValues, aggregates: stream.cloneAggregates()}
			buckets[key] = bucket
			order = append(order, key)
		}
		for _, aggregate := range bucket.aggregates {
			if err := aggregate.Aggregate.Update(variables); err != nil {
				return err
			}
		}
	}
	for _, key := range order {
		record, err := stream.groupRecord(buckets[key])
		if err != nil {
			return err
		}
		stream.groups = append(stream.groups, record)
	}
	stream.done = true
	return nil
}

func (stream *GroupByStream) groupKey(variables common.Variables) (string, []common.Value, error) {
	keyValues := make([]common.Value, 0, len(stream.Fields))
	key := make([]byte, 0, 16*len(stream.Fields))
	for _, field := range stream.Fields {
		value, ok := variables[field]
		if !ok {
			return "", nil, fmt.Errorf("%w: group by field %s", common.ErrUndefinedVariable, field)
		}
		keyValues = append(keyValues, value)
		encoded := value.Encode()
		key = append(key, byte(len(encoded)>>8), byte(len(encoded)))
		key = append(key, encoded...)
	}
	return string(key), keyValues, nil
}

func (stream *GroupByStream) cloneAggregates() []NamedAggregate {
	ret := make([]NamedAggregate, len(stream.Aggregates))
	for i, aggregate := range stream.Aggregates {
		ret[i] = aggregate.Clone()
	}
	return ret
}

// groupRecord lays out grouping-field values first, aggregate results after,
// both in declared order.
func (stream *GroupByStream) groupRecord(bucket *group) (*Record, error) {
	fieldNames := make([]common.VariableName, 0, len(stream.Fields)+len(bucket.aggregates))
	data := make([]common.Value, 0, len(stream.Fields)+len(bucket.aggregates))
	for i, field := range stream.Fields {
		fieldNames = append(fieldNames, field)
		data = append(data, bucket.keyValues[i])
	}
	for _, aggregate := range bucket.aggregates {
		value, err := aggregate.Aggregate.Value()
		if err != nil {
			return nil, err
		}
		fieldNames = append(fieldNames, aggregate.FieldName())
		data = append(data, value)
	}
	return NewRecord(fieldNames, data), nil
}

func (stream *GroupByStream) Close() {
	stream.Source.Close()
}
