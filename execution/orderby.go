package execution

import (
	"fmt"
	"sort"

	"github.com/xiaobogaga/logquery/common"
)

// OrderByStream buffers the entire source, sorts it with leftmost-field-major
// precedence and yields the buffered records one by one. The sort is stable:
// equal keys preserve original relative order.
type OrderByStream struct {
	Fields    []common.VariableName
	Orderings []Ordering
	Variables common.Variables
	Source    RecordStream
	buffered  []*Record
	index     int
	done      bool
	err       error
}

func NewOrderByStream(fields []common.VariableName, orderings []Ordering,
	variables common.Variables, source RecordStream) *OrderByStream {
	return &OrderByStream{Fields: fields, Orderings: orderings, Variables: variables, Source: source}
}

// Next fails sticky, like GroupByStream: a failed sort never turns into
// clean exhaustion on the following pull.
func (stream *OrderByStream) Next() (*Record, error) {
	if stream.err != nil {
		return nil, stream.err
	}
	if !stream.done {
		if err := stream.initializeAndSort(); err != nil {
			stream.err = err
			stream.buffered = nil
			return nil, err
		}
	}
	if stream.index >= len(stream.buffered) {
		return nil, nil
	}
	record := stream.buffered[stream.index]
	stream.index++
	return record, nil
}

type sortableRecord struct {
	record *Record
	key    []common.Value
}

func (stream *OrderByStream) initializeAndSort() error {
	var rows []sortableRecord
	for {
		record, err := stream.Source.Next()
		if err != nil {
			return err
		}
		if record == nil {
			break
		}
		key, err := stream.sortKey(record)
		if err != nil {
			return err
		}
		rows = append(rows, sortableRecord{record: record, key: key})
	}
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		less, err := stream.less(rows[i].key, rows[j].key)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return sortErr
	}
	stream.buffered = make([]*Record, len(rows))
	for i, row := range rows {
		stream.buffered[i] = row.record
	}
	stream.done = true
	return nil
}

func (stream *OrderByStream) sortKey(record *Record) ([]common.Value, error) {
	variables := common.Merge(stream.Variables, record.ToVariables())
	key := make([]common.Value, 0, len(stream.Fields))
	for _, field := range stream.Fields {
		value, ok := variables[field]
		if !ok {
			return nil, fmt.Errorf("%w: order by field %s", common.ErrUndefinedVariable, field)
		}
		key = append(key, value)
	}
	return key, nil
}

func (stream *OrderByStream) less(a, b []common.Value) (bool, error) {
	for i := range stream.Fields {
		cmp, err := a[i].Compare(b[i])
		if err != nil {
			return false, err
		}
		if cmp == 0 {
			continue
		}
		if stream.ordering(i) == Desc {
			return cmp > 0, nil
		}
		return cmp < 0, nil
	}
	return false, nil
}

func (stream *OrderByStream) ordering(i int) Ordering {
	if i < len(stream.Orderings) {
		return stream.Orderings[i]
	}
	return Asc
}

func (stream *OrderByStream) Close() {
	stream.Source.Close()
}
