package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/logquery/common"
)

func TestOrderByStreamAsc(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"port"},
		[]Ordering{Asc},
		common.EmptyVariables(),
		NewInMemoryStream(hostPortRecords()),
	)
	result := drain(t, stream)
	assert.Equal(t, common.NewIntValue(8000), result[0].Data[1])
	assert.Equal(t, common.NewIntValue(8001), result[1].Data[1])
	assert.Equal(t, common.NewIntValue(8002), result[2].Data[1])
}

func TestOrderByStreamDesc(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"port"},
		[]Ordering{Desc},
		common.EmptyVariables(),
		NewInMemoryStream(hostPortRecords()),
	)
	result := drain(t, stream)
	assert.Equal(t, common.NewIntValue(8002), result[0].Data[1])
	assert.Equal(t, common.NewIntValue(8001), result[1].Data[1])
	assert.Equal(t, common.NewIntValue(8000), result[2].Data[1])
}

// Ties keep source order.
func TestOrderByStreamStable(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"host"},
		[]Ordering{Asc},
		common.EmptyVariables(),
		NewInMemoryStream(hostPortRecords()),
	)
	result := drain(t, stream)
	assert.Equal(t, common.NewIntValue(8000), result[0].Data[1])
	assert.Equal(t, common.NewIntValue(8002), result[1].Data[1])
	assert.Equal(t, common.NewStringValue("b.com"), result[2].Data[0])
}

// The leftmost field is the major key; later fields break its ties.
func TestOrderByStreamMultipleKeys(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"host", "port"},
		[]Ordering{Asc, Desc},
		common.EmptyVariables(),
		NewInMemoryStream(hostPortRecords()),
	)
	result := drain(t, stream)
	assert.Equal(t, common.NewIntValue(8002), result[0].Data[1])
	assert.Equal(t, common.NewIntValue(8000), result[1].Data[1])
	assert.Equal(t, common.NewIntValue(8001), result[2].Data[1])
}

// A missing ordering entry defaults to ascending.
func TestOrderByStreamDefaultOrdering(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"host", "port"},
		[]Ordering{Desc},
		common.EmptyVariables(),
		NewInMemoryStream(hostPortRecords()),
	)
	result := drain(t, stream)
	assert.Equal(t, common.NewStringValue("b.com"), result[0].Data[0])
	assert.Equal(t, common.NewIntValue(8000), result[1].Data[1])
	assert.Equal(t, common.NewIntValue(8002), result[2].Data[1])
}

func TestOrderByStreamMissingField(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"missing"},
		[]Ordering{Asc},
		common.EmptyVariables(),
		NewInMemoryStream(hostPortRecords()),
	)
	_, err := stream.Next()
	assert.ErrorIs(t, err, common.ErrUndefinedVariable)
}

// A failed sort must not turn into clean exhaustion on the next pull.
func TestOrderByStreamErrorIsSticky(t *testing.T) {
	records := []*Record{
		NewRecord([]common.VariableName{"k"}, []common.Value{common.NewIntValue(1)}),
		NewRecord([]common.VariableName{"k"}, []common.Value{common.NewStringValue("x")}),
	}
	stream := NewOrderByStream(
		[]common.VariableName{"k"},
		[]Ordering{Asc},
		common.EmptyVariables(),
		NewInMemoryStream(records),
	)

	record, err := stream.Next()
	assert.Nil(t, record)
	assert.ErrorIs(t, err, common.ErrTypeMismatch)

	record, err = stream.Next()
	assert.Nil(t, record)
	assert.ErrorIs(t, err, common.ErrTypeMismatch)
}

func TestOrderByStreamEmpty(t *testing.T) {
	stream := NewOrderByStream(
		[]common.VariableName{"port"},
		[]Ordering{Asc},
		common.EmptyVariables(),
		NewInMemoryStream(nil),
	)
	assert.Empty(t, drain(t, stream))
}
