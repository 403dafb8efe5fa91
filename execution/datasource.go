package execution

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
	"github.com/xiaobogaga/logquery/reader"
	"github.com/xiaobogaga/logquery/util"
)

var sourceLog = util.GetLog("datasource")

// DataSourceStream wraps the raw log reader and projects each raw record
// into a Record. The stream owns the underlying handle exclusively.
type DataSourceStream struct {
	Name   string
	reader *reader.Reader
	read   int
	closed bool
}

func NewDataSourceStream(source common.DataSource, name string) (*DataSourceStream, error) {
	rdr, err := reader.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	sourceLog.DebugF("open %s as %s", source, name)
	return &DataSourceStream{Name: name, reader: rdr}, nil
}

func (stream *DataSourceStream) Next() (*Record, error) {
	record, err := stream.reader.ReadRecord()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", stream.Name, err)
	}
	if record == nil {
		return nil, nil
	}
	stream.read++
	fieldNames, data := record.Tuples()
	return NewRecord(fieldNames, data), nil
}

// Close releases the underlying handle. Calling it again is a no-op.
func (stream *DataSourceStream) Close() {
	if stream.closed {
		return
	}
	stream.closed = true
	sourceLog.DebugF("close %s after %d records", stream.Name, stream.read)
	stream.reader.Close()
}
