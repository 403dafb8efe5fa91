package reader

import "github.com/xiaobogaga/logquery/common"

// LogRecord is one parsed access-log line with typed fields.
type LogRecord struct {
	Timestamp              string
	ELBName                string
	ClientAddress          string
	BackendAddress         string
	RequestProcessingTime  float64
	BackendProcessingTime  float64
	ResponseProcessingTime float64
	ELBStatusCode          int64
	BackendStatusCode      int64
	ReceivedBytes          int64
	SentBytes              int64
	Request                string
	UserAgent              string
	SSLCipher              string
	SSLProtocol            string
}

// FieldNames lists the queryable columns in declaration order.
var FieldNames = []common.VariableName{
	"timestamp",
	"elb",
	"client",
	"backend",
	"request_processing_time",
	"backend_processing_time",
	"response_processing_time",
	"elb_status_code",
	"backend_status_code",
	"received_bytes",
	"sent_bytes",
	"request",
	"user_agent",
	"ssl_cipher",
	"ssl_protocol",
}

// Tuples returns the column names and values, aligned positionally, in
// declaration order.
func (record *LogRecord) Tuples() ([]common.VariableName, []common.Value) {
	values := []common.Value{
		common.NewStringValue(record.Timestamp),
		common.NewStringValue(record.ELBName),
		common.NewStringValue(record.ClientAddress),
		common.NewStringValue(record.BackendAddress),
		common.NewFloatValue(record.RequestProcessingTime),
		common.NewFloatValue(record.BackendProcessingTime),
		common.NewFloatValue(record.ResponseProcessingTime),
		common.NewIntValue(record.ELBStatusCode),
		common.NewIntValue(record.BackendStatusCode),
		common.NewIntValue(record.ReceivedBytes),
		common.NewIntValue(record.SentBytes),
		common.NewStringValue(record.Request),
		common.NewStringValue(record.UserAgent),
		common.NewStringValue(record.SSLCipher),
		common.NewStringValue(record.SSLProtocol),
	}
	return FieldNames, values
}
