package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/logquery/common"
)

const sampleLine = `2015-05-13T23:39:43.945958Z my-loadbalancer 192.168.131.39:2817 10.0.0.1:80 0.000086 0.001048 0.001337 200 200 0 57 "GET https://www.example.com:443/ HTTP/1.1" "curl/7.38.0" DHE-RSA-AES128-SHA TLSv1.2`

func TestReadRecord(t *testing.T) {
	reader := FromReader(strings.NewReader(sampleLine + "\n"))
	record, err := reader.ReadRecord()
	assert.Nil(t, err)
	assert.NotNil(t, record)

	assert.Equal(t, "2015-05-13T23:39:43.945958Z", record.Timestamp)
	assert.Equal(t, "my-loadbalancer", record.ELBName)
	assert.Equal(t, "192.168.131.39:2817", record.ClientAddress)
	assert.Equal(t, "10.0.0.1:80", record.BackendAddress)
	assert.Equal(t, 0.000086, record.RequestProcessingTime)
	assert.Equal(t, 0.001048, record.BackendProcessingTime)
	assert.Equal(t, 0.001337, record.ResponseProcessingTime)
	assert.Equal(t, int64(200), record.ELBStatusCode)
	assert.Equal(t, int64(200), record.BackendStatusCode)
	assert.Equal(t, int64(0), record.ReceivedBytes)
	assert.Equal(t, int64(57), record.SentBytes)
	assert.Equal(t, "GET https://www.example.com:443/ HTTP/1.1", record.Request)
	assert.Equal(t, "curl/7.38.0", record.UserAgent)
	assert.Equal(t, "DHE-RSA-AES128-SHA", record.SSLCipher)
	assert.Equal(t, "TLSv1.2", record.SSLProtocol)

	// end of input, then sticky.
	record, err = reader.ReadRecord()
	assert.Nil(t, err)
	assert.Nil(t, record)
	record, err = reader.ReadRecord()
	assert.Nil(t, err)
	assert.Nil(t, record)
}

func TestReadRecordSkipsBlankLines(t *testing.T) {
	input := "\n" + sampleLine + "\n\n" + sampleLine + "\n"
	reader := FromReader(strings.NewReader(input))

	count := 0
	for {
		record, err := reader.ReadRecord()
		assert.Nil(t, err)
		if record == nil {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

func TestReadRecordEmptyQuotedField(t *testing.T) {
	line := strings.Replace(sampleLine, `"curl/7.38.0"`, `""`, 1)
	reader := FromReader(strings.NewReader(line))
	record, err := reader.ReadRecord()
	assert.Nil(t, err)
	assert.Equal(t, "", record.UserAgent)
	assert.Equal(t, "TLSv1.2", record.SSLProtocol)
}

func TestReadRecordBadLine(t *testing.T) {
	reader := FromReader(strings.NewReader("not enough fields\n"))
	_, err := reader.ReadRecord()
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "line 1")

	reader = FromReader(strings.NewReader(strings.Replace(sampleLine, "200 200", "OK 200", 1)))
	_, err = reader.ReadRecord()
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "elb_status_code")

	reader = FromReader(strings.NewReader(sampleLine[:len(sampleLine)-10] + `"`))
	_, err = reader.ReadRecord()
	assert.NotNil(t, err)
}

func TestOpenFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	assert.Nil(t, os.WriteFile(path, []byte(sampleLine+"\n"), 0644))

	reader, err := Open(common.NewFileSource(path))
	assert.Nil(t, err)
	record, err := reader.ReadRecord()
	assert.Nil(t, err)
	assert.Equal(t, "my-loadbalancer", record.ELBName)
	assert.Nil(t, reader.Close())
	assert.Nil(t, reader.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(common.NewFileSource("/no/such/file"))
	assert.NotNil(t, err)
}

func TestLogRecordTuples(t *testing.T) {
	reader := FromReader(strings.NewReader(sampleLine))
	record, err := reader.ReadRecord()
	assert.Nil(t, err)

	names, values := record.Tuples()
	assert.Equal(t, FieldNames, names)
	assert.Len(t, values, len(names))
	assert.Equal(t, common.NewStringValue("my-loadbalancer"), values[1])
	assert.Equal(t, common.NewFloatValue(0.001048), values[5])
	assert.Equal(t, common.NewIntValue(200), values[7])
	assert.Equal(t, common.NewIntValue(57), values[10])
	assert.Equal(t, common.NewStringValue("TLSv1.2"), values[14])
}
