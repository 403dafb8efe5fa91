// Package reader tokenizes classic load-balancer access logs into typed
// records. One line, one record:
//
//	timestamp elb client:port backend:port request_processing_time
//	backend_processing_time response_processing_time elb_status_code
//	backend_status_code received_bytes sent_bytes "request" "user_agent"
//	ssl_cipher ssl_protocol
//
// The request and user_agent fields are quoted and may contain spaces.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xiaobogaga/logquery/common"
)

const fieldCount = 15

// maxLineSize bounds one log line. Request lines with long query strings fit
// comfortably.
const maxLineSize = 1 << 20

type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	closed  bool
}

// Open returns a reader over the given source. For a file source the
// returned reader owns the handle.
func Open(source common.DataSource) (*Reader, error) {
	switch source.TP {
	case common.StdinSource:
		return FromReader(os.Stdin), nil
	case common.FileSource:
		f, err := os.Open(source.Path)
		if err != nil {
			return nil, err
		}
		reader := FromReader(f)
		reader.closer = f
		return reader, nil
	default:
		return nil, fmt.Errorf("unknown data source %s", source)
	}
}

func FromReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Reader{scanner: scanner}
}

// ReadRecord returns the next record, or (nil, nil) at end of input. Blank
// lines are skipped.
func (reader *Reader) ReadRecord() (*LogRecord, error) {
	for reader.scanner.Scan() {
		reader.line++
		line := reader.scanner.Text()
		if len(line) == 0 {
			continue
		}
		record, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", reader.line, err)
		}
		return record, nil
	}
	if err := reader.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// Close releases the underlying file, if any. Safe to call more than once.
func (reader *Reader) Close() error {
	if reader.closed || reader.closer == nil {
		return nil
	}
	reader.closed = true
	return reader.closer.Close()
}

func parseLine(line string) (*LogRecord, error) {
	tokens, err := splitFields(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) != fieldCount {
		return nil, fmt.Errorf("expected %d fields, got %d", fieldCount, len(tokens))
	}
	record := &LogRecord{
		Timestamp:      tokens[0],
		ELBName:        tokens[1],
		ClientAddress:  tokens[2],
		BackendAddress: tokens[3],
		Request:        tokens[11],
		UserAgent:      tokens[12],
		SSLCipher:      tokens[13],
		SSLProtocol:    tokens[14],
	}
	floats := []struct {
		name string
		src  string
		dst  *float64
	}{
		{"request_processing_time", tokens[4], &record.RequestProcessingTime},
		{"backend_processing_time", tokens[5], &record.BackendProcessingTime},
		{"response_processing_time", tokens[6], &record.ResponseProcessingTime},
	}
	for _, f := range floats {
		*f.dst, err = strconv.ParseFloat(f.src, 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s '%s'", f.name, f.src)
		}
	}
	ints := []struct {
		name string
		src  string
		dst  *int64
	}{
		{"elb_status_code", tokens[7], &record.ELBStatusCode},
		{"backend_status_code", tokens[8], &record.BackendStatusCode},
		{"received_bytes", tokens[9], &record.ReceivedBytes},
		{"sent_bytes", tokens[10], &record.SentBytes},
	}
	for _, f := range ints {
		*f.dst, err = strconv.ParseInt(f.src, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s '%s'", f.name, f.src)
		}
	}
	return record, nil
}

// splitFields splits on spaces except inside double quotes. Quotes are
// stripped from the emitted token.
func splitFields(line string) ([]string, error) {
	var tokens []string
	var current []byte
	inQuotes := false
	quoted := false // the current token had quotes, "" is a valid empty token
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
		case c == ' ' && !inQuotes:
			if len(current) > 0 || quoted {
				tokens = append(tokens, string(current))
				current = current[:0]
				quoted = false
			}
		default:
			current = append(current, c)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	if len(current) > 0 || quoted {
		tokens = append(tokens, string(current))
	}
	return tokens, nil
}
