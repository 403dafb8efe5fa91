package common

import "fmt"

type DataSourceType int

const (
	StdinSource DataSourceType = iota
	FileSource
)

// DataSource tells the execution layer where raw records originate. It is
// carried unchanged from the logical plan through the physical plan into the
// data source stream.
type DataSource struct {
	TP   DataSourceType
	Path string
}

func NewStdinSource() DataSource {
	return DataSource{TP: StdinSource}
}

func NewFileSource(path string) DataSource {
	return DataSource{TP: FileSource, Path: path}
}

func (source DataSource) String() string {
	switch source.TP {
	case StdinSource:
		return "stdin"
	case FileSource:
		return fmt.Sprintf("file(%s)", source.Path)
	default:
		return "unknown"
	}
}
