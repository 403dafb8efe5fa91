package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// A small log library. Loggers are header wrappers around one shared sink:
// GetLog("cli").InfoF("query started") prints
// `2006/01/02 15:04:05.000000 [cli] [INFO]: query started`.

const (
	DEBUG = iota
	INFO
	WARN
	ERROR
)

var logLevelMaps = map[int]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

type SimpleLog struct {
	lock  sync.Mutex
	out   io.Writer
	level int
}

var globalLog = &SimpleLog{out: os.Stderr, level: INFO}

type SimpleLogWrapper struct {
	header string
}

func GetLog(header string) SimpleLogWrapper {
	return SimpleLogWrapper{header: header}
}

// SetVerbose lowers the threshold so DebugF output shows up.
func SetVerbose(verbose bool) {
	globalLog.lock.Lock()
	defer globalLog.lock.Unlock()
	if verbose {
		globalLog.level = DEBUG
	} else {
		globalLog.level = INFO
	}
}

// SetOutput redirects the sink, mainly for tests.
func SetOutput(out io.Writer) {
	globalLog.lock.Lock()
	defer globalLog.lock.Unlock()
	globalLog.out = out
}

func (log SimpleLogWrapper) DebugF(format string, params ...interface{}) {
	globalLog.printLog(log.header, DEBUG, format, params...)
}

func (log SimpleLogWrapper) InfoF(format string, params ...interface{}) {
	globalLog.printLog(log.header, INFO, format, params...)
}

func (log SimpleLogWrapper) WarnF(format string, params ...interface{}) {
	globalLog.printLog(log.header, WARN, format, params...)
}

func (log SimpleLogWrapper) ErrorF(format string, params ...interface{}) {
	globalLog.printLog(log.header, ERROR, format, params...)
}

func (log *SimpleLog) printLog(header string, level int, format string, params ...interface{}) {
	log.lock.Lock()
	defer log.lock.Unlock()
	if level < log.level {
		return
	}
	line := fmt.Sprintf("%s [%s] [%s]: ", time.Now().Format("2006/01/02 15:04:05.000000"), header, logLevelMaps[level])
	line = fmt.Sprintf(line+format, params...)
	fmt.Fprintln(log.out, line)
}
