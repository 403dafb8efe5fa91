package util

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	log := GetLog("test")

	SetVerbose(false)
	log.DebugF("hidden %d", 1)
	assert.Empty(t, buf.String())

	log.InfoF("shown %d", 2)
	assert.Contains(t, buf.String(), "[test] [INFO]: shown 2")

	SetVerbose(true)
	log.DebugF("now shown")
	assert.Contains(t, buf.String(), "[test] [DEBUG]: now shown")

	log.WarnF("warned")
	log.ErrorF("failed")
	assert.Contains(t, buf.String(), "[WARN]: warned")
	assert.Contains(t, buf.String(), "[ERROR]: failed")
}
