package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Warn, TextFormat)

	l.Info("should not appear", nil)
	l.Warn("should appear", nil)

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "[WARN]")
}

func TestLogger_TextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Debug, TextFormat)

	l.Info("compiled", map[string]interface{}{"instructions": 12})
	assert.Contains(t, buf.String(), "instructions=12")
}

func TestLogger_JSONFormatIsValidJSONPerLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Debug, JSONFormat)

	l.Error("boom", map[string]interface{}{"code": "x"})

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "boom", entry.Message)
}

func TestLogger_ScopedAttachesRunID(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Debug, JSONFormat)
	scoped := l.Scoped("run-123")

	scoped.Info("step done", nil)

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry.RunID)
}

func TestNewRunID_ProducesNonEmptyUniqueIDs(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestLevel_StringNames(t *testing.T) {
	assert.Equal(t, "DEBUG", Debug.String())
	assert.Equal(t, "INFO", Info.String())
	assert.Equal(t, "WARN", Warn.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestDefault_WritesToStdoutAtInfoLevel(t *testing.T) {
	l := Default()
	require.NotNil(t, l)
	assert.Equal(t, os.Stdout, l.out)
	assert.Equal(t, Info, l.min)
}
