package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugSilentByDefault(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden %s", "message")
	assert.Empty(t, buf.String())
}

func TestVerboseOutput(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	assert.True(t, IsVerbose())

	Debug("ingesting %d notes", 3)
	Info("run complete")
	Warn("skipping binary file")
	Section("Retrieval")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] ingesting 3 notes")
	assert.Contains(t, out, "[INFO] run complete")
	assert.Contains(t, out, "[WARN] skipping binary file")
	assert.Contains(t, out, "=== Retrieval ===")
}
