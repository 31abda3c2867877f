package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel(LevelInfo)
		SetOutput(os.Stderr)
	})

	SetLevel(LevelError)
	Info("hidden line", "k", "v")
	assert.Empty(t, buf.String())

	Error("visible line", errors.New("boom"), "date", "2024-06-01")
	out := buf.String()
	assert.Contains(t, out, "visible line")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "2024-06-01")
}
