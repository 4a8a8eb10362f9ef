package simrt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestF_ConstructsField(t *testing.T) {
	f := F("addr", "127.0.0.1:80")
	assert.Equal(t, "addr", f.Key)
	assert.Equal(t, "127.0.0.1:80", f.Value)
}

func TestNoopLogger_DiscardsEverything(t *testing.T) {
	var l Logger = noopLogger{}
	assert.NotPanics(t, func() {
		l.Debug("d", F("a", 1))
		l.Info("i")
		l.Warn("w")
		l.Error("e")
	})
}

func TestNewSlogLogger_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(&buf)
	l.Info("hello", F("seed", uint64(1)))

	require.NotEmpty(t, buf.String())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["msg"])
}

func TestNewSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(&buf)
	l.Debug("d")
	l.Warn("w")
	l.Error("err")
	assert.NotEmpty(t, buf.String())
}
