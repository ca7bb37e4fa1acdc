package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader(t *testing.T) {
	doc := `
kb:
  path: kb.json
engine:
  ignore_errors: true
  trace: true
output:
  format: table
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "kb.json", cfg.KB.Path)
	assert.True(t, cfg.Engine.IgnoreErrors)
	assert.True(t, cfg.Engine.Trace)
	assert.Equal(t, FormatTable, cfg.Output.Format)
}

func TestValidateRejectsBadFormat(t *testing.T) {
	doc := `
kb:
  path: kb.json
output:
  format: xml
`
	_, err := LoadFromReader(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestValidateRequiresSomeKB(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("engine:\n  trace: false\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kb.path or kb.snapshot")
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	doc := `
kb:
  path: kb.json
  shard_count: 4
`
	_, err := LoadFromReader(strings.NewReader(doc))
	assert.Error(t, err)
}
