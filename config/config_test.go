package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pbanos/thicket"
	"github.com/pbanos/thicket/loss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	ts, err := c.Strategy(zerolog.Nop(), nil)
	require.NoError(t, err)
	def := thicket.DefaultTrainingStrategy()
	assert.Equal(t, def.Loss, ts.Loss)
	assert.Equal(t, def.Samples, ts.Samples)
	assert.Equal(t, def.Policy, ts.Policy)
	assert.Equal(t, def.ContinuousInts, ts.ContinuousInts)
}

func TestRead(t *testing.T) {
	c, err := Read([]byte(`
loss: gini
samples: 4
limiting-factor: depth
limit: 3
use-greater-than: true
forest:
  size: 25
  seed: 42
`))
	require.NoError(t, err)
	assert.Equal(t, 25, c.Forest.Size)
	assert.Equal(t, 1, c.Forest.HiddenFields)
	require.NotNil(t, c.Forest.Seed)
	assert.Equal(t, uint64(42), *c.Forest.Seed)

	ts, err := c.Strategy(zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, loss.GiniImpurity, ts.Loss)
	assert.Equal(t, 4, ts.Samples)
	assert.Equal(t, thicket.MaxDepth(3), ts.Policy)
	assert.True(t, ts.ContinuousInts)
	assert.True(t, ts.UseGreaterThan)
}

func TestReadErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown property": "leaves: 3",
		"unknown loss":     "loss: mse",
		"unknown factor":   "limiting-factor: height",
		"no samples":       "samples: 0",
		"negative limit":   "limit: -2",
		"empty forest":     "forest: {size: 0}",
		"malformed":        "samples: [",
	} {
		_, err := Read([]byte(doc))
		assert.Error(t, err, name)
	}
	_, err := Read([]byte("limiting-factor: height"))
	assert.ErrorIs(t, err, thicket.ErrInvalidStrategy)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thicket.yml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 7\n"), 0o644))
	c, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Samples)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
