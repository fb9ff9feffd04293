package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

type level string

const (
	levelDebug level = "debug"
	levelInfo  level = "info"
)

func newLevels() *Normalizer[level] {
	return NewNormalizer("log level", map[string]level{"debug": levelDebug, "INFO": levelInfo}, levelInfo)
}

func TestNormalize(t *testing.T) {
	n := newLevels()
	assert.Equal(t, levelDebug, n.Normalize(" Debug "))
	assert.Equal(t, levelInfo, n.Normalize("info"))
	assert.Equal(t, levelInfo, n.Normalize("verbose"))
	assert.Equal(t, []string{"debug", "info"}, n.ValidKeys())
}

func TestNormalizeWithError(t *testing.T) {
	n := newLevels()

	v, err := n.NormalizeWithError("")
	require.NoError(t, err)
	assert.Equal(t, levelInfo, v)

	v, err = n.NormalizeWithError("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, levelDebug, v)

	_, err = n.NormalizeWithError("trace")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "invalid log level")
}
