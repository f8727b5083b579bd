package triangulate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty document keeps defaults", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("overrides", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(`
locator: jump-and-walk
legalization: iterative
seed: 42
hierarchyAlpha: 10
`))
		require.NoError(t, err)
		assert.Equal(t, JumpAndWalk, config.Locator)
		assert.Equal(t, Iterative, config.Legalization)
		assert.Equal(t, int64(42), config.Seed)
		assert.Equal(t, 10, config.HierarchyAlpha)
		assert.Equal(t, DefaultConfig().HierarchyMaxLevels, config.HierarchyMaxLevels)
	})

	t.Run("unknown locator", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("locator: kd-tree\n"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("hierarchyAlpha: 1\n"))
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = LoadConfig(strings.NewReader("legalization: sideways\n"))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestLocatorType(t *testing.T) {
	for _, name := range LocatorNames() {
		locator, err := ParseLocatorType(name)
		require.NoError(t, err)
		assert.Equal(t, name, locator.String())
	}

	out, err := yaml.Marshal(Config{Locator: DelaunayTree})
	require.NoError(t, err)
	assert.Contains(t, string(out), "locator: delaunay-tree")

	_, err = LocatorType(17).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "unknown", LocatorType(17).String())
}
