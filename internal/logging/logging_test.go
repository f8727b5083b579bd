package logging

import (
	"bytes"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("filters by level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "warn")
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")
		require.NoError(t, logger.Sync())

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), aurora.Yellow("warn").String())
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, "loud")
		assert.Error(t, err)
	})
}
