package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("production writes json at info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, false)

		logger.Debug().Msg("hidden")
		logger.Info().Str("user_id", "u1").Msg("Login successful")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "info", line["level"])
		require.Equal(t, "u1", line["user_id"])
		require.Equal(t, "Login successful", line["message"])
		require.Contains(t, line, "time")
		require.Contains(t, line, "caller")
		require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("dev writes console at debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, true)

		logger.Debug().Msg("visible")

		require.Contains(t, buf.String(), "visible")
		require.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})
}
