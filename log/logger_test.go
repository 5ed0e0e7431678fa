// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allLevels() *slog.LevelVar {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return &level
}

func TestTerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewTerminalHandlerWithLevel(&buf, allLevels(), false))

	l.Info("pool deployed", "amount", big.NewInt(1234567), "id", 3)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO "))
	assert.Contains(t, out, "pool deployed")
	assert.Contains(t, out, "amount=1,234,567")
	assert.Contains(t, out, "id=3")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	var level slog.LevelVar
	level.Set(FromLegacyLevel(legacyLevelWarn))
	l := NewLogger(NewTerminalHandlerWithLevel(&buf, &level, false))

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithContextFollowsRoot(t *testing.T) {
	ctxLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	old := Root()
	SetDefault(NewLogger(JSONHandlerWithLevel(&buf, allLevels())))
	defer SetDefault(old)

	ctxLogger.Info("hello", "k", "v")
	out := buf.String()
	assert.Contains(t, out, `"pkg":"test"`)
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, `"lvl":"info"`)
}

func TestNewHandler(t *testing.T) {
	var level slog.LevelVar
	for _, format := range []string{"", "terminal", "json", "logfmt"} {
		h, err := NewHandler(format, &bytes.Buffer{}, &level, false)
		require.NoError(t, err)
		assert.NotNil(t, h)
	}
	_, err := NewHandler("xml", &bytes.Buffer{}, &level, false)
	assert.Error(t, err)
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
}
