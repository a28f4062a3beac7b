/*
 * MIT License
 *
 * Copyright (c) 2025 Vincent Maciejewski, M2 Tech
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZap_WritesAtAndAboveLevel(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)

	logger.Debug("invisible")
	logger.Infof("count=%d", 42)
	logger.Warn("careful")

	output := buffer.String()
	assert.NotContains(t, output, "invisible")
	assert.Contains(t, output, "count=42")
	assert.Contains(t, output, "careful")
	assert.Equal(t, InfoLevel, logger.LogLevel())
	require.Len(t, logger.LogOutput(), 1)
}

func TestZap_DebugLevel(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(DebugLevel, buffer)
	logger.Debug("visible")
	assert.Contains(t, buffer.String(), "visible")
}

func TestZap_MultipleWriters(t *testing.T) {
	first := new(bytes.Buffer)
	second := new(bytes.Buffer)
	logger := NewZap(InfoLevel, first, second)
	logger.Info("fan out")
	assert.Contains(t, first.String(), "fan out")
	assert.Contains(t, second.String(), "fan out")
}

func TestZap_StdLogger(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	logger.StdLogger().Print("through the adapter")
	assert.Contains(t, buffer.String(), "through the adapter")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, InfoLevel, ParseLevel("info"))
	assert.Equal(t, WarningLevel, ParseLevel("WARN"))
	assert.Equal(t, DebugLevel, ParseLevel("Debug"))
	assert.Equal(t, InvalidLevel, ParseLevel("verbose"))
}

func TestLevel_String(t *testing.T) {
	for level, text := range map[Level]string{
		InfoLevel:    "info",
		WarningLevel: "warning",
		ErrorLevel:   "error",
		FatalLevel:   "fatal",
		PanicLevel:   "panic",
		DebugLevel:   "debug",
	} {
		assert.Equal(t, text, level.String())
	}
	assert.Empty(t, InvalidLevel.String())
}

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Info("nothing happens")
	DiscardLogger.Errorf("still %s", "nothing")
	assert.Equal(t, InfoLevel, DiscardLogger.LogLevel())
}
