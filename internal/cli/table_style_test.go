package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTableWriter_Basic(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.SetHeaders([]string{"Name", "Count"})
	w.AppendRow([]string{"Beam", "12"})
	w.AppendRow([]string{"Column", "3"})
	w.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME     COUNT", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Beam"))
	assert.True(t, strings.HasPrefix(lines[2], "Column"))

	// Columns align: COUNT starts at the same offset in every line.
	offset := strings.Index(lines[0], "COUNT")
	assert.Equal(t, "12", lines[1][offset:offset+2])
	assert.Equal(t, "3", strings.TrimSpace(lines[2][offset:]))
}

func TestPlainTableWriter_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.SetHeaders([]string{"Name", "Count"})
	w.SetNoHeaders(true)
	w.AppendRow([]string{"Beam", "12"})
	w.Render()

	assert.NotContains(t, buf.String(), "NAME")
	assert.Contains(t, buf.String(), "Beam")
}

func TestPlainTableWriter_EmptyWithoutHeadersRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.SetHeaders([]string{"Name"})
	w.SetNoHeaders(true)
	w.Render()

	assert.Empty(t, buf.String())
}

func TestPlainTableWriter_ShortRowsArePadded(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.SetHeaders([]string{"A", "B", "C"})
	w.AppendRow([]string{"x"})
	w.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "x", strings.TrimSpace(lines[1]))
}
