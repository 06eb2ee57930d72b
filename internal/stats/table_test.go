package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "WPM", "Lang"}
	rows := [][]string{
		{"1", "102.5", "en"},
		{"10", "8.0", "de"},
	}

	lines := formatTable(headers, rows, map[int]bool{0: true, 1: true})

	require.Len(t, lines, 4)
	assert.Equal(t, " #   WPM Lang", lines[0])
	assert.Equal(t, "-- ----- ----", lines[1])
	assert.Equal(t, " 1 102.5 en", lines[2])
	assert.Equal(t, "10   8.0 de", lines[3])
}

func TestFormatTableWithoutHeaders(t *testing.T) {
	lines := formatTable(nil, [][]string{{"a", "b"}}, nil)
	assert.Equal(t, []string{"a b"}, lines)
	assert.Nil(t, formatTable(nil, nil, nil))
}
