package segments

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVTTEncoder_EmptyProducesEmptyFile(t *testing.T) {
	var buf bytes.Buffer
	enc := NewVTTEncoder(&buf)
	require.NoError(t, enc.Close())
	assert.Equal(t, "", buf.String())
}

func TestVTTEncoder_HeaderAndOneCuePerSegment(t *testing.T) {
	var buf bytes.Buffer
	enc := NewVTTEncoder(&buf)
	require.NoError(t, enc.WriteSegment(Segment{StartSeconds: 0, EndSeconds: 1.2, Text: "hello"}))
	require.NoError(t, enc.WriteSegment(Segment{StartSeconds: 1.2, EndSeconds: 2.0, Text: "world"}))
	require.NoError(t, enc.Close())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "WEBVTT\n\n"))
	assert.Equal(t, 0, strings.Count(out[len("WEBVTT\n\n"):], "WEBVTT\n\n"))
	assert.Equal(t, 2, strings.Count(out, "--> "))
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds  float32
		expected string
	}{
		{0.0004, "00:00:00.000"},
		{0.0005, "00:00:00.001"},
		{1.9995, "00:00:02.000"},
		{61.2, "00:01:01.200"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, formatTimestamp(c.seconds))
	}
}

func TestVTTEncoder_WriteAfterCloseErrors(t *testing.T) {
	var buf bytes.Buffer
	enc := NewVTTEncoder(&buf)
	require.NoError(t, enc.WriteSegment(Segment{StartSeconds: 0, EndSeconds: 1, Text: "x"}))
	require.NoError(t, enc.Close())
	before := buf.String()

	err := enc.WriteSegment(Segment{Text: "late"})
	require.Error(t, err)
	assert.Equal(t, before, buf.String())
}
