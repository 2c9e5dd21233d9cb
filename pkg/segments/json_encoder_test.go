package segments

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONArrayEncoder_EmptyClose(t *testing.T) {
	var buf bytes.Buffer
	enc := NewJSONArrayEncoder(&buf)
	require.NoError(t, enc.Close())
	assert.Equal(t, "[]", buf.String())
}

func TestJSONArrayEncoder_RepeatedCloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	enc := NewJSONArrayEncoder(&buf)
	require.NoError(t, enc.Close())
	require.NoError(t, enc.Close())
	assert.Equal(t, "[]", buf.String())
}

func TestJSONArrayEncoder_WriteThenClose(t *testing.T) {
	var buf bytes.Buffer
	enc := NewJSONArrayEncoder(&buf)
	require.NoError(t, enc.WriteSegment(Segment{StartSeconds: 0, EndSeconds: 1.2, Text: "hello", LanguageCode: "en"}))
	require.NoError(t, enc.WriteSegment(Segment{StartSeconds: 1.2, EndSeconds: 2.0, Text: "world", LanguageCode: "en"}))
	require.NoError(t, enc.Close())

	var out []Segment
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "hello", out[0].Text)
	assert.Equal(t, "world", out[1].Text)
}

func TestJSONArrayEncoder_WriteAfterCloseErrors(t *testing.T) {
	var buf bytes.Buffer
	enc := NewJSONArrayEncoder(&buf)
	require.NoError(t, enc.Close())
	before := buf.String()

	err := enc.WriteSegment(Segment{Text: "late"})
	require.Error(t, err)
	assert.Equal(t, before, buf.String())
}
