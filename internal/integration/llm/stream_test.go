package llm

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseBody(lines ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestStreamRecv_YieldsContentDeltas(t *testing.T) {
	stream := newStream(sseBody(
		`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":" world"}}]}`,
		`data: [DONE]`,
	))
	defer stream.Close()

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hello", first)

	second, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, " world", second)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamRecv_SkipsCommentsAndEmptyDeltas(t *testing.T) {
	stream := newStream(sseBody(
		`: keep-alive`,
		`data: {"choices":[{"delta":{}}]}`,
		`event: ping`,
		`data: {"choices":[{"delta":{"content":"text"}}]}`,
		`data: [DONE]`,
	))
	defer stream.Close()

	got, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "text", got)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamRecv_SkipsMalformedEvents(t *testing.T) {
	stream := newStream(sseBody(
		`data: {not json`,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
		`data: [DONE]`,
	))
	defer stream.Close()

	got, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestStreamRecv_BodyEndWithoutDoneIsEOF(t *testing.T) {
	stream := newStream(sseBody(
		`data: {"choices":[{"delta":{"content":"partial"}}]}`,
	))
	defer stream.Close()

	got, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", got)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
