package statsd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilinna/clock"
)

func readAll(t *testing.T, r io.Reader) []string {
	reader, err := NewStoreReader(r)
	require.NoError(t, err)
	var lines []string
	for {
		line, err := reader.Next()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewStoreSink(&buf, nil)
	require.NoError(t, err)

	sink.Emit("hits:1|c\nquery:2.5|ms|#db:main\nusers:alice|s\nsize:1:2|h")
	sink.Emit("hits:-3|c")
	sink.Emit("queue:7|g")
	require.NoError(t, sink.Close())

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(StoreMagic)))
	assert.Equal(t, []string{
		"hits:1|c",
		"query:2.5|ms",
		"size:1|h",
		"size:2|h",
		"hits:-3|c",
		"queue:7|g",
	}, readAll(t, &buf))
}

func TestStoreReaderTime(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewStoreSink(&buf, nil)
	require.NoError(t, err)
	sink.Emit("hits:1|c")
	sink.Flush(false)

	reader, err := NewStoreReader(&buf)
	require.NoError(t, err)
	line, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "hits:1|c", line)
	assert.WithinDuration(t, time.Now(), reader.Time(), time.Minute)
}

func TestStoreReaderErrors(t *testing.T) {
	_, err := NewStoreReader(bytes.NewBufferString("STATSAv1"))
	assert.ErrorIs(t, err, ErrNotStoreFile)
	_, err = NewStoreReader(bytes.NewBufferString("STA"))
	assert.ErrorIs(t, err, ErrNotStoreFile)

	var buf bytes.Buffer
	sink, err := NewStoreSink(&buf, nil)
	require.NoError(t, err)
	sink.Emit("hits:1|c")
	require.NoError(t, sink.Close())

	truncated := buf.Bytes()[:buf.Len()-2]
	reader, err := NewStoreReader(bytes.NewReader(truncated))
	require.NoError(t, err)
	_, err = reader.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStoreSinkSwitchesFileAtMidnight(t *testing.T) {
	mock := clock.NewMock(time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local))
	ctx := clock.Context(context.Background(), mock)
	dir := t.TempDir()

	sink, err := OpenStoreSink(ctx, dir, nil)
	require.NoError(t, err)
	sink.Emit("before:1|c")
	mock.Add(2 * time.Minute)
	sink.Emit("after:2|c")
	require.NoError(t, sink.Close())

	file := fmt.Sprintf("%d.statsb", processID())
	for day, expected := range map[string]string{
		"2024-03-01": "before:1|c",
		"2024-03-02": "after:2|c",
	} {
		f, err := os.Open(filepath.Join(dir, day, file))
		require.NoError(t, err)
		assert.Equal(t, []string{expected}, readAll(t, f))
		f.Close()
	}
}

func TestStoreSinkAppendsToExistingFile(t *testing.T) {
	mock := clock.NewMock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local))
	ctx := clock.Context(context.Background(), mock)
	dir := t.TempDir()

	for _, datagram := range []string{"a:1|c", "b:2|c"} {
		sink, err := OpenStoreSink(ctx, dir, nil)
		require.NoError(t, err)
		sink.Emit(datagram)
		require.NoError(t, sink.Close())
	}

	f, err := os.Open(filepath.Join(dir, "2024-03-01", fmt.Sprintf("%d.statsb", processID())))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"a:1|c", "b:2|c"}, readAll(t, f))
}

func TestStoreRecordLayout(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewStoreSink(&buf, nil)
	require.NoError(t, err)
	sink.Emit("hits:1|c")
	require.NoError(t, sink.Close())

	raw := bytes.TrimPrefix(buf.Bytes(), []byte(StoreMagic))
	require.Len(t, raw, 6+4+2+6+6)

	name := []byte{0xff, 0xff, 0x01, 0x00, 0x04, 0x00, 'h', 'i', 't', 's', 'c', ' '}
	assert.Equal(t, name, raw[:12])
	assert.Equal(t, []byte{0xfe, 0xff}, raw[12:14])
	assert.Equal(t, []byte{0x01, 0x00, 0x01, 0x00, 0x00, 0x00}, raw[18:])
}
