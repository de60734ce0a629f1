package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestZstdCompressorIsRegistered(t *testing.T) {
	c := encoding.GetCompressor(ZstdName)
	require.NotNil(t, c)
	require.NotNil(t, encoding.GetCompressor("gzip"))

	payload := []byte(strings.Repeat("tkrzw-record;", 512))
	var buf bytes.Buffer
	w, err := c.Compress(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload[:100])
	require.NoError(t, err)
	_, err = w.Write(payload[100:])
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Less(t, buf.Len(), len(payload))

	r, err := c.Decompress(&buf)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestZstdRejectsGarbage(t *testing.T) {
	c := encoding.GetCompressor(ZstdName)
	_, err := c.Decompress(strings.NewReader("definitely not zstd"))
	require.Error(t, err)
}
