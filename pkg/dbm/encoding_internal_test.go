package dbm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveEncoding(t *testing.T) {
	for _, name := range []string{"", "none", "BINARY", " ascii-8bit "} {
		enc, ok := resolveEncoding(name)
		require.True(t, ok, name)
		require.Nil(t, enc, name)
	}
	enc, ok := resolveEncoding("windows-1252")
	require.True(t, ok)
	require.Equal(t, "€", decodeText(enc, []byte{0x80}))

	_, ok = resolveEncoding("klingon")
	require.False(t, ok)
	require.Equal(t, "raw", decodeText(nil, []byte("raw")))
}
