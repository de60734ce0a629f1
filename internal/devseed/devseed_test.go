package devseed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	body := `[
		{"key": "one", "value": "hop"},
		{"dbm": 1, "key": "bin", "value": "ignored", "value_b64": "AAEC"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	records, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, int32(0), records[0].DBM)

	v, err := records[0].Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hop"), v)

	v, err = records[1].Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2}, v)
}

func TestParseSeedRejectsBadRecords(t *testing.T) {
	_, err := ParseSeed([]byte(`[{"value": "x"}]`))
	require.ErrorContains(t, err, "missing key")

	_, err = ParseSeed([]byte(`[{"key": "x", "dbm": -1}]`))
	require.ErrorContains(t, err, "negative dbm")

	_, err = ParseSeed([]byte(`{`))
	require.Error(t, err)
}

func TestBadBase64(t *testing.T) {
	_, err := Record{Key: "k", ValueB64: "!!"}.Bytes()
	require.Error(t, err)
}

func TestLoadSeedMissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
