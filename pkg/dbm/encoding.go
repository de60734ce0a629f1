package dbm

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// resolveEncoding maps a charset name to a decoder for returned text. A nil
// encoding means the bytes are passed through unchanged.
func resolveEncoding(name string) (encoding.Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "binary", "ascii-8bit":
		return nil, true
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, false
	}
	return enc, true
}

func decodeText(enc encoding.Encoding, b []byte) string {
	if enc == nil || len(b) == 0 {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
