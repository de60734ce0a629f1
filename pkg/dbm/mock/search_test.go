package mock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seedKeys(db *database, keys ...string) {
	for _, k := range keys {
		db.set([]byte(k), []byte("v"), true)
	}
}

func asStrings(b [][]byte) []string {
	out := make([]string, len(b))
	for i, k := range b {
		out[i] = string(k)
	}
	return out
}

func TestSearchModes(t *testing.T) {
	db := newTestDB(ClassTree)
	seedKeys(db, "apple", "apricot", "banana", "grape", "pineapple")

	cases := []struct {
		mode, pattern string
		capacity      int
		want          []string
	}{
		{"contain", "app", 0, []string{"apple", "pineapple"}},
		{"begin", "ap", 0, []string{"apple", "apricot"}},
		{"end", "ape", 0, []string{"grape"}},
		{"regex", "^[bg]", 0, []string{"banana", "grape"}},
		{"contain", "a", 2, []string{"apple", "apricot"}},
		{"edit", "grap", 1, []string{"grape"}},
		{"editbin", "apple", 2, []string{"apple", "grape"}},
	}
	for _, tc := range cases {
		t.Run(tc.mode+"/"+tc.pattern, func(t *testing.T) {
			got, st := db.search(tc.mode, []byte(tc.pattern), tc.capacity)
			require.Equal(t, codeSuccess, st.Code)
			require.Equal(t, tc.want, asStrings(got))
		})
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	db := newTestDB(ClassTree)
	_, st := db.search("fuzzy", []byte("x"), 0)
	require.Equal(t, codeInvalidArgument, st.Code)
	_, st = db.search("regex", []byte("("), 0)
	require.Equal(t, codeInvalidArgument, st.Code)
}

func TestEditDistance(t *testing.T) {
	require.Equal(t, 0, editDistance([]rune("same"), []rune("same")))
	require.Equal(t, 3, editDistance([]rune("kitten"), []rune("sitting")))
	require.Equal(t, 4, editDistance([]byte(""), []byte("four")))
	require.Equal(t, 1, editDistance([]rune("日本"), []rune("日米")))
	require.Equal(t, 3, editDistance([]byte("日本"), []byte("日米")))
}
