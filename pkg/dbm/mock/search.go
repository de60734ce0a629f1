package mock

import (
	"bytes"
	"regexp"
	"sort"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// search scans keys in iteration order. The edit modes rank every key by
// its Levenshtein distance to pattern, over runes for "edit" and over bytes
// for "editbin".
func (db *database) search(mode string, pattern []byte, capacity int) ([][]byte, *wire.StatusProto) {
	var match func(key []byte) bool
	switch mode {
	case "contain":
		match = func(key []byte) bool { return bytes.Contains(key, pattern) }
	case "begin":
		match = func(key []byte) bool { return bytes.HasPrefix(key, pattern) }
	case "end":
		match = func(key []byte) bool { return bytes.HasSuffix(key, pattern) }
	case "regex":
		re, err := regexp.Compile(string(pattern))
		if err != nil {
			return nil, &wire.StatusProto{Code: codeInvalidArgument, Message: "invalid regex: " + err.Error()}
		}
		match = re.Match
	case "edit":
		return rankByDistance(db.keys(), capacity, func(key []byte) int {
			return editDistance([]rune(string(key)), []rune(string(pattern)))
		}), &wire.StatusProto{}
	case "editbin":
		return rankByDistance(db.keys(), capacity, func(key []byte) int {
			return editDistance(key, pattern)
		}), &wire.StatusProto{}
	default:
		return nil, &wire.StatusProto{Code: codeInvalidArgument, Message: "unknown mode: " + mode}
	}

	var out [][]byte
	for _, k := range db.keys() {
		if capacity > 0 && len(out) >= capacity {
			break
		}
		if match(k) {
			out = append(out, k)
		}
	}
	return out, &wire.StatusProto{}
}

func rankByDistance(keys [][]byte, capacity int, dist func([]byte) int) [][]byte {
	type scored struct {
		key  []byte
		dist int
	}
	ranked := make([]scored, len(keys))
	for i, k := range keys {
		ranked[i] = scored{key: k, dist: dist(k)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		return bytes.Compare(ranked[i].key, ranked[j].key) < 0
	})
	if capacity > 0 && len(ranked) > capacity {
		ranked = ranked[:capacity]
	}
	out := make([][]byte, len(ranked))
	for i, r := range ranked {
		out[i] = r.key
	}
	return out
}

func editDistance[T comparable](a, b []T) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
