// Package devseed loads JSON fixtures used to pre-populate mock databases.
package devseed

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// Record is one seeded key/value pair. Value holds text; ValueB64 holds
// binary data and wins when both are set.
type Record struct {
	DBM      int32  `json:"dbm"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	ValueB64 string `json:"value_b64,omitempty"`
}

// Bytes returns the decoded value.
func (r Record) Bytes() ([]byte, error) {
	if r.ValueB64 == "" {
		return []byte(r.Value), nil
	}
	b, err := base64.StdEncoding.DecodeString(r.ValueB64)
	if err != nil {
		return nil, fmt.Errorf("devseed: key %q: decode value_b64: %w", r.Key, err)
	}
	return b, nil
}

// LoadSeed reads a JSON array of records from path.
func LoadSeed(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a JSON array of records.
func ParseSeed(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("devseed: decode: %w", err)
	}
	for i, r := range records {
		if r.Key == "" {
			return nil, fmt.Errorf("devseed: record %d: missing key", i)
		}
		if r.DBM < 0 {
			return nil, fmt.Errorf("devseed: record %d: negative dbm index", i)
		}
	}
	return records, nil
}
