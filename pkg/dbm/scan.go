package dbm

import (
	"context"
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Each visits every record through a fresh iterator, which is always
// closed. The scan is not a snapshot: records changed concurrently may or
// may not be seen. A non-nil error from fn stops the scan and is returned
// as APPLICATION_ERROR.
func (d *RemoteDBM) Each(ctx context.Context, fn func(key, value []byte) error) *Status {
	it, st := d.MakeIterator(ctx)
	if !st.IsOK() {
		return st
	}
	defer it.Close()

	if st := it.First(); !st.IsOK() {
		return st
	}
	for {
		key, value, st := it.Get()
		if st.GetCode() == NotFoundError {
			return NewStatus(Success)
		}
		if !st.IsOK() {
			return st
		}
		if err := fn(key, value); err != nil {
			return NewStatus(ApplicationError, err.Error())
		}
		if st := it.Next(); !st.IsOK() {
			return st
		}
	}
}

// EachStr is Each with the connection encoding applied.
func (d *RemoteDBM) EachStr(ctx context.Context, fn func(key, value string) error) *Status {
	return d.Each(ctx, func(key, value []byte) error {
		_, enc := d.cursorState()
		return fn(decodeText(enc, key), decodeText(enc, value))
	})
}

// Records collects every record into a map.
func (d *RemoteDBM) Records(ctx context.Context) (map[string][]byte, *Status) {
	out := make(map[string][]byte)
	st := d.Each(ctx, func(key, value []byte) error {
		out[string(key)] = value
		return nil
	})
	if !st.IsOK() {
		return nil, st
	}
	return out, st
}

// Digest returns an order-independent BLAKE3 fingerprint of the records,
// suitable for comparing replicas. Equal record sets give equal digests.
func (d *RemoteDBM) Digest(ctx context.Context) ([32]byte, *Status) {
	var acc [32]byte
	st := d.Each(ctx, func(key, value []byte) error {
		sum := recordHash(key, value)
		for i := range acc {
			acc[i] ^= sum[i]
		}
		return nil
	})
	if !st.IsOK() {
		return [32]byte{}, st
	}
	return acc, st
}

func recordHash(key, value []byte) [32]byte {
	h := blake3.New()
	var n [binary.MaxVarintLen64]byte
	h.Write(n[:binary.PutUvarint(n[:], uint64(len(key)))])
	h.Write(key)
	h.Write(value)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
