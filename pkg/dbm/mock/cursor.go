package mock

import (
	"bytes"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// cursor is the server side of one Iterate stream. It remembers the order
// key of the current record and re-seeks on every move, so records changed
// by other clients never invalidate it.
type cursor struct {
	db         *database
	pos        []byte
	positioned bool
}

func (c *cursor) reset(db *database) {
	c.db = db
	c.pos = nil
	c.positioned = false
}

func (c *cursor) moveTo(r record, ok bool) {
	c.positioned = ok
	c.pos = nil
	if ok {
		c.pos = r.order
	}
}

func notImplemented() *wire.StatusProto {
	return &wire.StatusProto{Code: codeNotImplemented, Message: "not implemented"}
}

func notLocated() *wire.StatusProto {
	return &wire.StatusProto{Code: codeNotFound, Message: "not located"}
}

// firstFrom returns the first record with order >= from, or > from when
// strict.
func (db *database) firstFrom(from []byte, strict bool) (record, bool) {
	var out record
	found := false
	db.tree.AscendGreaterOrEqual(record{order: from}, func(r record) bool {
		if strict && bytes.Equal(r.order, from) {
			return true
		}
		out, found = r, true
		return false
	})
	return out, found
}

// lastUpTo returns the last record with order <= to, or < to when strict.
func (db *database) lastUpTo(to []byte, strict bool) (record, bool) {
	var out record
	found := false
	db.tree.DescendLessOrEqual(record{order: to}, func(r record) bool {
		if strict && bytes.Equal(r.order, to) {
			return true
		}
		out, found = r, true
		return false
	})
	return out, found
}

func (c *cursor) apply(req *wire.IterateRequest) *wire.IterateResponse {
	switch req.Operation {
	case wire.IterateNone:
		return &wire.IterateResponse{Status: &wire.StatusProto{}}
	case wire.IterateGet:
		return c.get(req)
	case wire.IterateSet, wire.IterateRemove:
		return &wire.IterateResponse{Status: c.mutate(req)}
	}
	return &wire.IterateResponse{Status: c.move(req)}
}

func (c *cursor) move(req *wire.IterateRequest) *wire.StatusProto {
	db := c.db
	ordered := db.class.Ordered()
	db.mu.RLock()
	defer db.mu.RUnlock()

	switch req.Operation {
	case wire.IterateFirst:
		c.moveTo(db.tree.Min())
	case wire.IterateLast:
		if !ordered {
			return notImplemented()
		}
		c.moveTo(db.tree.Max())
	case wire.IterateJump:
		if !ordered {
			r, ok := db.lookupLocked(req.Key)
			c.moveTo(r, ok)
			if !ok {
				return notLocated()
			}
			break
		}
		c.moveTo(db.firstFrom(req.Key, false))
	case wire.IterateJumpLower:
		if !ordered {
			return notImplemented()
		}
		c.moveTo(db.lastUpTo(req.Key, !req.JumpInclusive))
	case wire.IterateJumpUpper:
		if !ordered {
			return notImplemented()
		}
		c.moveTo(db.firstFrom(req.Key, !req.JumpInclusive))
	case wire.IterateNext:
		if !c.positioned {
			return notLocated()
		}
		c.moveTo(db.firstFrom(c.pos, true))
	case wire.IteratePrevious:
		if !ordered {
			return notImplemented()
		}
		if !c.positioned {
			return notLocated()
		}
		c.moveTo(db.lastUpTo(c.pos, true))
	default:
		return &wire.StatusProto{Code: codeInvalidArgument, Message: "unknown operation: " + req.Operation.String()}
	}
	return &wire.StatusProto{}
}

// current resolves the cursor position. A record removed by someone else is
// replaced by its successor.
func (c *cursor) current() (record, bool) {
	if !c.positioned {
		return record{}, false
	}
	r, ok := c.db.firstFrom(c.pos, false)
	c.moveTo(r, ok)
	return r, ok
}

func (c *cursor) get(req *wire.IterateRequest) *wire.IterateResponse {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	r, ok := c.current()
	if !ok {
		return &wire.IterateResponse{Status: notLocated()}
	}
	resp := &wire.IterateResponse{Status: &wire.StatusProto{}}
	if !req.OmitKey {
		resp.Key = r.key
	}
	if !req.OmitValue {
		resp.Value = r.value
	}
	return resp
}

func (c *cursor) mutate(req *wire.IterateRequest) *wire.StatusProto {
	db := c.db
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := c.current()
	if !ok {
		return notLocated()
	}
	if req.Operation == wire.IterateSet {
		db.putLocked(r.key, req.Value)
		return &wire.StatusProto{}
	}
	db.deleteLocked(r.key)
	c.moveTo(db.firstFrom(r.order, true))
	return &wire.StatusProto{}
}
