package wire

import "google.golang.org/protobuf/encoding/protowire"

// StatusProto is the status carried by most responses. An absent status
// decodes as code 0, which is success.
type StatusProto struct {
	Code    int32
	Message string
}

func (m *StatusProto) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.Code)
	return appendString(b, 2, m.Message)
}

func (m *StatusProto) UnmarshalWire(b []byte) error {
	*m = StatusProto{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.Code = f.int32()
		case 2:
			m.Message = f.string()
		}
		return nil
	})
}

// StringPair is a text key/value pair.
type StringPair struct {
	First  string
	Second string
}

func (m *StringPair) MarshalWire(b []byte) []byte {
	b = appendString(b, 1, m.First)
	return appendString(b, 2, m.Second)
}

func (m *StringPair) UnmarshalWire(b []byte) error {
	*m = StringPair{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.First = f.string()
		case 2:
			m.Second = f.string()
		}
		return nil
	})
}

// BytesPair is a binary key/value pair.
type BytesPair struct {
	First  []byte
	Second []byte
}

func (m *BytesPair) MarshalWire(b []byte) []byte {
	b = appendBytes(b, 1, m.First)
	return appendBytes(b, 2, m.Second)
}

func (m *BytesPair) UnmarshalWire(b []byte) error {
	*m = BytesPair{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.First = f.bytes()
		case 2:
			m.Second = f.bytes()
		}
		return nil
	})
}

// RecordState describes an expected or desired record in a multi-record
// compare-and-exchange.
type RecordState struct {
	Key       []byte
	Existence bool
	Value     []byte
}

func (m *RecordState) MarshalWire(b []byte) []byte {
	b = appendBytes(b, 1, m.Key)
	b = appendBool(b, 2, m.Existence)
	return appendBytes(b, 3, m.Value)
}

func (m *RecordState) UnmarshalWire(b []byte) error {
	*m = RecordState{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.Key = f.bytes()
		case 2:
			m.Existence = f.bool()
		case 3:
			m.Value = f.bytes()
		}
		return nil
	})
}

func appendStatus(b []byte, s *StatusProto) []byte {
	if s == nil {
		return b
	}
	return appendMessage(b, 1, s)
}

func decodeStatus(f field) (*StatusProto, error) {
	s := new(StatusProto)
	if err := f.message(s); err != nil {
		return nil, err
	}
	return s, nil
}

// StatusResponse is a response made only of a status.
type StatusResponse struct {
	Status *StatusProto
}

// GetStatus returns the status, treating an absent one as success.
func (m *StatusResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *StatusResponse) MarshalWire(b []byte) []byte {
	return appendStatus(b, m.Status)
}

func (m *StatusResponse) UnmarshalWire(b []byte) error {
	*m = StatusResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		if num == 1 {
			m.Status, err = decodeStatus(f)
		}
		return err
	})
}

type (
	SetResponse                  = StatusResponse
	SetMultiResponse             = StatusResponse
	RemoveResponse               = StatusResponse
	RemoveMultiResponse          = StatusResponse
	AppendResponse               = StatusResponse
	AppendMultiResponse          = StatusResponse
	CompareExchangeResponse      = StatusResponse
	CompareExchangeMultiResponse = StatusResponse
	ClearResponse                = StatusResponse
	RebuildResponse              = StatusResponse
	SynchronizeResponse          = StatusResponse
	ChangeMasterResponse         = StatusResponse
)

func statusOrOK(s *StatusProto) *StatusProto {
	if s == nil {
		return &StatusProto{}
	}
	return s
}

// IndexRequest addresses a whole database by its index.
type IndexRequest struct {
	DBMIndex int32
}

func (m *IndexRequest) MarshalWire(b []byte) []byte {
	return appendInt32(b, 1, m.DBMIndex)
}

func (m *IndexRequest) UnmarshalWire(b []byte) error {
	*m = IndexRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		if num == 1 {
			m.DBMIndex = f.int32()
		}
		return nil
	})
}

type (
	InspectRequest         = IndexRequest
	CountRequest           = IndexRequest
	GetFileSizeRequest     = IndexRequest
	ClearRequest           = IndexRequest
	ShouldBeRebuiltRequest = IndexRequest
)

type EchoRequest struct {
	Message string
}

func (m *EchoRequest) MarshalWire(b []byte) []byte {
	return appendString(b, 1, m.Message)
}

func (m *EchoRequest) UnmarshalWire(b []byte) error {
	*m = EchoRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		if num == 1 {
			m.Message = f.string()
		}
		return nil
	})
}

type EchoResponse struct {
	Echo string
}

func (m *EchoResponse) MarshalWire(b []byte) []byte {
	return appendString(b, 1, m.Echo)
}

func (m *EchoResponse) UnmarshalWire(b []byte) error {
	*m = EchoResponse{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		if num == 1 {
			m.Echo = f.string()
		}
		return nil
	})
}

type InspectResponse struct {
	Records []*StringPair
}

func (m *InspectResponse) MarshalWire(b []byte) []byte {
	for _, r := range m.Records {
		b = appendMessage(b, 1, r)
	}
	return b
}

func (m *InspectResponse) UnmarshalWire(b []byte) error {
	*m = InspectResponse{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		if num == 1 {
			r := new(StringPair)
			if err := f.message(r); err != nil {
				return err
			}
			m.Records = append(m.Records, r)
		}
		return nil
	})
}

type GetRequest struct {
	DBMIndex  int32
	Key       []byte
	OmitValue bool
}

func (m *GetRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendBytes(b, 2, m.Key)
	return appendBool(b, 3, m.OmitValue)
}

func (m *GetRequest) UnmarshalWire(b []byte) error {
	*m = GetRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Key = f.bytes()
		case 3:
			m.OmitValue = f.bool()
		}
		return nil
	})
}

type GetResponse struct {
	Status *StatusProto
	Value  []byte
}

func (m *GetResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *GetResponse) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	return appendBytes(b, 2, m.Value)
}

func (m *GetResponse) UnmarshalWire(b []byte) error {
	*m = GetResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			m.Value = f.bytes()
		}
		return err
	})
}

type GetMultiRequest struct {
	DBMIndex int32
	Keys     [][]byte
}

func (m *GetMultiRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	return appendRepeatedBytes(b, 2, m.Keys)
}

func (m *GetMultiRequest) UnmarshalWire(b []byte) error {
	*m = GetMultiRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Keys = append(m.Keys, f.bytes())
		}
		return nil
	})
}

// RemoveMultiRequest has the same shape as GetMultiRequest.
type RemoveMultiRequest = GetMultiRequest

type GetMultiResponse struct {
	Status  *StatusProto
	Records []*BytesPair
}

func (m *GetMultiResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *GetMultiResponse) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	for _, r := range m.Records {
		b = appendMessage(b, 2, r)
	}
	return b
}

func (m *GetMultiResponse) UnmarshalWire(b []byte) error {
	*m = GetMultiResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			r := new(BytesPair)
			if err = f.message(r); err == nil {
				m.Records = append(m.Records, r)
			}
		}
		return err
	})
}

type SetRequest struct {
	DBMIndex  int32
	Key       []byte
	Value     []byte
	Overwrite bool
}

func (m *SetRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendBytes(b, 2, m.Key)
	b = appendBytes(b, 3, m.Value)
	return appendBool(b, 4, m.Overwrite)
}

func (m *SetRequest) UnmarshalWire(b []byte) error {
	*m = SetRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Key = f.bytes()
		case 3:
			m.Value = f.bytes()
		case 4:
			m.Overwrite = f.bool()
		}
		return nil
	})
}

type SetMultiRequest struct {
	DBMIndex  int32
	Records   []*BytesPair
	Overwrite bool
}

func (m *SetMultiRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	for _, r := range m.Records {
		b = appendMessage(b, 2, r)
	}
	return appendBool(b, 3, m.Overwrite)
}

func (m *SetMultiRequest) UnmarshalWire(b []byte) error {
	*m = SetMultiRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			r := new(BytesPair)
			if err := f.message(r); err != nil {
				return err
			}
			m.Records = append(m.Records, r)
		case 3:
			m.Overwrite = f.bool()
		}
		return nil
	})
}

type RemoveRequest struct {
	DBMIndex int32
	Key      []byte
}

func (m *RemoveRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	return appendBytes(b, 2, m.Key)
}

func (m *RemoveRequest) UnmarshalWire(b []byte) error {
	*m = RemoveRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Key = f.bytes()
		}
		return nil
	})
}

type AppendRequest struct {
	DBMIndex int32
	Key      []byte
	Value    []byte
	Delim    []byte
}

func (m *AppendRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendBytes(b, 2, m.Key)
	b = appendBytes(b, 3, m.Value)
	return appendBytes(b, 4, m.Delim)
}

func (m *AppendRequest) UnmarshalWire(b []byte) error {
	*m = AppendRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Key = f.bytes()
		case 3:
			m.Value = f.bytes()
		case 4:
			m.Delim = f.bytes()
		}
		return nil
	})
}

type AppendMultiRequest struct {
	DBMIndex int32
	Records  []*BytesPair
	Delim    []byte
}

func (m *AppendMultiRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	for _, r := range m.Records {
		b = appendMessage(b, 2, r)
	}
	return appendBytes(b, 3, m.Delim)
}

func (m *AppendMultiRequest) UnmarshalWire(b []byte) error {
	*m = AppendMultiRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			r := new(BytesPair)
			if err := f.message(r); err != nil {
				return err
			}
			m.Records = append(m.Records, r)
		case 3:
			m.Delim = f.bytes()
		}
		return nil
	})
}

type CompareExchangeRequest struct {
	DBMIndex          int32
	Key               []byte
	ExpectedExistence bool
	ExpectedValue     []byte
	DesiredExistence  bool
	DesiredValue      []byte
}

func (m *CompareExchangeRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendBytes(b, 2, m.Key)
	b = appendBool(b, 3, m.ExpectedExistence)
	b = appendBytes(b, 4, m.ExpectedValue)
	b = appendBool(b, 5, m.DesiredExistence)
	return appendBytes(b, 6, m.DesiredValue)
}

func (m *CompareExchangeRequest) UnmarshalWire(b []byte) error {
	*m = CompareExchangeRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Key = f.bytes()
		case 3:
			m.ExpectedExistence = f.bool()
		case 4:
			m.ExpectedValue = f.bytes()
		case 5:
			m.DesiredExistence = f.bool()
		case 6:
			m.DesiredValue = f.bytes()
		}
		return nil
	})
}

type IncrementRequest struct {
	DBMIndex  int32
	Key       []byte
	Increment int64
	Initial   int64
}

func (m *IncrementRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendBytes(b, 2, m.Key)
	b = appendInt64(b, 3, m.Increment)
	return appendInt64(b, 4, m.Initial)
}

func (m *IncrementRequest) UnmarshalWire(b []byte) error {
	*m = IncrementRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Key = f.bytes()
		case 3:
			m.Increment = f.int64()
		case 4:
			m.Initial = f.int64()
		}
		return nil
	})
}

// Int64Response carries a status and one integer. Increment, Count and
// GetFileSize all answer in this shape.
type Int64Response struct {
	Status *StatusProto
	Value  int64
}

func (m *Int64Response) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *Int64Response) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	return appendInt64(b, 2, m.Value)
}

func (m *Int64Response) UnmarshalWire(b []byte) error {
	*m = Int64Response{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			m.Value = f.int64()
		}
		return err
	})
}

type (
	IncrementResponse   = Int64Response
	CountResponse       = Int64Response
	GetFileSizeResponse = Int64Response
)

type CompareExchangeMultiRequest struct {
	DBMIndex int32
	Expected []*RecordState
	Desired  []*RecordState
}

func (m *CompareExchangeMultiRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	for _, r := range m.Expected {
		b = appendMessage(b, 2, r)
	}
	for _, r := range m.Desired {
		b = appendMessage(b, 3, r)
	}
	return b
}

func (m *CompareExchangeMultiRequest) UnmarshalWire(b []byte) error {
	*m = CompareExchangeMultiRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2, 3:
			r := new(RecordState)
			if err := f.message(r); err != nil {
				return err
			}
			if num == 2 {
				m.Expected = append(m.Expected, r)
			} else {
				m.Desired = append(m.Desired, r)
			}
		}
		return nil
	})
}

type RebuildRequest struct {
	DBMIndex int32
	Params   []*StringPair
}

func (m *RebuildRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	for _, p := range m.Params {
		b = appendMessage(b, 2, p)
	}
	return b
}

func (m *RebuildRequest) UnmarshalWire(b []byte) error {
	*m = RebuildRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			p := new(StringPair)
			if err := f.message(p); err != nil {
				return err
			}
			m.Params = append(m.Params, p)
		}
		return nil
	})
}

type ShouldBeRebuiltResponse struct {
	Status *StatusProto
	Tobe   bool
}

func (m *ShouldBeRebuiltResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *ShouldBeRebuiltResponse) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	return appendBool(b, 2, m.Tobe)
}

func (m *ShouldBeRebuiltResponse) UnmarshalWire(b []byte) error {
	*m = ShouldBeRebuiltResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			m.Tobe = f.bool()
		}
		return err
	})
}

type SynchronizeRequest struct {
	DBMIndex int32
	Hard     bool
	Params   []*StringPair
}

func (m *SynchronizeRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendBool(b, 2, m.Hard)
	for _, p := range m.Params {
		b = appendMessage(b, 3, p)
	}
	return b
}

func (m *SynchronizeRequest) UnmarshalWire(b []byte) error {
	*m = SynchronizeRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Hard = f.bool()
		case 3:
			p := new(StringPair)
			if err := f.message(p); err != nil {
				return err
			}
			m.Params = append(m.Params, p)
		}
		return nil
	})
}

type SearchRequest struct {
	DBMIndex int32
	Mode     string
	Pattern  []byte
	Capacity int32
}

func (m *SearchRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendString(b, 2, m.Mode)
	b = appendBytes(b, 3, m.Pattern)
	return appendInt32(b, 4, m.Capacity)
}

func (m *SearchRequest) UnmarshalWire(b []byte) error {
	*m = SearchRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Mode = f.string()
		case 3:
			m.Pattern = f.bytes()
		case 4:
			m.Capacity = f.int32()
		}
		return nil
	})
}

type SearchResponse struct {
	Status  *StatusProto
	Matched [][]byte
}

func (m *SearchResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *SearchResponse) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	return appendRepeatedBytes(b, 2, m.Matched)
}

func (m *SearchResponse) UnmarshalWire(b []byte) error {
	*m = SearchResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			m.Matched = append(m.Matched, f.bytes())
		}
		return err
	})
}

// StreamRequest wraps one single-record operation sent over the Stream call.
// Exactly one of the operation fields is set.
type StreamRequest struct {
	Echo            *EchoRequest
	Get             *GetRequest
	Set             *SetRequest
	Remove          *RemoveRequest
	Append          *AppendRequest
	CompareExchange *CompareExchangeRequest
	Increment       *IncrementRequest
	OmitResponse    bool
}

func (m *StreamRequest) MarshalWire(b []byte) []byte {
	switch {
	case m.Echo != nil:
		b = appendMessage(b, 1, m.Echo)
	case m.Get != nil:
		b = appendMessage(b, 2, m.Get)
	case m.Set != nil:
		b = appendMessage(b, 3, m.Set)
	case m.Remove != nil:
		b = appendMessage(b, 4, m.Remove)
	case m.Append != nil:
		b = appendMessage(b, 5, m.Append)
	case m.CompareExchange != nil:
		b = appendMessage(b, 6, m.CompareExchange)
	case m.Increment != nil:
		b = appendMessage(b, 7, m.Increment)
	}
	return appendBool(b, 101, m.OmitResponse)
}

func (m *StreamRequest) UnmarshalWire(b []byte) error {
	*m = StreamRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		var sub Message
		switch num {
		case 1:
			m.clearOneof()
			m.Echo = new(EchoRequest)
			sub = m.Echo
		case 2:
			m.clearOneof()
			m.Get = new(GetRequest)
			sub = m.Get
		case 3:
			m.clearOneof()
			m.Set = new(SetRequest)
			sub = m.Set
		case 4:
			m.clearOneof()
			m.Remove = new(RemoveRequest)
			sub = m.Remove
		case 5:
			m.clearOneof()
			m.Append = new(AppendRequest)
			sub = m.Append
		case 6:
			m.clearOneof()
			m.CompareExchange = new(CompareExchangeRequest)
			sub = m.CompareExchange
		case 7:
			m.clearOneof()
			m.Increment = new(IncrementRequest)
			sub = m.Increment
		case 101:
			m.OmitResponse = f.bool()
			return nil
		default:
			return nil
		}
		return f.message(sub)
	})
}

func (m *StreamRequest) clearOneof() {
	omit := m.OmitResponse
	*m = StreamRequest{OmitResponse: omit}
}

// StreamResponse mirrors StreamRequest. Exactly one field is set.
type StreamResponse struct {
	Echo            *EchoResponse
	Get             *GetResponse
	Set             *SetResponse
	Remove          *RemoveResponse
	Append          *AppendResponse
	CompareExchange *CompareExchangeResponse
	Increment       *IncrementResponse
}

func (m *StreamResponse) MarshalWire(b []byte) []byte {
	switch {
	case m.Echo != nil:
		b = appendMessage(b, 1, m.Echo)
	case m.Get != nil:
		b = appendMessage(b, 2, m.Get)
	case m.Set != nil:
		b = appendMessage(b, 3, m.Set)
	case m.Remove != nil:
		b = appendMessage(b, 4, m.Remove)
	case m.Append != nil:
		b = appendMessage(b, 5, m.Append)
	case m.CompareExchange != nil:
		b = appendMessage(b, 6, m.CompareExchange)
	case m.Increment != nil:
		b = appendMessage(b, 7, m.Increment)
	}
	return b
}

func (m *StreamResponse) UnmarshalWire(b []byte) error {
	*m = StreamResponse{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		var sub Message
		switch num {
		case 1:
			*m = StreamResponse{Echo: new(EchoResponse)}
			sub = m.Echo
		case 2:
			*m = StreamResponse{Get: new(GetResponse)}
			sub = m.Get
		case 3:
			*m = StreamResponse{Set: new(SetResponse)}
			sub = m.Set
		case 4:
			*m = StreamResponse{Remove: new(RemoveResponse)}
			sub = m.Remove
		case 5:
			*m = StreamResponse{Append: new(AppendResponse)}
			sub = m.Append
		case 6:
			*m = StreamResponse{CompareExchange: new(CompareExchangeResponse)}
			sub = m.CompareExchange
		case 7:
			*m = StreamResponse{Increment: new(IncrementResponse)}
			sub = m.Increment
		default:
			return nil
		}
		return f.message(sub)
	})
}

// IterateOp selects the cursor operation of an IterateRequest.
type IterateOp int32

const (
	IterateNone IterateOp = iota
	IterateFirst
	IterateLast
	IterateJump
	IterateJumpLower
	IterateJumpUpper
	IterateNext
	IteratePrevious
	IterateGet
	IterateSet
	IterateRemove
)

var iterateOpNames = [...]string{
	"OP_NONE", "OP_FIRST", "OP_LAST", "OP_JUMP", "OP_JUMP_LOWER", "OP_JUMP_UPPER",
	"OP_NEXT", "OP_PREVIOUS", "OP_GET", "OP_SET", "OP_REMOVE",
}

func (op IterateOp) String() string {
	if op >= 0 && int(op) < len(iterateOpNames) {
		return iterateOpNames[op]
	}
	return "OP_UNKNOWN"
}

type IterateRequest struct {
	DBMIndex      int32
	Operation     IterateOp
	Key           []byte
	Value         []byte
	JumpInclusive bool
	OmitKey       bool
	OmitValue     bool
}

func (m *IterateRequest) MarshalWire(b []byte) []byte {
	b = appendInt32(b, 1, m.DBMIndex)
	b = appendInt32(b, 2, int32(m.Operation))
	b = appendBytes(b, 3, m.Key)
	b = appendBytes(b, 4, m.Value)
	b = appendBool(b, 5, m.JumpInclusive)
	b = appendBool(b, 6, m.OmitKey)
	return appendBool(b, 7, m.OmitValue)
}

func (m *IterateRequest) UnmarshalWire(b []byte) error {
	*m = IterateRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.DBMIndex = f.int32()
		case 2:
			m.Operation = IterateOp(f.int32())
		case 3:
			m.Key = f.bytes()
		case 4:
			m.Value = f.bytes()
		case 5:
			m.JumpInclusive = f.bool()
		case 6:
			m.OmitKey = f.bool()
		case 7:
			m.OmitValue = f.bool()
		}
		return nil
	})
}

type IterateResponse struct {
	Status *StatusProto
	Key    []byte
	Value  []byte
}

func (m *IterateResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *IterateResponse) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	b = appendBytes(b, 2, m.Key)
	return appendBytes(b, 3, m.Value)
}

func (m *IterateResponse) UnmarshalWire(b []byte) error {
	*m = IterateResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			m.Key = f.bytes()
		case 3:
			m.Value = f.bytes()
		}
		return err
	})
}

type ReplicateRequest struct {
	MinTimestamp int64
	ServerID     int32
	WaitTime     float64
}

func (m *ReplicateRequest) MarshalWire(b []byte) []byte {
	b = appendInt64(b, 1, m.MinTimestamp)
	b = appendInt32(b, 2, m.ServerID)
	return appendDouble(b, 3, m.WaitTime)
}

func (m *ReplicateRequest) UnmarshalWire(b []byte) error {
	*m = ReplicateRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.MinTimestamp = f.int64()
		case 2:
			m.ServerID = f.int32()
		case 3:
			m.WaitTime = f.double()
		}
		return nil
	})
}

// ReplicateOp is the kind of update carried by a ReplicateResponse.
type ReplicateOp int32

const (
	ReplicateNoop ReplicateOp = iota
	ReplicateSet
	ReplicateRemove
	ReplicateClear
)

func (op ReplicateOp) String() string {
	switch op {
	case ReplicateNoop:
		return "OP_NOOP"
	case ReplicateSet:
		return "OP_SET"
	case ReplicateRemove:
		return "OP_REMOVE"
	case ReplicateClear:
		return "OP_CLEAR"
	}
	return "OP_UNKNOWN"
}

type ReplicateResponse struct {
	Status    *StatusProto
	Timestamp int64
	ServerID  int32
	DBMIndex  int32
	OpType    ReplicateOp
	Key       []byte
	Value     []byte
}

func (m *ReplicateResponse) GetStatus() *StatusProto {
	return statusOrOK(m.Status)
}

func (m *ReplicateResponse) MarshalWire(b []byte) []byte {
	b = appendStatus(b, m.Status)
	b = appendInt64(b, 2, m.Timestamp)
	b = appendInt32(b, 3, m.ServerID)
	b = appendInt32(b, 4, m.DBMIndex)
	b = appendInt32(b, 5, int32(m.OpType))
	b = appendBytes(b, 6, m.Key)
	return appendBytes(b, 7, m.Value)
}

func (m *ReplicateResponse) UnmarshalWire(b []byte) error {
	*m = ReplicateResponse{}
	return decodeFields(b, func(num protowire.Number, f field) (err error) {
		switch num {
		case 1:
			m.Status, err = decodeStatus(f)
		case 2:
			m.Timestamp = f.int64()
		case 3:
			m.ServerID = f.int32()
		case 4:
			m.DBMIndex = f.int32()
		case 5:
			m.OpType = ReplicateOp(f.int32())
		case 6:
			m.Key = f.bytes()
		case 7:
			m.Value = f.bytes()
		}
		return err
	})
}

type ChangeMasterRequest struct {
	Master        string
	TimestampSkew int64
}

func (m *ChangeMasterRequest) MarshalWire(b []byte) []byte {
	b = appendString(b, 1, m.Master)
	return appendInt64(b, 2, m.TimestampSkew)
}

func (m *ChangeMasterRequest) UnmarshalWire(b []byte) error {
	*m = ChangeMasterRequest{}
	return decodeFields(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			m.Master = f.string()
		case 2:
			m.TimestampSkew = f.int64()
		}
		return nil
	})
}
