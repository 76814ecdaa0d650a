package protocol

func init() {
	register(TypeCommonResponse, func() Message { return &CommonResponse{} })
	register(TypeDataBlock, func() Message { return &DataBlock{} })
}

// CommonResponse is the server's general-purpose reply: Code == 0
// means success. Data doubles as the human-readable
// message on failure and as an opaque result payload on success (the
// serialised remote tree for FetchFileTree, an encoded ack list for
// ConfirmFiles/ConfirmArchives, or empty for a bare acknowledgement).
type CommonResponse struct {
	Code int32
	Data []byte
}

// MsgType implements Message.
func (m *CommonResponse) MsgType() Type { return TypeCommonResponse }

// Encode implements Message.
func (m *CommonResponse) Encode(dst []byte) []byte {
	dst = appendU32(dst, uint32(int32(m.Code)))
	dst = appendU32(dst, uint32(len(m.Data)))
	dst = append(dst, m.Data...)
	return dst
}

// Decode implements Message.
func (m *CommonResponse) Decode(body []byte) error {
	c := newCursor(body)
	code, err := c.u32()
	if err != nil {
		return err
	}
	n, err := c.u32()
	if err != nil {
		return err
	}
	data, err := c.bytes(uint64(n))
	if err != nil {
		return err
	}
	m.Code = int32(code)
	m.Data = data
	return nil
}

// Reset implements Message.
func (m *CommonResponse) Reset() {
	m.Code = 0
	m.Data = m.Data[:0]
}

// OK reports whether this response indicates success.
func (m *CommonResponse) OK() bool {
	return m.Code == 0
}

// Success builds a code-0 CommonResponse carrying data.
func Success(data []byte) *CommonResponse {
	return &CommonResponse{Code: 0, Data: data}
}

// Failure builds a non-zero-code CommonResponse carrying msg as its
// human-readable payload.
func Failure(code int32, msg string) *CommonResponse {
	if code == 0 {
		code = 1
	}
	return &CommonResponse{Code: code, Data: []byte(msg)}
}

// DataBlock is an opaque chunk of bytes belonging to the data stream
// of whichever UploadFile/UploadArchive operation most recently opened
// one on this connection.
type DataBlock struct {
	Data []byte
}

// MsgType implements Message.
func (m *DataBlock) MsgType() Type { return TypeDataBlock }

// Encode implements Message.
func (m *DataBlock) Encode(dst []byte) []byte {
	return append(dst, m.Data...)
}

// Decode implements Message.
func (m *DataBlock) Decode(body []byte) error {
	m.Data = append([]byte(nil), body...)
	return nil
}

// Reset implements Message.
func (m *DataBlock) Reset() {
	m.Data = m.Data[:0]
}
