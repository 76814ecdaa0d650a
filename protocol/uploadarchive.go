package protocol

func init() {
	register(TypeUploadArchive, func() Message { return &UploadArchive{} })
	register(TypeConfirmArchives, func() Message { return &ConfirmArchives{} })
}

// UploadArchive declares an incoming packed-archive transfer: its
// connection-scoped sequence id and the total byte size of the
// archive stream that follows as DataBlocks.
type UploadArchive struct {
	SeqID       uint64
	ArchiveSize uint64
}

// MsgType implements Message.
func (m *UploadArchive) MsgType() Type { return TypeUploadArchive }

// Encode implements Message.
func (m *UploadArchive) Encode(dst []byte) []byte {
	dst = appendU64(dst, m.SeqID)
	dst = appendU64(dst, m.ArchiveSize)
	return dst
}

// Decode implements Message.
func (m *UploadArchive) Decode(body []byte) error {
	c := newCursor(body)
	var err error
	if m.SeqID, err = c.u64(); err != nil {
		return err
	}
	if m.ArchiveSize, err = c.u64(); err != nil {
		return err
	}
	return nil
}

// Reset implements Message.
func (m *UploadArchive) Reset() {
	*m = UploadArchive{}
}

// ConfirmArchives requests a drain of completed archive-extraction
// statuses. NoBlock, when true, asks the server to return immediately
// with whatever is ready rather than waiting for at least one
// completion.
type ConfirmArchives struct {
	NoBlock bool
}

// MsgType implements Message.
func (m *ConfirmArchives) MsgType() Type { return TypeConfirmArchives }

// Encode implements Message.
func (m *ConfirmArchives) Encode(dst []byte) []byte {
	var v uint32
	if m.NoBlock {
		v = 1
	}
	return appendU32(dst, v)
}

// Decode implements Message.
func (m *ConfirmArchives) Decode(body []byte) error {
	c := newCursor(body)
	v, err := c.u32()
	if err != nil {
		return err
	}
	m.NoBlock = v != 0
	return nil
}

// Reset implements Message.
func (m *ConfirmArchives) Reset() {
	*m = ConfirmArchives{}
}
