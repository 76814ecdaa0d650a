package protocol

func init() {
	register(TypeUploadFile, func() Message { return &UploadFile{} })
}

// UploadFile declares an incoming single-file transfer: nonce, POSIX
// permission bits, declared size, and the workspace-relative path
// using '/' separators regardless of platform.
type UploadFile struct {
	Nonce    uint64
	Perm     uint32
	Reserved uint32
	Size     uint64
	Path     string
}

// MsgType implements Message.
func (m *UploadFile) MsgType() Type { return TypeUploadFile }

// Encode implements Message.
func (m *UploadFile) Encode(dst []byte) []byte {
	dst = appendU64(dst, m.Nonce)
	dst = appendU32(dst, m.Perm)
	dst = appendU32(dst, m.Reserved)
	dst = appendU64(dst, m.Size)
	dst = append(dst, []byte(m.Path)...)
	return dst
}

// Decode implements Message.
func (m *UploadFile) Decode(body []byte) error {
	c := newCursor(body)
	var err error
	if m.Nonce, err = c.u64(); err != nil {
		return err
	}
	if m.Perm, err = c.u32(); err != nil {
		return err
	}
	if m.Reserved, err = c.u32(); err != nil {
		return err
	}
	if m.Size, err = c.u64(); err != nil {
		return err
	}
	m.Path = string(c.rest())
	return nil
}

// Reset implements Message.
func (m *UploadFile) Reset() {
	*m = UploadFile{}
}
