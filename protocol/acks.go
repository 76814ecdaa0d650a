package protocol

// FileAck is one {nonce, code} pair returned by a ConfirmFiles drain.
type FileAck struct {
	Nonce uint64
	Code  int32
}

// ArchiveAck is one {seq_id, status} pair returned by a
// ConfirmArchives drain.
type ArchiveAck struct {
	SeqID  uint64
	Status int32
}

// EncodeFileAcks packs a list of FileAck into a CommonResponse.Data
// payload.
func EncodeFileAcks(acks []FileAck) []byte {
	dst := appendU32(nil, uint32(len(acks)))
	for _, a := range acks {
		dst = appendU64(dst, a.Nonce)
		dst = appendU32(dst, uint32(a.Code))
	}
	return dst
}

// DecodeFileAcks unpacks a FileAck list previously built by
// EncodeFileAcks.
func DecodeFileAcks(data []byte) ([]FileAck, error) {
	c := newCursor(data)
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	acks := make([]FileAck, 0, n)
	for i := uint32(0); i < n; i++ {
		nonce, err := c.u64()
		if err != nil {
			return nil, err
		}
		code, err := c.u32()
		if err != nil {
			return nil, err
		}
		acks = append(acks, FileAck{Nonce: nonce, Code: int32(code)})
	}
	return acks, nil
}

// EncodeArchiveAcks packs a list of ArchiveAck into a
// CommonResponse.Data payload.
func EncodeArchiveAcks(acks []ArchiveAck) []byte {
	dst := appendU32(nil, uint32(len(acks)))
	for _, a := range acks {
		dst = appendU64(dst, a.SeqID)
		dst = appendU32(dst, uint32(a.Status))
	}
	return dst
}

// DecodeArchiveAcks unpacks an ArchiveAck list previously built by
// EncodeArchiveAcks.
func DecodeArchiveAcks(data []byte) ([]ArchiveAck, error) {
	c := newCursor(data)
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	acks := make([]ArchiveAck, 0, n)
	for i := uint32(0); i < n; i++ {
		seqID, err := c.u64()
		if err != nil {
			return nil, err
		}
		status, err := c.u32()
		if err != nil {
			return nil, err
		}
		acks = append(acks, ArchiveAck{SeqID: seqID, Status: int32(status)})
	}
	return acks, nil
}
