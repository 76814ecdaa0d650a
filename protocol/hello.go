package protocol

// ProtocolVersion is the only protocol version this implementation
// speaks. Both sides insist on it as the first offered version.
const ProtocolVersion uint64 = 1

func init() {
	register(TypeHello, func() Message { return &Hello{} })
}

// Hello carries the list of protocol versions offered or accepted
// during the three-way handshake.
type Hello struct {
	Versions []uint64
}

// MsgType implements Message.
func (m *Hello) MsgType() Type { return TypeHello }

// Encode implements Message.
func (m *Hello) Encode(dst []byte) []byte {
	dst = appendU32(dst, uint32(len(m.Versions)))
	for _, v := range m.Versions {
		dst = appendU64(dst, v)
	}
	return dst
}

// Decode implements Message.
func (m *Hello) Decode(body []byte) error {
	c := newCursor(body)
	n, err := c.u32()
	if err != nil {
		return err
	}
	versions := make([]uint64, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := c.u64()
		if err != nil {
			return err
		}
		versions = append(versions, v)
	}
	m.Versions = versions
	return nil
}

// Reset implements Message.
func (m *Hello) Reset() {
	m.Versions = m.Versions[:0]
}

// Offers reports whether v is the first entry, which is the only
// acceptable offer.
func (m *Hello) Offers(v uint64) bool {
	return len(m.Versions) > 0 && m.Versions[0] == v
}
