package protocol

func init() {
	register(TypeAuth, func() Message { return &Auth{} })
}

// Auth carries the raw bytes of the challenge-response handshake: the
// workspace name, the server's random challenge, or the client's
// encrypted response, depending on which leg of the handshake this
// instance represents.
type Auth struct {
	Payload []byte
}

// MsgType implements Message.
func (m *Auth) MsgType() Type { return TypeAuth }

// Encode implements Message.
func (m *Auth) Encode(dst []byte) []byte {
	return append(dst, m.Payload...)
}

// Decode implements Message.
func (m *Auth) Decode(body []byte) error {
	m.Payload = append([]byte(nil), body...)
	return nil
}

// Reset implements Message.
func (m *Auth) Reset() {
	m.Payload = m.Payload[:0]
}
