package protocol

func init() {
	register(TypeCommitSyncPlan, func() Message { return &CommitSyncPlan{} })
}

// CommitSyncPlan carries every root-level sync-plan subtree the client
// has decided to apply, each pre-serialised by the plan package. The
// codec treats each subtree as an opaque length-prefixed blob;
// plan.Decode is responsible for its contents.
type CommitSyncPlan struct {
	Subtrees [][]byte
}

// MsgType implements Message.
func (m *CommitSyncPlan) MsgType() Type { return TypeCommitSyncPlan }

// Encode implements Message.
func (m *CommitSyncPlan) Encode(dst []byte) []byte {
	for _, s := range m.Subtrees {
		dst = appendBytes(dst, s)
	}
	return dst
}

// Decode implements Message.
func (m *CommitSyncPlan) Decode(body []byte) error {
	c := newCursor(body)
	var subtrees [][]byte
	for c.remaining() > 0 {
		s, err := c.lenPrefixedBytes()
		if err != nil {
			return err
		}
		subtrees = append(subtrees, s)
	}
	m.Subtrees = subtrees
	return nil
}

// Reset implements Message.
func (m *CommitSyncPlan) Reset() {
	m.Subtrees = nil
}
