package protocol

import "sync"

// constructors is the process-wide, once-populated registry mapping a
// wire type to a fresh zero-value instance. Populated exclusively from
// each message file's init(); never mutated afterwards.
var constructors = map[Type]func() Message{}

// pools holds one sync.Pool per registered type, created by register
// alongside the type's constructor. The map itself is built up only
// during init() (single-goroutine), so no lock is needed to read it
// after program start; sync.Pool itself is safe for concurrent use.
var pools = map[Type]*sync.Pool{}

// register adds a message constructor to the registry. Called only
// from package-level init() functions, one per message type.
func register(t Type, newFn func() Message) {
	if _, exists := constructors[t]; exists {
		panic("protocol: duplicate registration for type " + t.String())
	}
	constructors[t] = newFn
	pools[t] = &sync.Pool{
		New: func() interface{} { return newFn() },
	}
}

// Borrow takes a reset instance of t from its pool, or false if t is
// unregistered.
func Borrow(t Type) (Message, bool) {
	p, ok := pools[t]
	if !ok {
		return nil, false
	}
	msg := p.Get().(Message)
	return msg, true
}

// Recycle resets msg and returns it to its type's pool. Safe to call
// more than once on the same instance (a double-recycle is a caller
// bug, but must not crash): Reset is idempotent and sync.Pool
// tolerates redundant Put calls.
func Recycle(msg Message) {
	if msg == nil {
		return
	}
	msg.Reset()
	if p, ok := pools[msg.MsgType()]; ok {
		p.Put(msg)
	}
}

// New constructs a brand-new (non-pooled) instance of t, or nil if t is
// unregistered. Used where ownership needs to outlive a Recycle call.
func New(t Type) Message {
	if fn, ok := constructors[t]; ok {
		return fn()
	}
	return nil
}
