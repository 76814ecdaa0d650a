package lounge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLockExclusive(t *testing.T) {
	r := NewRegistry()

	release, ok := r.TryLock("SERVER", "proj")
	require.True(t, ok)

	_, ok = r.TryLock("SERVER", "proj")
	assert.False(t, ok, "a second lock on the same (role, name) must fail")

	release()

	_, ok = r.TryLock("SERVER", "proj")
	assert.True(t, ok, "releasing must free the slot for a later caller")
}

func TestTryLockDistinctRolesDoNotCollide(t *testing.T) {
	r := NewRegistry()

	_, ok := r.TryLock("SERVER", "proj")
	require.True(t, ok)

	_, ok = r.TryLock("CLIENT", "proj")
	assert.True(t, ok, "role is part of the lock key")
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := NewRegistry()
	release, ok := r.TryLock("SERVER", "proj")
	require.True(t, ok)

	release()
	assert.NotPanics(t, func() { release() })

	_, ok = r.TryLock("SERVER", "proj")
	assert.True(t, ok)
}
