package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/janus-sync/janus/archive"
)

func TestSmallFileRoutingThresholdIsInclusive(t *testing.T) {
	assert.True(t, isSmall(archive.SmallFileThreshold), "a file of exactly the threshold is packed")
	assert.False(t, isSmall(archive.SmallFileThreshold+1), "one byte over takes the single-file path")
	assert.True(t, isSmall(0))
}

func TestNextNonceVaries(t *testing.T) {
	a, b := nextNonce(), nextNonce()
	assert.NotEqual(t, a, b)
}
