package lounge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDanglingPolicy(t *testing.T) {
	cases := []struct {
		in   string
		want DanglingPolicy
	}{
		{"", DanglingRemove},
		{"remove", DanglingRemove},
		{"keep", DanglingKeep},
		{"panic", DanglingPanic},
	}
	for _, c := range cases {
		got, err := ParseDanglingPolicy(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestParseDanglingPolicyRejectsUnknown(t *testing.T) {
	_, err := ParseDanglingPolicy("explode")
	assert.Error(t, err)
}

func TestDanglingPolicyString(t *testing.T) {
	assert.Equal(t, "remove", DanglingRemove.String())
	assert.Equal(t, "keep", DanglingKeep.String())
	assert.Equal(t, "panic", DanglingPanic.String())
}
