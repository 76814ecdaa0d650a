package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRootRequiresServerOrClient(t *testing.T) {
	resetFlags()
	defer resetFlags()

	err := runRoot(newRootCmd(), nil)
	var ec *exitCodeError
	ok := asExitCodeError(err, &ec)
	assert.True(t, ok)
	assert.Equal(t, 1, ec.code)
}

func TestRunRootRejectsServerAndClientTogether(t *testing.T) {
	resetFlags()
	defer resetFlags()

	flagServer = true
	flagClient = true
	defer func() { flagServer, flagClient = false, false }()

	err := runRoot(newRootCmd(), nil)
	var ec *exitCodeError
	ok := asExitCodeError(err, &ec)
	assert.True(t, ok)
	assert.Equal(t, 1, ec.code)
}

func TestRunRootUsageTakesPrecedenceOverGenerateKeys(t *testing.T) {
	resetFlags()
	defer resetFlags()

	flagUsage = true
	flagGenerateSSLKeys = true
	defer func() { flagUsage, flagGenerateSSLKeys = false, false }()

	assert.NoError(t, runRoot(newRootCmd(), nil))
}
