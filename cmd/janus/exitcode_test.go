package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitErrNilIsNil(t *testing.T) {
	assert.Nil(t, exitErr(1, nil))
}

func TestAsExitCodeErrorUnwraps(t *testing.T) {
	err := exitErr(2, errors.New("locked"))
	var ec *exitCodeError
	ok := asExitCodeError(err, &ec)
	assert.True(t, ok)
	assert.Equal(t, 2, ec.code)
	assert.Equal(t, "locked", ec.Error())
}

func TestAsExitCodeErrorFalseForPlainError(t *testing.T) {
	var ec *exitCodeError
	ok := asExitCodeError(errors.New("plain"), &ec)
	assert.False(t, ok)
}
