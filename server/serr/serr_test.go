package serr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_errorConcatenatesMessageAndFirstCause(t *testing.T) {
	assert := assert.New(t)

	plain := New("bad thing happened")
	assert.Equal("bad thing happened", plain.Error())

	wrapped := New("could not open store", ErrDB)
	assert.Equal("could not open store: "+ErrDB.Error(), wrapped.Error())
}

func Test_Error_errorFallsBackToCauseWhenMessageEmpty(t *testing.T) {
	cause := errors.New("connection refused")
	err := New("", cause)
	assert.Equal(t, cause.Error(), err.Error())
}

func Test_WrapDB_isMatchesUnderlyingAndErrDB(t *testing.T) {
	assert := assert.New(t)

	underlying := errors.New("no such table: api_keys")
	unrelated := errors.New("unrelated failure")
	wrapped := WrapDB("query api key", underlying)

	assert.True(errors.Is(wrapped, underlying))
	assert.True(errors.Is(wrapped, ErrDB))
	assert.False(errors.Is(wrapped, unrelated))
	assert.Equal("query api key: "+underlying.Error(), wrapped.Error())
}

func Test_Error_unwrapReturnsNilWithNoCauses(t *testing.T) {
	err := New("standalone")
	assert.Nil(t, err.Unwrap())
}
