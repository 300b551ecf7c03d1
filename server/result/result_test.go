package result

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OK_writesStatusAndJSONBody(t *testing.T) {
	assert := assert.New(t)

	type payload struct {
		WAT string `json:"wat"`
	}
	r := OK(payload{WAT: "(module)"}, "compiled %d bytes", 12)
	assert.Equal(http.StatusOK, r.Status)
	assert.False(r.IsErr)
	assert.Equal("compiled 12 bytes", r.InternalMsg)

	rec := httptest.NewRecorder()
	r.WriteResponse(rec)
	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("application/json", rec.Header().Get("Content-Type"))

	var got payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal("(module)", got.WAT)
}

func Test_BadRequest_writesErrorResponseBody(t *testing.T) {
	assert := assert.New(t)

	r := BadRequest("missing source field")
	rec := httptest.NewRecorder()
	r.WriteResponse(rec)

	assert.Equal(http.StatusBadRequest, rec.Code)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal("missing source field", got.Error)
	assert.Equal(http.StatusBadRequest, got.Status)
}

func Test_NoContent_writesEmptyBody(t *testing.T) {
	assert := assert.New(t)

	r := NoContent()
	rec := httptest.NewRecorder()
	r.WriteResponse(rec)

	assert.Equal(http.StatusNoContent, rec.Code)
	assert.Empty(rec.Body.Bytes())
}

func Test_Unauthorized_setsWWWAuthenticateHeader(t *testing.T) {
	r := Unauthorized("")
	rec := httptest.NewRecorder()
	r.WriteResponse(rec)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func Test_WithHeader_addsHeaderWithoutMutatingOriginal(t *testing.T) {
	assert := assert.New(t)

	base := OK(struct{}{})
	withHdr := base.WithHeader("X-Request-Id", "abc123")

	rec := httptest.NewRecorder()
	withHdr.WriteResponse(rec)
	assert.Equal("abc123", rec.Header().Get("X-Request-Id"))

	recBase := httptest.NewRecorder()
	base.WriteResponse(recBase)
	assert.Empty(recBase.Header().Get("X-Request-Id"))
}

func Test_WriteResponse_panicsOnZeroValueResult(t *testing.T) {
	assert.Panics(t, func() {
		var r Result
		r.WriteResponse(httptest.NewRecorder())
	})
}
