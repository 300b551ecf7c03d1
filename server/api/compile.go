package api

import (
	"net/http"

	"github.com/shine00chang/cilantro/internal/history"
	"github.com/shine00chang/cilantro/server/result"
)

// CompileRequest is the body of POST /compile.
type CompileRequest struct {
	Source string `json:"source"`
}

// CompileResponse carries the compiled WAT module on success.
type CompileResponse struct {
	WAT string `json:"wat"`
}

// HTTPCompile returns a HandlerFunc that runs a source string through the
// full compiler pipeline and returns the resulting WAT module.
func (api API) HTTPCompile() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCompile)
}

func (api API) epCompile(req *http.Request) result.Result {
	var body CompileRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if body.Source == "" {
		return result.BadRequest("source: property is empty or missing from request", "empty source")
	}

	wat, err := api.Compile(body.Source, api.Library, api.ReserveBytes)

	success := err == nil
	diagnostic := ""
	if err != nil {
		diagnostic = err.Error()
	}
	if api.History != nil {
		_, _ = api.History.Record(req.Context(), history.HashSource(body.Source), success, diagnostic)
	}

	if err != nil {
		return result.BadRequest(err.Error(), "compile failed: %s", err.Error())
	}

	return result.OK(CompileResponse{WAT: wat}, "compiled %d bytes of source", len(body.Source))
}
