package api

import (
	"net/http"

	"github.com/shine00chang/cilantro/internal/version"
	"github.com/shine00chang/cilantro/server/result"
)

// InfoResponse reports the running server's version.
type InfoResponse struct {
	Version string `json:"version"`
}

// HTTPGetInfo returns a HandlerFunc that reports version info on the
// running cilantro-serve instance. It is mounted without auth required.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	return result.OK(InfoResponse{Version: version.Current}, "reported API info")
}
