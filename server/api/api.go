// Package api provides the HTTP endpoints of cilantro-serve: POST
// /auth/token to exchange an API key for a bearer JWT, and POST /compile to
// run a source string through the full lex -> ... -> codegen pipeline.
//
// Grounded on TunaQuest's server/api: the same Result-returning endpoint
// shape, wrapped by httpEndpoint into an http.HandlerFunc that logs the
// outcome and applies an unauthorized-request delay.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shine00chang/cilantro/internal/history"
	"github.com/shine00chang/cilantro/server/auth"
	"github.com/shine00chang/cilantro/server/result"
)

// PathPrefix is the prefix every route in this package is mounted under.
const PathPrefix = "/api/v1"

// API holds the dependencies every endpoint needs and exposes each endpoint
// as an http.HandlerFunc-returning method, to be wired into a router by the
// caller (cmd/cilantro-serve).
type API struct {
	// Keys is the registry of API keys that can be exchanged for a bearer
	// token.
	Keys *auth.Store

	// Secret signs and validates the JWTs this package issues.
	Secret []byte

	// UnauthDelay is how long a request pauses before an HTTP-401/403/500
	// response is sent, to deprioritize such requests.
	UnauthDelay time.Duration

	// Compile runs the full compiler pipeline. It is a function value
	// rather than a direct import of cmd/cilantroc's pipeline so that
	// server/api stays independent of main-package code; cmd/cilantro-serve
	// supplies the implementation at startup.
	Compile func(source, library string, reserveBytes int) (wat string, err error)

	// Library is the standard-library WAT source text passed to Compile on
	// every request.
	Library string

	// ReserveBytes is the linear-memory prelude size passed to Compile.
	ReserveBytes int

	// History, if non-nil, is written to after every /compile request.
	History *history.Store
}

// EndpointFunc is a handler that computes a result.Result instead of writing
// directly to an http.ResponseWriter.
type EndpointFunc func(req *http.Request) result.Result

func httpEndpoint(unauthDelay time.Duration, ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		r := ep(req)

		if r.Status == 0 {
			logHTTPResponse("ERROR", req, http.StatusInternalServerError, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		if err := r.PrepareMarshaledResponse(); err != nil {
			newResp := result.Err(r.Status, "An internal server error occurred", "could not marshal JSON response: "+err.Error())
			newResp.WriteResponse(w)
			return
		}

		if r.IsErr {
			logHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
		} else {
			logHTTPResponse("INFO", req, r.Status, r.InternalMsg)
		}

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			time.Sleep(unauthDelay)
		}

		r.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		result.TextErr(http.StatusInternalServerError, "An internal server error occurred", "panic: %v", panicErr).WriteResponse(w)
		return true
	}
	return false
}

func logHTTPResponse(level string, req *http.Request, status int, msg string) {
	for len(level) < 5 {
		level += " "
	}
	remoteIP := strings.SplitN(req.RemoteAddr, ":", 2)[0]
	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, status, msg)
}

// parseJSON decodes req's body into v, which must be a pointer.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("malformed JSON in request: %w", err)
	}
	return nil
}
