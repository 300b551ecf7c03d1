// Package middle contains middleware for the cilantro-serve HTTP API.
//
// Grounded on TunaQuest's server/middle: the same AuthHandler/Middleware
// shape, adapted to validate an API key's bearer JWT (server/auth) instead
// of looking up a dao.User.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/shine00chang/cilantro/server/auth"
	"github.com/shine00chang/cilantro/server/result"
)

type mwFunc http.HandlerFunc

func (sf mwFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sf(w, req)
}

// Middleware is a function that takes a handler and returns a new handler
// which wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthCtxKey is a key in the context of a request populated by RequireAuth.
type AuthCtxKey int64

const (
	AuthLoggedIn AuthCtxKey = iota
	AuthKey
)

type authHandler struct {
	store         *auth.Store
	secret        []byte
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *authHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	key, err := auth.ValidateBearer(req.Context(), req.Header.Get("Authorization"), ah.secret, ah.store)
	if err != nil {
		r := result.Unauthorized("", err.Error())
		time.Sleep(ah.unauthedDelay)
		r.WriteResponse(w)
		return
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, true)
	ctx = context.WithValue(ctx, AuthKey, key)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that requires a valid bearer token, issued
// from an API key via POST /auth/token, on every request it wraps.
func RequireAuth(store *auth.Store, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &authHandler{store: store, secret: secret, unauthedDelay: unauthDelay, next: next}
	}
}

// DontPanic returns a Middleware that performs a panic check as it exits. If
// the wrapped handler panics, it writes a generic HTTP-500 instead of
// crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, r *http.Request) {
			defer panicTo500(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		r.WriteResponse(w)
		return true
	}
	return false
}
