package api

import (
	"errors"
	"net/http"

	"github.com/shine00chang/cilantro/server/auth"
	"github.com/shine00chang/cilantro/server/result"
)

// TokenRequest is the body of POST /auth/token: the API key's name and its
// plaintext secret.
type TokenRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// TokenResponse carries the bearer token to present on subsequent requests.
type TokenResponse struct {
	Token string `json:"token"`
}

// HTTPCreateToken returns a HandlerFunc that exchanges a valid API key for a
// bearer JWT. Grounded on TunaQuest's epCreateLogin, adapted from a
// username/password login to a named-key exchange.
func (api API) HTTPCreateToken() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateToken)
}

func (api API) epCreateToken(req *http.Request) result.Result {
	var body TokenRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if body.Name == "" || body.Secret == "" {
		return result.BadRequest("name and secret are both required", "missing name or secret")
	}

	key, err := api.Keys.Verify(req.Context(), body.Name, body.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			return result.Unauthorized(err.Error(), "key '%s': %s", body.Name, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	tok, err := auth.GenerateJWT(api.Secret, key)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	return result.Created(TokenResponse{Token: tok}, "key '%s' successfully exchanged for token", key.Name)
}
