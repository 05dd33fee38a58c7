package middleware

import (
	"context"
	"net/http"
	"strings"
)

type UserIDKey struct{}

const TokenCookieName = "token"

type TokenParser interface {
	Parse(string) (string, error)
}

// Auth accepts the token from the cookie or a Bearer Authorization header.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			accessToken := bearerToken(req)

			if accessToken == "" {
				tokenCookie, err := req.Cookie(TokenCookieName)
				if err != nil {
					if err == http.ErrNoCookie {
						resp.WriteHeader(http.StatusUnauthorized)
						return
					}

					resp.WriteHeader(http.StatusInternalServerError)
					return
				}

				accessToken = tokenCookie.Value
			}

			userID, err := tokens.Parse(accessToken)
			if err != nil {
				resp.WriteHeader(http.StatusUnauthorized)
				return
			}

			req = req.WithContext(context.WithValue(req.Context(), UserIDKey{}, userID))

			next.ServeHTTP(resp, req)
		})
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}
