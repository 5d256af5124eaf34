package middleware

import (
	"context"
	"net/http"
	"strings"
)

type CtxKey int

const (
	CtxToken CtxKey = iota
)

// BearerToken stores the caller's session token in the request context. It
// is read from the Authorization header or, for websocket handshakes which
// cannot set headers from a browser, from the token query parameter.
func BearerToken() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxToken, strings.TrimSpace(token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Token(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(CtxToken).(string)
	return token, ok
}
