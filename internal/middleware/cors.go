package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors lets browser clients on any origin play. Sessions are claimed by a
// bearer token rather than cookies, so credentials are never allowed, and
// Location is exposed for the URL of a newly created session.
func Cors() Middleware {
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         600,
	}
	return cors.New(options).Handler
}
