// Package api exposes the per-profile data services over a chi HTTP
// surface: one LIST/LIST_GROUPS/ADD/REMOVE/UPDATE set per record kind,
// always scoped to a single user id.
package api

import (
	"net/http"
	"strings"
)

// AuthMiddleware enforces Bearer token auth on every route. With enabled
// false it is a pass-through, the local-development default.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
