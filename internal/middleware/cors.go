package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS builds cross-origin middleware from a comma-separated origin
// allowlist. "*" permits any origin but then credentials are not
// allowed, matching browser rules.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := splitOrigins(origins)

	wildcard := len(allowed) == 1 && allowed[0] == "*"
	c := cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: !wildcard,
		MaxAge:           86400,
	})
	return c.Handler
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}
