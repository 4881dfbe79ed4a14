package httptransport

import (
	"net/http"

	"volunteermatch/internal/auth/claims"
)

// maxGraphQLBody caps request bodies; registration payloads are tiny.
const maxGraphQLBody = 1 << 20

// ClaimsRequest attaches the request's headers to the context for the claims
// resolver. Plain HTTP has no gateway authorizer, so only the bearer token
// strategy can apply.
func ClaimsRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string, len(r.Header))
		for name, values := range r.Header {
			if len(values) > 0 {
				headers[name] = values[0]
			}
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxGraphQLBody)
		ctx := claims.WithRequest(r.Context(), claims.Request{Headers: headers})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
