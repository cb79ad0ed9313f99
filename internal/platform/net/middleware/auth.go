package middleware

import (
	"net/http"

	"tally/internal/platform/logger"
	pnet "tally/internal/platform/net"
)

// AuthPort is the seam the identity service implements
type AuthPort interface {
	// Parse returns the authenticated owner id from the request or an error
	Parse(r *http.Request) (ownerID string, err error)
}

// Auth resolves the owner through the port and stashes it on the context
// a nil port disables authentication (dev mode)
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			oid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithOwner(r.Context(), oid)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), oid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
