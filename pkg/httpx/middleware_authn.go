package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/AvallenSolutions/kindredcollective/pkg/jwtx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

// AuthnMiddleware verifies the bearer session token and injects the user's
// identity into the request context. Internal verification failures are never
// leaked to the client; the response is a generic 401.
func AuthnMiddleware(tokens *jwtx.Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := tokens.Verify(raw)
			if err != nil {
				log.Warn("session token rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	return ctx
}
