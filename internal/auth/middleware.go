package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/nippoworks/api-nippo/internal/authz"
	"github.com/nippoworks/api-nippo/internal/httputil"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

// WithPrincipal puts the resolved principal on the context. Exposed so
// handler tests can run without the middleware.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFromContext returns the session principal, if any.
func PrincipalFromContext(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(authz.Principal)
	return p, ok
}

// Middleware resolves the Bearer token into a principal before any protected
// handler runs. No session on a protected route is a 401, full stop.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証トークンが無効です")
			return
		}
		p := authz.Principal{ID: claims.SalesPersonID, IsManager: claims.IsManager}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireManager gates master-data mutation routes.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
			return
		}
		if !p.IsManager {
			httputil.Error(w, http.StatusForbidden, httputil.CodeForbidden, "管理者のみ実行できます")
			return
		}
		next.ServeHTTP(w, r)
	})
}
