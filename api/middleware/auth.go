package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/threadline-backend/api/responses"
	pkgauth "github.com/angelmondragon/threadline-backend/pkg/auth"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

// StaffAuth requires a bearer staff token and stores the operator on the
// request context. A misconfigured signer fails every request closed.
func StaffAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	signer, signerErr := pkgauth.NewSigner(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if signerErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, signerErr, "staff auth misconfigured"))
				return
			}
			token, ok := bearerToken(r)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := signer.Parse(token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx = WithStaff(ctx, claims.Subject, claims.Role)
			if logg != nil {
				ctx = logg.WithFields(logg.WithActor(ctx, claims.Subject), map[string]any{
					"staff_role": string(claims.Role),
					"token_id":   claims.ID,
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
