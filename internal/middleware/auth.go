package middleware

import (
	"errors"
	"net/http"

	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/metrics"
)

// AuthMiddleware requires a valid session cookie and stores its claims in
// the request context. A bad cookie is cleared so the client falls back to
// the login page.
func AuthMiddleware(signer *auth.SessionSigner, cookies auth.CookieOptions, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.SessionToken(r)
			if token == "" {
				metricsReg.AuthDenied("no_session")
				common.RespondError(w, common.Unauthenticated(constants.MsgNoSession), "")
				return
			}

			claims, err := signer.Verify(r.Context(), token)
			if err != nil {
				var reason string
				switch {
				case errors.Is(err, auth.ErrSessionRevoked):
					reason = "revoked_session"
				case errors.Is(err, auth.ErrInvalidSession):
					reason = "invalid_session"
				default:
					// the revocation store failed, not the token
					common.RespondError(w, err, constants.MsgAuthFailed)
					return
				}
				metricsReg.AuthDenied(reason)
				auth.ClearSessionCookie(w, cookies)
				common.RespondError(w, common.Unauthenticated(constants.MsgInvalidSession), "")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetSession(r.Context(), claims)))
		})
	}
}
