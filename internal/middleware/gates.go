package middleware

import (
	"net/http"

	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
)

// requireRoles builds a gate that lets the request through only when allow
// accepts the session's roles. It must run after AuthMiddleware.
func requireRoles(gate, message string, allow func(roles []string) bool, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetSession(r.Context())
			if claims == nil {
				common.RespondError(w, common.Unauthenticated(constants.MsgNoSession), "")
				return
			}

			if !allow(claims.Roles) {
				metricsReg.AuthDenied(gate)
				logging.Warn("permission denied",
					"gate", gate,
					"user_id", claims.UserID,
					"request_id", auth.GetRequestID(r.Context()),
				)
				common.RespondPermissionDenied(w, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAccess admits master roles and weapon leads.
func RequireAnyAccess(authz access.Authorizer, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return requireRoles("any_access", constants.MsgInsufficientAccess, authz.HasAnyAccessByRoles, metricsReg)
}

func RequireMaster(authz access.Authorizer, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return requireRoles("master", constants.MsgMasterRequired, authz.IsMasterByRoles, metricsReg)
}

func RequireLeadership(authz access.Authorizer, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return requireRoles("leadership", constants.MsgLeadershipRequired, authz.IsLeadershipByRoles, metricsReg)
}
