package api

import (
	"net/http"
	"strings"

	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/models/dtos"
)

// DiscordCallback handles POST /api/auth/discord/callback?code=
//
// Exchanges the authorization code with Discord, reads the user's guild
// roles and sets the session cookie.
func (h *Handlers) DiscordCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			common.RespondError(w, common.Invalid(constants.MsgNoCode), "")
			return
		}

		user, err := h.deps.Identity.Identify(r.Context(), code, h.redirectURL(r))
		if err != nil {
			common.RespondError(w, common.Upstream(constants.MsgAuthFailed, err), constants.MsgAuthFailed)
			return
		}

		token, expiresAt, err := h.deps.Signer.Issue(*user)
		if err != nil {
			common.RespondError(w, common.Upstream(constants.MsgAuthFailed, err), constants.MsgAuthFailed)
			return
		}
		h.deps.Metrics.SessionIssued()
		auth.SetSessionCookie(w, h.deps.Cookies(), token, expiresAt)

		logging.Info("session issued", "user_id", user.ID, "username", user.Username, "roles", len(user.Roles))
		common.RespondSuccess(w, dtos.AuthResponse{User: h.userView(user)})
	}
}

// redirectURL is the configured callback URL, or one derived from the
// request host when none is set.
func (h *Handlers) redirectURL(r *http.Request) string {
	if u := h.deps.Config.Discord.RedirectURL; u != "" {
		return u
	}
	scheme := "https"
	if h.deps.Config.AppEnv == "development" {
		scheme = "http"
	}
	return scheme + "://" + r.Host + "/api/auth/discord/callback"
}

// VerifySession handles GET /api/auth/verify. AuthMiddleware has already
// rejected missing and invalid sessions.
func (h *Handlers) VerifySession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetSession(r.Context())
		if claims == nil {
			common.RespondError(w, common.Unauthenticated(constants.MsgNoSession), "")
			return
		}
		common.RespondSuccess(w, dtos.AuthResponse{User: h.userView(claims.User())})
	}
}

// Logout handles POST /api/auth/logout. The cookie is always cleared; a
// still valid token is also revoked so copies of it stop working.
func (h *Handlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := auth.SessionToken(r); token != "" {
			if claims, err := h.deps.Signer.Verify(r.Context(), token); err == nil {
				if err := h.deps.Signer.Revoke(r.Context(), claims); err != nil {
					logging.Warn("failed to revoke session", "user_id", claims.UserID, "error", err.Error())
				}
			}
		}

		auth.ClearSessionCookie(w, h.deps.Cookies())
		common.RespondSuccess(w, dtos.LogoutResponse{Message: "Logged out successfully"})
	}
}
