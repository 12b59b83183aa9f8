package auth

import (
	"net/http"
	"time"

	"wohee/vodtracker/internal/constants"
)

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Domain string
	Secure bool
}

// SetSessionCookie writes token as an httpOnly session cookie expiring at expiresAt.
func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   opts.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionToken returns the raw session cookie value, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
