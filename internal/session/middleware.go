package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marqueeapp/marquee-server/internal/id"
)

// CookieName is the session cookie.
const CookieName = "marquee_session"

type contextKey struct{}

// WithID returns a context carrying sessionID.
func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKey{}, sessionID)
}

// IDFromContext returns the session ID attached by Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(contextKey{}).(string)
	return sid, ok && sid != ""
}

// Middleware makes sure every request belongs to a session. A missing, expired or
// tampered cookie starts a new session. A valid token past half its lifetime is
// re-issued for the same session ID. The cookie has no Max-Age so the browser drops
// it when the browsing session ends; the token's own expiry bounds it server-side.
func Middleware(codec *Codec, secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				sid, exp, verr := codec.VerifyWithExpiry(c.Value)
				if verr == nil {
					if codec.NeedsRefresh(exp) {
						setCookie(w, codec, sid, secure, logger)
					}
					next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
					return
				}
				logger.Debug("discarding session cookie", "error", verr)
			}

			sid, err := id.Generate(id.PrefixSession)
			if err != nil {
				logger.Error("failed to create session id", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			setCookie(w, codec, sid, secure, logger)
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
		})
	}
}

func setCookie(w http.ResponseWriter, codec *Codec, sid string, secure bool, logger *slog.Logger) {
	token, exp := codec.Issue(sid)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Debug("session token issued", "session", sid, "expires", exp)
}
