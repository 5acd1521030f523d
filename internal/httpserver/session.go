// internal/httpserver/session.go
//
// Player sessions. A session is identified by a UUID carried in an HS256 JWT
// cookie (or an Authorization: Bearer header). Missing or invalid tokens get a
// fresh session and a new cookie; the request never fails for lack of one.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/store"
)

const sessionCookieName = "guess_session"

// ctxSessionKey is the context key type for storing *store.Session.
type ctxSessionKey struct{}

// withSession resolves (or creates) the caller's session and stores it in the
// request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, ok := s.parseSession(bearerOrCookie(r))
		if !ok {
			sid = uuid.NewString()
			tok, exp, err := s.signSession(sid)
			if err != nil {
				log.Error().Err(err).Msg("sign session")
				writeError(w, http.StatusInternalServerError, "session_failed")
				return
			}
			s.setSessionCookie(w, tok, exp)
		}
		sess, err := s.store.GetOrCreate(r.Context(), sid, func() *store.Session {
			return store.NewSession(sid, game.New(s.opts.EngineOptions...))
		})
		if err != nil {
			log.Error().Err(err).Str("session", sid).Msg("load session")
			writeError(w, http.StatusInternalServerError, "session_failed")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session installed by withSession.
func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}

// signSession creates an HS256 JWT whose subject is the session ID.
func (s *Server) signSession(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.SessionSecret))
	return ss, exp, err
}

// parseSession verifies a token and returns its session ID.
func (s *Server) parseSession(tok string) (string, bool) {
	if tok == "" {
		return "", false
	}
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.opts.Production
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
