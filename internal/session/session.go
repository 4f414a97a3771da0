package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	CookieName  = "drawing_session"
	ClientIDKey = "client_id"

	separator = ":"
)

// Session identifies a client across reconnects. ClientID is chosen by the
// client, SessionID is issued by the server.
type Session struct {
	ClientID  string
	SessionID string
}

type contextKey struct{}

func (s Session) encode() string {
	return s.ClientID + separator + s.SessionID
}

func decode(value string) (Session, bool) {
	idx := strings.LastIndex(value, separator)
	if idx <= 0 || idx == len(value)-1 {
		return Session{}, false
	}
	sess := Session{ClientID: value[:idx], SessionID: value[idx+1:]}
	if _, err := uuid.Parse(sess.SessionID); err != nil {
		return Session{}, false
	}
	return sess, true
}

// Middleware attaches the caller's session to the request context. A
// request without a session cookie gets one issued when it names its
// client id in the query string; otherwise it proceeds without a session.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil {
			if sess, ok := decode(cookie.Value); ok {
				next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
				return
			}
			log.Debug().Str("path", r.URL.Path).Msg("[session.Middleware] ignoring malformed session cookie")
		}

		clientID := strings.TrimSpace(r.URL.Query().Get(ClientIDKey))
		if clientID == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess := Session{ClientID: clientID, SessionID: uuid.NewString()}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.encode(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		log.Debug().Str("client", clientID).Msg("[session.Middleware] session issued")
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}
