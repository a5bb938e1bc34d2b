package movies

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const flashSessionName = "topmovies-flash"

// Flasher carries one-shot notices across the redirect after a form post.
type Flasher struct {
	store sessions.Store
}

// NewCookieFlasher keeps flashes in a signed cookie.
func NewCookieFlasher(secret []byte, secure bool) *Flasher {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flasher{store: store}
}

func (f *Flasher) Add(c *gin.Context, msg string) {
	if f == nil {
		return
	}
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		// a stale or tampered cookie still yields a fresh session
		slog.Debug("flash session decode", "error", err)
	}
	session.AddFlash(msg)
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Warn("save flash session", "error", err)
	}
}

// Pop returns and clears pending flashes.
func (f *Flasher) Pop(c *gin.Context) []string {
	if f == nil {
		return nil
	}
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Warn("clear flash session", "error", err)
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
