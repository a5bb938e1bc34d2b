package sync

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades /ws requests and subscribes them to hub. Browsers may
// connect from the serving host or from one of allowedOrigins
// ("https://host:port"); clients that send no Origin, such as moviectl, are accepted.
func WSHandler(hub *Hub, allowedOrigins ...string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("ws upgrade rejected", "remote_addr", c.Request.RemoteAddr, "origin", c.GetHeader("Origin"), "error", err)
			return
		}

		// welcome goes out before the client is visible to broadcasts
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`))
		hub.Add(ws)
		slog.Info("ws client connected", "remote_addr", c.Request.RemoteAddr)

		// incoming messages are ignored; reading detects the disconnect
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(ws)
		slog.Info("ws client disconnected", "remote_addr", c.Request.RemoteAddr)
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	extra := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"); o != "" {
			extra[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := extra[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
