package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"topmovies/internal/middleware"
	"topmovies/internal/movies"
	synchub "topmovies/internal/sync"
	"topmovies/internal/tmdb"
)

type routerDeps struct {
	DB        *sql.DB
	DBPath    string
	Repo      *movies.Repo
	Metadata  tmdb.Searcher
	Hub       *synchub.Hub
	Flash     *movies.Flasher
	WSOrigins []string
	Release   bool
}

func newRouter(d routerDeps) (*gin.Engine, error) {
	if d.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": d.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	router.GET("/ws", synchub.WSHandler(d.Hub, d.WSOrigins...))

	h, err := movies.NewHandler(d.Repo, d.Metadata, d.Hub, d.Flash)
	if err != nil {
		return nil, err
	}
	h.RegisterRoutes(router)
	return router, nil
}
