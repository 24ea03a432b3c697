// Package viewer serves the browser viewer, the session journal and the
// Prometheus endpoint on the HTTP port.
package viewer

import (
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/JackWithOneEye/pcviewer/internal/database"
	"github.com/JackWithOneEye/pcviewer/internal/httplog"
	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const defaultSessionLimit = 50

type ViewerConfig interface {
	Host() string
	Port() uint
	HTTPPort() uint
}

// NewServer returns an http.Server for the viewer. assets must hold
// index.html at its root.
func NewServer(cfg ViewerConfig, assets fs.FS, journal database.DatabaseService) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host(), strconv.FormatUint(uint64(cfg.HTTPPort()), 10)),
		Handler:      NewHandler(cfg, assets, journal),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func NewHandler(cfg ViewerConfig, assets fs.FS, journal database.DatabaseService) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), httplog.Middleware(log.With().Str("component", "viewer").Logger()))

	script := viewerScriptConfig{WSPort: cfg.Port(), WSPath: "/ws"}
	index := InjectScript(script, func(c *gin.Context) {
		b, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			c.String(http.StatusNotFound, "viewer not bundled")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", b)
	})
	r.GET("/", index)
	r.GET("/index.html", index)
	r.StaticFS("/static", http.FS(assets))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/sessions", func(c *gin.Context) {
		recs, ok := listSessions(c, journal)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, recs)
	})
	r.GET("/journal", func(c *gin.Context) {
		recs, ok := listSessions(c, journal)
		if !ok {
			return
		}
		templ.Handler(journalPage(recs)).ServeHTTP(c.Writer, c.Request)
	})

	return r
}

// listSessions reads ?limit and queries the journal, answering the request
// itself on failure.
func listSessions(c *gin.Context, journal database.DatabaseService) ([]database.SessionRecord, bool) {
	limit := defaultSessionLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return nil, false
		}
		limit = n
	}
	recs, err := journal.GetSessions(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("could not list sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return nil, false
	}
	return recs, true
}
