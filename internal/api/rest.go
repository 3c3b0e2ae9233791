// Package api provides the REST API handlers and server for Composelab.
// It exposes the board's widgets as JSON resources, streams live state over
// WebSocket and serves the embedded page.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mescon/Composelab/internal/clock"
	"github.com/mescon/Composelab/internal/config"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
	"github.com/mescon/Composelab/internal/metrics"
	"github.com/mescon/Composelab/internal/services"
	"github.com/mescon/Composelab/internal/web"
	"github.com/mescon/Composelab/internal/widgets"
)

// Board is the part of *widgets.Board the server drives.
type Board interface {
	View() widgets.BoardView
	Dispatch(action widgets.Action) (changed bool, err error)
	ResetAll()
}

var _ Board = (*widgets.Board)(nil)

type RESTServer struct {
	router     *gin.Engine
	httpServer *http.Server
	board      Board
	eventBus   *eventbus.EventBus
	scheduler  services.Scheduler
	metrics    *metrics.MetricsService
	hub        *WebSocketHub
	limiter    *RateLimiter
	startTime  time.Time
}

// ServerDeps contains all dependencies required for the REST server
type ServerDeps struct {
	Board     Board
	EventBus  *eventbus.EventBus
	Scheduler services.Scheduler // optional
	Metrics   *metrics.MetricsService
	Clock     clock.Clock // rate limiter clock; nil uses the wall clock
}

func NewRESTServer(deps ServerDeps) *RESTServer {
	// Set Gin to release mode for production (suppresses debug warnings)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Request ID middleware for correlation/tracing
	r.Use(func(c *gin.Context) {
		// Use existing request ID from header if provided, otherwise generate one
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	})

	// Custom recovery middleware with enhanced logging
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		reqID := c.GetString("request_id")
		logger.Errorf("[PANIC RECOVERY] request_id=%s path=%s method=%s error=%v",
			reqID, c.Request.URL.Path, c.Request.Method, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
			Error:     ErrMsgInternalError,
			RequestID: reqID,
		})
	}))

	cfg := config.Get()
	r.Use(corsMiddleware(cfg.CORSOrigin))

	limiter := NewRateLimiter(cfg.RateLimitRPS, time.Second, cfg.RateLimitBurst, deps.Clock)

	s := &RESTServer{
		router:    r,
		board:     deps.Board,
		eventBus:  deps.EventBus,
		scheduler: deps.Scheduler,
		metrics:   deps.Metrics,
		hub:       NewWebSocketHub(deps.EventBus, deps.Board, limiter, cfg.CORSOrigin),
		limiter:   limiter,
		startTime: time.Now(),
	}

	s.setupRoutes()

	return s
}

// corsMiddleware applies COMPOSELAB_CORS_ORIGIN. When unset no CORS header is
// written and the browser enforces same-origin. "*" is meant for development.
func corsMiddleware(corsOrigins string) gin.HandlerFunc {
	allowedOrigins := parseOrigins(corsOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if corsOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func parseOrigins(corsOrigins string) map[string]bool {
	allowed := make(map[string]bool)
	if corsOrigins == "" || corsOrigins == "*" {
		return allowed
	}
	for _, origin := range strings.Split(corsOrigins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			allowed[o] = true
		}
	}
	return allowed
}

// serveIndexWithState serves index.html with the current board view injected,
// so the page renders before the WebSocket connects.
func (s *RESTServer) serveIndexWithState(readFile func() ([]byte, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readFile()
		if err != nil {
			logger.Errorf("Failed to read %s: %v", web.IndexFile, err)
			c.Status(http.StatusNotFound)
			return
		}
		state, err := json.Marshal(s.board.View())
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, ErrMsgInternalError, err)
			return
		}
		injectedScript := fmt.Sprintf(`<script>window.__COMPOSELAB_STATE__=%s;</script></head>`, state)
		html := strings.Replace(string(data), "</head>", injectedScript, 1)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}

func (s *RESTServer) setupRoutes() {
	// Prometheus metrics endpoint at root level (standard convention)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.router.GET("/ws", s.hub.HandleConnection)

	indexHandler := s.serveIndexWithState(web.ReadIndex)
	s.router.GET("/", indexHandler)
	s.router.GET("/"+web.IndexFile, indexHandler)

	limited := s.limiter.Middleware()

	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/system/info", s.handleSystemInfo)
		api.GET("/logs/recent", s.handleRecentLogs)
		api.GET("/logs/download", s.handleDownloadLogs)

		api.GET("/board", s.getBoard)
		api.POST("/board/reset", limited, s.resetBoard)

		api.GET("/counter", s.getCounter)
		api.POST("/counter/increment", limited, s.handleAction(widgets.ActionCounterIncrement, s.respondCounter))
		api.POST("/counter/reset", limited, s.handleAction(widgets.ActionCounterReset, s.respondCounter))

		api.GET("/stopwatch", s.getStopwatch)
		api.POST("/stopwatch/start", limited, s.handleAction(widgets.ActionStopwatchStart, s.respondStopwatch))
		api.POST("/stopwatch/stop", limited, s.handleAction(widgets.ActionStopwatchStop, s.respondStopwatch))
		api.POST("/stopwatch/reset", limited, s.handleAction(widgets.ActionStopwatchReset, s.respondStopwatch))

		api.GET("/color", s.getColor)
		api.POST("/color/toggle", limited, s.handleAction(widgets.ActionColorToggle, s.respondColor))

		api.GET("/schedule", s.getSchedule)
		api.PUT("/schedule", limited, s.updateSchedule)
	}

	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			abortWithError(c, http.StatusNotFound, errMsgNoEndpoint, nil)
			return
		}
		c.Redirect(http.StatusFound, "/")
	})
}

// Router exposes the gin engine, mainly for tests.
func (s *RESTServer) Router() *gin.Engine {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *RESTServer) Hub() *WebSocketHub {
	return s.hub
}

func (s *RESTServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server, then closes WebSocket
// clients and stops the rate limiter.
func (s *RESTServer) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.hub.Close()
	s.limiter.Stop()
	return err
}
