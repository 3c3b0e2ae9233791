package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mescon/Composelab/internal/config"
)

// formatUptime returns a human-readable uptime string
func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (s *RESTServer) handleHealth(c *gin.Context) {
	uptime := time.Since(s.startTime)
	view := s.board.View()

	resp := gin.H{
		"status":            "healthy",
		"version":           config.Version,
		"uptime":            formatUptime(uptime),
		"uptime_seconds":    int64(uptime.Seconds()),
		"websocket_clients": s.hub.ClientCount(),
		"stopwatch_running": view.Stopwatch.Running,
	}
	if s.eventBus != nil {
		resp["events_dropped"] = s.eventBus.Dropped()
	}
	c.JSON(http.StatusOK, resp)
}
