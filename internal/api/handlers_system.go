package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mescon/Composelab/internal/config"
)

// SystemInfo contains runtime environment information
type SystemInfo struct {
	Version    string           `json:"version"`
	OS         string           `json:"os"`
	Arch       string           `json:"arch"`
	GoVersion  string           `json:"go_version"`
	Uptime     string           `json:"uptime"`
	UptimeSecs int64            `json:"uptime_seconds"`
	StartedAt  time.Time        `json:"started_at"`
	Config     SystemConfigInfo `json:"config"`
}

// SystemConfigInfo contains configuration details
type SystemConfigInfo struct {
	Port           string `json:"port"`
	LogLevel       string `json:"log_level"`
	LogDir         string `json:"log_dir"`
	TickInterval   string `json:"tick_interval"`
	StopwatchSeed  int    `json:"stopwatch_seed"`
	ResetSchedule  string `json:"reset_schedule"`
	RateLimitRPS   int    `json:"rate_limit_rps"`
	RateLimitBurst int    `json:"rate_limit_burst"`
}

func (s *RESTServer) handleSystemInfo(c *gin.Context) {
	cfg := config.Get()
	uptime := time.Since(s.startTime)

	schedule := cfg.ResetSchedule
	if s.scheduler != nil {
		schedule = s.scheduler.Schedule()
	}

	c.JSON(http.StatusOK, SystemInfo{
		Version:    config.Version,
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		GoVersion:  runtime.Version(),
		Uptime:     formatUptime(uptime),
		UptimeSecs: int64(uptime.Seconds()),
		StartedAt:  s.startTime,
		Config: SystemConfigInfo{
			Port:           cfg.Port,
			LogLevel:       cfg.LogLevel,
			LogDir:         cfg.LogDir,
			TickInterval:   cfg.TickInterval.String(),
			StopwatchSeed:  cfg.StopwatchSeed,
			ResetSchedule:  schedule,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
	})
}
