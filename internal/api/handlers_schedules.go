package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ScheduleResponse describes the scheduled board reset.
type ScheduleResponse struct {
	Expression string     `json:"expression"`
	Enabled    bool       `json:"enabled"`
	NextRun    *time.Time `json:"next_run"`
}

type scheduleRequest struct {
	Expression *string `json:"expression"`
}

func (s *RESTServer) scheduleResponse() ScheduleResponse {
	resp := ScheduleResponse{Expression: s.scheduler.Schedule()}
	resp.Enabled = resp.Expression != ""
	if next := s.scheduler.NextRun(); !next.IsZero() {
		resp.NextRun = &next
	}
	return resp
}

func (s *RESTServer) getSchedule(c *gin.Context) {
	if s.scheduler == nil {
		abortWithError(c, http.StatusServiceUnavailable, errMsgNoScheduler, nil)
		return
	}
	c.JSON(http.StatusOK, s.scheduleResponse())
}

// updateSchedule replaces the reset schedule. An empty expression disables it.
func (s *RESTServer) updateSchedule(c *gin.Context) {
	if s.scheduler == nil {
		abortWithError(c, http.StatusServiceUnavailable, errMsgNoScheduler, nil)
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrMsgInvalidRequest, err)
		return
	}
	if req.Expression == nil {
		abortInvalid(c, errors.New("expression is required"))
		return
	}

	if err := s.scheduler.SetSchedule(*req.Expression); err != nil {
		abortInvalid(c, err)
		return
	}
	c.JSON(http.StatusOK, s.scheduleResponse())
}
