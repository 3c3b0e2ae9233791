package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mescon/Composelab/internal/widgets"
)

// Action responses carry the widget view flattened next to "changed".

type counterActionResponse struct {
	Changed bool `json:"changed"`
	widgets.CounterSnapshot
}

type stopwatchActionResponse struct {
	Changed bool `json:"changed"`
	widgets.StopwatchSnapshot
}

type colorActionResponse struct {
	Changed bool `json:"changed"`
	widgets.ColorSnapshot
}

type boardActionResponse struct {
	Changed bool `json:"changed"`
	widgets.BoardView
}

// handleAction dispatches action on the board and lets respond render the result.
// A no-op, such as starting a running stopwatch, is still a 200 with changed=false.
func (s *RESTServer) handleAction(action widgets.Action, respond func(c *gin.Context, changed bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		changed, err := s.board.Dispatch(action)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, ErrMsgInternalError, err)
			return
		}
		respond(c, changed)
	}
}

func (s *RESTServer) respondCounter(c *gin.Context, changed bool) {
	c.JSON(http.StatusOK, counterActionResponse{Changed: changed, CounterSnapshot: s.board.View().Counter})
}

func (s *RESTServer) respondStopwatch(c *gin.Context, changed bool) {
	c.JSON(http.StatusOK, stopwatchActionResponse{Changed: changed, StopwatchSnapshot: s.board.View().Stopwatch})
}

func (s *RESTServer) respondColor(c *gin.Context, changed bool) {
	c.JSON(http.StatusOK, colorActionResponse{Changed: changed, ColorSnapshot: s.board.View().Color})
}

func (s *RESTServer) getBoard(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.View())
}

// resetBoard zeroes the counter and the stopwatch, like a scheduled reset.
func (s *RESTServer) resetBoard(c *gin.Context) {
	s.board.ResetAll()
	c.JSON(http.StatusOK, boardActionResponse{Changed: true, BoardView: s.board.View()})
}

func (s *RESTServer) getCounter(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.View().Counter)
}

func (s *RESTServer) getStopwatch(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.View().Stopwatch)
}

func (s *RESTServer) getColor(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.View().Color)
}
