package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mescon/Composelab/internal/domain"
	"github.com/mescon/Composelab/internal/eventbus"
	"github.com/mescon/Composelab/internal/logger"
)

// Resetter is the part of a board the scheduler drives.
type Resetter interface {
	ResetAll()
}

// Scheduler is the interface the API uses to manage the reset schedule.
type Scheduler interface {
	SetSchedule(expr string) error
	Schedule() string
	NextRun() time.Time
}

var _ Scheduler = (*SchedulerService)(nil)

// SchedulerService resets the board on a cron schedule.
type SchedulerService struct {
	board    Resetter
	eventBus eventbus.Publisher
	cron     *cron.Cron
	entry    cron.EntryID
	expr     string
	mu       sync.Mutex
}

func NewSchedulerService(board Resetter, eb eventbus.Publisher) *SchedulerService {
	return &SchedulerService{
		board:    board,
		eventBus: eb,
		cron:     cron.New(),
	}
}

func (s *SchedulerService) Start() {
	logger.Infof("Starting Scheduler Service...")
	s.cron.Start()
}

// Stop halts the cron runner and waits for a running reset to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// SetSchedule replaces the reset schedule. An empty expression disables it.
// Expressions use the standard five-field syntax or descriptors like "@daily".
func (s *SchedulerService) SetSchedule(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
	s.expr = expr
	if expr == "" {
		logger.Infof("Scheduled board reset disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(expr, s.RunNow)
	if err != nil {
		s.expr = ""
		return fmt.Errorf("failed to schedule reset: %w", err)
	}
	s.entry = entryID
	logger.Infof("Scheduled board reset: %s", expr)
	return nil
}

// Schedule returns the active expression, or "" when disabled.
func (s *SchedulerService) Schedule() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expr
}

// NextRun returns when the next reset fires. It is zero when disabled or
// before Start.
func (s *SchedulerService) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// RunNow performs the scheduled reset immediately.
func (s *SchedulerService) RunNow() {
	logger.Infof("Executing scheduled board reset")
	if s.eventBus != nil {
		if err := s.eventBus.Publish(domain.Event{
			AggregateType: domain.AggregateBoard,
			AggregateID:   domain.AggregateBoard,
			EventType:     domain.ScheduledReset,
		}); err != nil {
			logger.Errorf("Failed to publish %s: %v", domain.ScheduledReset, err)
		}
	}
	s.board.ResetAll()
}
