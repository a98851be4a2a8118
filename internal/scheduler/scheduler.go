// Package scheduler runs the periodic rating update and value bet refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/betting"
	"github.com/martofrog/tennis-predictions/internal/service"
)

// Scheduler manages the scheduled jobs
type Scheduler struct {
	cron            *cron.Cron
	training        *service.TrainingService
	betting         *betting.Service
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(training *service.TrainingService, bettingSvc *betting.Service, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		training:        training,
		betting:         bettingSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleDailyUpdate schedules the daily rating update. The job ingests the
// previous day's results so late finishes are included.
func (s *Scheduler) ScheduleDailyUpdate(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		s.logger.WithField("date", yesterday.Format("2006-01-02")).Info("Starting scheduled rating update")

		result, err := s.training.DailyUpdate(ctx, yesterday)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled rating update failed")
			return
		}
		s.logger.WithField("summary", result.String()).Info("Scheduled rating update completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled daily rating update")
	return nil
}

// ScheduleValueBetRefresh schedules periodic value bet scans for the given
// sports. minEdge is the probability edge threshold in percentage points.
func (s *Scheduler) ScheduleValueBetRefresh(intervalMinutes int, sports []string, minEdge float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalMinutes)*time.Minute)
		defer cancel()

		for _, sport := range sports {
			bets, err := s.betting.TodaysValueBets(ctx, sport, minEdge)
			if err != nil {
				s.logger.WithError(err).WithField("sport", sport).Error("Scheduled value bet scan failed")
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"sport":      sport,
				"value_bets": len(bets),
			}).Info("Scheduled value bet scan completed")
		}
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", intervalMinutes), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval_minutes", intervalMinutes).Info("Scheduled value bet refresh")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}
