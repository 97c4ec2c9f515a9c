package bot

import (
	"fmt"
	log "log/slog"

	"discord-blog/eventloop"

	"github.com/robfig/cron/v3"
)

// Scheduler runs cron jobs on the event loop.
type Scheduler struct {
	cron *cron.Cron
	loop *eventloop.Loop
	jobs int
}

// NewScheduler creates a scheduler posting its jobs to loop.
func NewScheduler(loop *eventloop.Loop) *Scheduler {
	return &Scheduler{cron: cron.New(), loop: loop}
}

// AddJob schedules fn with a standard cron spec. An empty spec is ignored.
func (s *Scheduler) AddJob(name, spec string, fn func()) error {
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		log.Debug("running scheduled job", "job", name)
		if !s.loop.Go(fn) {
			log.Warn("event loop stopped, skipping scheduled job", "job", name)
		}
	})
	if err != nil {
		return fmt.Errorf("could not set up cron job %s: %w", name, err)
	}
	s.jobs++
	log.Info("scheduled job", "job", name, "spec", spec)
	return nil
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return s.jobs
}

// Start starts the cron jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Debug("scheduler stopped")
}
