package cron

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/robfig/cron/v3"
)

// JobFunc is a unit of scheduled work
type JobFunc func() error

type job struct {
	name     string
	schedule string
	entry    cron.EntryID
	run      JobFunc

	mu      sync.Mutex
	running bool
}

// Scheduler runs named jobs on cron schedules with seconds precision.
// A job that is still running when its next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger logging.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With(logging.String("component", "scheduler")),
		jobs:   make(map[string]*job),
	}
}

// Add schedules fn under name
func (s *Scheduler) Add(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}

	j := &job{name: name, schedule: schedule, run: fn}
	entry, err := s.cron.AddFunc(schedule, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	j.entry = entry
	s.jobs[name] = j

	s.logger.Info("Scheduled job", logging.String("job", name), logging.String("schedule", schedule))
	return nil
}

// RunNow executes a job immediately and reports whether it ran
func (s *Scheduler) RunNow(name string) bool {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return s.execute(j)
}

func (s *Scheduler) execute(j *job) bool {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		s.logger.Debug("Job already in progress, skipping", logging.String("job", j.name))
		return false
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	start := time.Now()
	if j.run == nil {
		return true
	}
	if err := j.run(); err != nil {
		s.logger.Error("Job failed", logging.String("job", j.name), logging.Error(err))
		return true
	}
	s.logger.Debug("Job completed", logging.String("job", j.name), logging.Duration("took", time.Since(start)))
	return true
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// Jobs returns the scheduled job names in sorted order
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextRun returns the next scheduled run of a job, or the zero time
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(j.entry).Next
}

// IsRunning reports whether a job is currently executing
func (s *Scheduler) IsRunning(name string) bool {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// Schedule returns the cron expression a job was added with
func (s *Scheduler) Schedule(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if j, ok := s.jobs[name]; ok {
		return j.schedule
	}
	return ""
}
