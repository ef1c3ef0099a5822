package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/riskos/internal/common"
)

// ErrJobRunning is returned when a job is triggered while its previous run is still active
var ErrJobRunning = errors.New("job already running")

// JobFunc is the work executed on each tick
type JobFunc func(ctx context.Context) error

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     JobFunc
	autoStart   bool
	cronID      cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
	runs        int
}

// JobStatus is a point-in-time view of a registered job
type JobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description,omitempty"`
	LastRun     *time.Time `json:"lastRun,omitempty"`
	NextRun     *time.Time `json:"nextRun,omitempty"`
	IsRunning   bool       `json:"isRunning"`
	LastError   string     `json:"lastError,omitempty"`
	Runs        int        `json:"runs"`
}

// Service runs registered jobs on 6-field cron schedules (seconds first).
// A tick that fires while the previous run of the same job is active is skipped.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	jobMu   sync.Mutex
	jobs    map[string]*jobEntry
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	now     func() time.Time
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// RegisterJob registers a new job with the scheduler
func (s *Service) RegisterJob(name, schedule, description string, autoStart bool, handler JobFunc) error {
	if err := common.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
		autoStart:   autoStart,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		if err := s.execute(name); err != nil && !errors.Is(err, ErrJobRunning) {
			s.logger.Warn().Err(err).Str("job_name", name).Msg("Scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Bool("auto_start", autoStart).
		Msg("Job registered")

	return nil
}

// Start begins firing registered jobs. Auto-start jobs run once immediately.
func (s *Service) Start() error {
	s.jobMu.Lock()
	if s.running {
		s.jobMu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	var autoStart []string
	for name, entry := range s.jobs {
		if entry.autoStart {
			autoStart = append(autoStart, name)
		}
	}
	s.jobMu.Unlock()

	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")

	sort.Strings(autoStart)
	for _, name := range autoStart {
		name := name
		s.logger.Info().Str("job_name", name).Msg("Executing auto-start job")
		go func() {
			if err := s.execute(name); err != nil && !errors.Is(err, ErrJobRunning) {
				s.logger.Warn().Err(err).Str("job_name", name).Msg("Auto-start job failed")
			}
		}()
	}
	return nil
}

// Stop halts the scheduler, cancels in-flight runs and waits for them to
// return or for ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	s.jobMu.Lock()
	if !s.running {
		s.jobMu.Unlock()
		return nil
	}
	s.running = false
	s.jobMu.Unlock()

	<-s.cron.Stop().Done()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// IsRunning returns true if scheduler is active
func (s *Service) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

// RunNow executes a job synchronously outside its schedule
func (s *Service) RunNow(name string) error {
	return s.execute(name)
}

// Jobs returns the status of every registered job sorted by name
func (s *Service) Jobs() []JobStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, entry := range s.jobs {
		status := JobStatus{
			Name:        entry.name,
			Schedule:    entry.schedule,
			Description: entry.description,
			LastRun:     entry.lastRun,
			IsRunning:   entry.isRunning,
			LastError:   entry.lastError,
			Runs:        entry.runs,
		}
		if next := s.cron.Entry(entry.cronID).Next; !next.IsZero() {
			status.NextRun = &next
		}
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) execute(name string) error {
	s.jobMu.Lock()
	entry, ok := s.jobs[name]
	if !ok {
		s.jobMu.Unlock()
		return fmt.Errorf("job %s not found", name)
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job_name", name).Msg("Previous run still active, skipping")
		return ErrJobRunning
	}
	entry.isRunning = true
	started := s.now()
	entry.lastRun = &started
	s.wg.Add(1)
	s.jobMu.Unlock()

	defer s.wg.Done()

	s.logger.Info().Str("job_name", name).Msg("Job started")
	err := s.runHandler(entry)

	s.jobMu.Lock()
	entry.isRunning = false
	entry.runs++
	entry.lastError = ""
	if err != nil {
		entry.lastError = err.Error()
	}
	s.jobMu.Unlock()

	if err != nil {
		return err
	}
	s.logger.Info().
		Str("job_name", name).
		Str("duration", s.now().Sub(started).String()).
		Msg("Job completed")
	return nil
}

func (s *Service) runHandler(entry *jobEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", entry.name, r)
		}
	}()
	return entry.handler(s.ctx)
}
