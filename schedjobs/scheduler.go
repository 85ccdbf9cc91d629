package schedjobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zeptools/pledgedesk/svc"
)

// Scheduler runs cron jobs once per tick. It is a svc.Service.
type Scheduler struct {
	Tick time.Duration    // default one minute
	Now  func() time.Time // default time.Now

	ctx    context.Context
	cancel context.CancelFunc
	state  int
	done   chan error

	mu       sync.Mutex
	wg       sync.WaitGroup
	cronJobs []*CronJob

	// Default Callback
	OnCronJobFinished func(job *CronJob, err error)
}

// Ensure Scheduler implements svc.Service
var _ svc.Service = (*Scheduler)(nil)

func NewScheduler(parentCtx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parentCtx)
	return &Scheduler{
		Tick:   time.Minute,
		Now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		state:  svc.StateREADY,
		done:   make(chan error, 1),
	}
}

func (s *Scheduler) Name() string {
	return "JobScheduler"
}

func (s *Scheduler) Start() error {
	if s.state != svc.StateREADY {
		return fmt.Errorf("cannot start. not ready")
	}
	s.state = svc.StateRUNNING
	go s.loop()
	log.Println("[INFO][SCHED] job scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.state != svc.StateRUNNING {
		log.Println("[ERROR][SCHED] cannot stop. not running")
		return
	}
	s.cancel()
	s.state = svc.StateSTOPPED
}

func (s *Scheduler) Done() <-chan error {
	return s.done
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.RunDue(s.Now())
		case <-s.ctx.Done():
			s.wg.Wait() // wait for running tasks
			log.Println("[INFO][SCHED] job scheduler stopped")
			s.done <- nil
			return
		}
	}
}

// RunDue starts every job matching now and returns how many were started
func (s *Scheduler) RunDue(now time.Time) int {
	s.mu.Lock()
	jobs := append([]*CronJob(nil), s.cronJobs...) // copy jobs so unlocking early is possible
	s.mu.Unlock()
	n := 0
	for _, job := range jobs {
		if job.Matches(now) {
			s.runCronJob(job)
			n++
		}
	}
	return n
}

func (s *Scheduler) runCronJob(job *CronJob) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.safeRun(job)
		if err != nil {
			log.Printf("[ERROR][SCHED] job %s: %v", job.ID, err)
		}
		if job.OnFinished != nil {
			job.OnFinished(err)
		}
		if s.OnCronJobFinished != nil {
			s.OnCronJobFinished(job, err)
		}
	}()
}

func (s *Scheduler) safeRun(job *CronJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC][SCHED] recovered in job %s: %v", job.ID, r)
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	if job.Task == nil {
		return errors.New("job has no task")
	}
	return job.Task(s.ctx)
}

// Wait blocks until every started job has finished
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) AddCronJob(job *CronJob) {
	s.mu.Lock()
	s.cronJobs = append(s.cronJobs, job)
	s.mu.Unlock()
	log.Printf("[INFO][SCHED] cron job %s added", job.ID)
}

// GetCronJobs returns a copy of all registered cron jobs
func (s *Scheduler) GetCronJobs() []*CronJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*CronJob(nil), s.cronJobs...)
}

// DeleteCronJob removes a cron job by its ID
func (s *Scheduler) DeleteCronJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	newJobs := s.cronJobs[:0] // reuse underlying array
	for _, job := range s.cronJobs {
		if job.ID != jobID {
			newJobs = append(newJobs, job)
		}
	}
	s.cronJobs = newJobs
}
