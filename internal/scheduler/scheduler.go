package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Revalidator refreshes cached series.
type Revalidator interface {
	RevalidateActive(ctx context.Context) error
}

// Scheduler periodically revalidates the series cache.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	revalidator Revalidator
	interval    time.Duration
	timeout     time.Duration
}

// New creates a new Scheduler. timeout bounds one revalidation run.
func New(revalidator Revalidator, interval, timeout time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:   s,
		revalidator: revalidator,
		interval:    interval,
		timeout:     timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens one interval after start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh interval disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running revalidation job")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.revalidator.RevalidateActive(ctx); err != nil {
		log.Printf("scheduler: revalidation finished with errors: %v", err)
		return
	}
	log.Println("scheduler: completed revalidation job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
