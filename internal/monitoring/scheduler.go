package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// purgeSchedule is how often expired password reset tokens are swept.
const purgeSchedule = "@hourly"

type job struct {
	name     string
	schedule cron.Schedule
	next     time.Time
	run      func(ctx context.Context) error
}

// Scheduler runs the site's background jobs on cron schedules.
type Scheduler struct {
	jobs     []*job
	interval time.Duration
	now      func() time.Time
	done     chan struct{}
	stop     sync.Once
}

// NewScheduler creates a scheduler with the reset-token purge job, plus the demo
// broadcast when demoSpec is a non-empty cron expression.
func NewScheduler(notificationSvc services.NotificationServiceProvider, authSvc services.AuthServiceProvider, demoSpec string) (*Scheduler, error) {
	s := &Scheduler{
		interval: time.Second,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	if err := s.add("purge-reset-tokens", purgeSchedule, func(ctx context.Context) error {
		removed, err := authSvc.PurgeExpiredResetTokens(ctx)
		if err == nil && removed > 0 {
			log.Info().Int("removed", removed).Msg("Purged expired reset tokens")
		}
		return err
	}); err != nil {
		return nil, err
	}

	if demoSpec != "" {
		if err := s.add("demo-broadcast", demoSpec, func(ctx context.Context) error {
			n, err := notificationSvc.Broadcast(ctx, models.NotificationDemo, "Demo Notification", "This is a demo notification.")
			if err == nil {
				log.Debug().Str("notification_id", n.ID).Msg("Broadcasted demo notification")
			}
			return err
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, run func(ctx context.Context) error) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for job %s: %w", spec, name, err)
	}
	s.jobs = append(s.jobs, &job{name: name, schedule: schedule, next: schedule.Next(s.now()), run: run})
	return nil
}

// Run starts the scheduler's ticking loop. It returns after Stop.
func (s *Scheduler) Run() {
	log.Info().Int("jobs", len(s.jobs)).Msg("Starting background scheduler...")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping background scheduler.")
			return
		case <-ticker.C:
			s.runDue()
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.stop.Do(func() { close(s.done) })
}

// runDue executes every job whose next run time has passed and reschedules it.
func (s *Scheduler) runDue() {
	now := s.now()
	for _, j := range s.jobs {
		if now.Before(j.next) {
			continue
		}
		j.next = j.schedule.Next(now)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := j.run(ctx); err != nil {
			log.Error().Err(err).Str("job", j.name).Msg("Scheduled job failed")
		}
		cancel()
	}
}
