package verification

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler runs delayed and recurring tasks. Every task carries tags; an
// owner tag lets a session or view cancel everything it scheduled.
type Scheduler struct {
	s   gocron.Scheduler
	log *zap.Logger
}

func NewScheduler(log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s, err := gocron.NewScheduler(gocron.WithLogger(zapLogger{log.Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.Start()

	return &Scheduler{s: s, log: log}, nil
}

// After runs fn once after delay.
func (s *Scheduler) After(name string, delay time.Duration, fn func(), tags ...string) error {
	start := gocron.OneTimeJobStartImmediately()
	if delay > 0 {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}

	_, err := s.s.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithTags(tags...),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

// Every runs fn each interval until the job is cancelled by one of its tags.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(), tags ...string) error {
	_, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithTags(tags...),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

// Cancel removes every pending job carrying tag.
func (s *Scheduler) Cancel(tag string) {
	if tag == "" {
		return
	}
	s.s.RemoveByTags(tag)
	s.log.Debug("cancelled scheduled jobs", zap.String("tag", tag))
}

// Pending returns the number of jobs carrying tag.
func (s *Scheduler) Pending(tag string) int {
	n := 0
	for _, j := range s.s.Jobs() {
		for _, t := range j.Tags() {
			if t == tag {
				n++
				break
			}
		}
	}
	return n
}

func (s *Scheduler) Shutdown() error {
	return s.s.Shutdown()
}

type zapLogger struct {
	l *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z zapLogger) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }
func (z zapLogger) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z zapLogger) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
