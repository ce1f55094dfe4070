package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobSubmitter queues jobs by type
type JobSubmitter interface {
	Submit(jobType JobType) error
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// DailyHour and DailyMinute are when terms and firm changes are refreshed
	DailyHour   int
	DailyMinute int

	// ChangedPersonInterval is how often changed AM.net persons are swept.
	// Zero disables the sweep.
	ChangedPersonInterval time.Duration

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DailyHour:             2, // 2am
		DailyMinute:           0,
		ChangedPersonInterval: 15 * time.Minute,
		CheckInterval:         time.Minute,
	}
}

// ParseDailySchedule reads a "minute hour * * *" cron expression
func ParseDailySchedule(expr string) (hour, minute int, err error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return 0, 0, fmt.Errorf("%w: %q: want 5 fields", ErrInvalidSchedule, expr)
	}
	for _, f := range fields[2:] {
		if f != "*" {
			return 0, 0, fmt.Errorf("%w: %q: only daily schedules are supported", ErrInvalidSchedule, expr)
		}
	}
	minute, err = strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q: bad minute", ErrInvalidSchedule, expr)
	}
	hour, err = strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q: bad hour", ErrInvalidSchedule, expr)
	}
	return hour, minute, nil
}

// CronTrigger enqueues the nightly reference refresh and the periodic
// changed-persons sweep
type CronTrigger struct {
	config    CronTriggerConfig
	submitter JobSubmitter
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
	lastSweep   time.Time
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, submitter JobSubmitter, logger *zap.Logger) *CronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &CronTrigger{
		config:    config,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("daily_hour", c.config.DailyHour),
		zap.Int("daily_minute", c.config.DailyMinute),
		zap.Duration("changed_person_interval", c.config.ChangedPersonInterval),
	)
	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(c.now())
		}
	}
}

// tick submits whatever is due at now
func (c *CronTrigger) tick(now time.Time) {
	if c.dailyDue(now) {
		c.logger.Info("Triggering nightly reference refresh")
		c.submit(JobTypeRefreshTerms)
		c.submit(JobTypeFirmChanges)
	}
	if c.sweepDue(now) {
		c.submit(JobTypeChangedPersons)
	}
}

func (c *CronTrigger) dailyDue(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := now.Format("2006-01-02")
	if c.lastRunDate == today {
		return false
	}
	if now.Hour() != c.config.DailyHour || now.Minute() != c.config.DailyMinute {
		return false
	}
	c.lastRunDate = today
	return true
}

func (c *CronTrigger) sweepDue(now time.Time) bool {
	if c.config.ChangedPersonInterval <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) < c.config.ChangedPersonInterval {
		return false
	}
	c.lastSweep = now
	return true
}

func (c *CronTrigger) submit(jobType JobType) {
	if err := c.submitter.Submit(jobType); err != nil {
		c.logger.Error("Failed to submit scheduled job",
			zap.String("job_type", string(jobType)),
			zap.Error(err),
		)
	}
}
