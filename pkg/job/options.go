package job

import (
	"log/slog"
	"time"
)

type config struct {
	registry   *registry
	log        *slog.Logger
	queues     map[string]int
	schedules  []ScheduledTask
	maxWorkers int
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a typed task. The payload type is inferred from the
// task's Handle signature.
func WithTask[P any](task Task[P]) Option {
	return func(c *config) {
		c.registry.add(task.Name(), typedExecutor[P]{task: task})
	}
}

// WithScheduledTask registers a periodic task.
func WithScheduledTask(task ScheduledTask) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, task)
	}
}

// WithQueue adds a named queue with its own worker limit.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithMaxWorkers sets the default queue's worker limit. Default 20.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

type enqueueConfig struct {
	queue       string
	uniqueKey   string
	scheduledAt time.Time
	uniqueFor   time.Duration
	maxAttempts int
}

// EnqueueOption configures a single enqueue call.
type EnqueueOption func(*enqueueConfig)

func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) { c.queue = name }
}

func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = time.Now().Add(d) }
}

func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Unique skips the insert when a job with the same task name and key was
// inserted within period.
func Unique(key string, period time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
		c.uniqueFor = period
	}
}
