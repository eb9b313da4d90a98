package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"
)

// Enqueuer inserts jobs. *Manager implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error
}

// Manager runs registered tasks on River workers backed by Postgres.
type Manager struct {
	pool     *pgxpool.Pool
	client   *river.Client[pgx.Tx]
	registry *registry
	log      *slog.Logger

	mu      sync.Mutex
	started bool
}

var _ Enqueuer = (*Manager)(nil)

// NewManager builds the River client. Jobs may be enqueued before Start.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &config{
		registry:   newRegistry(),
		queues:     make(map[string]int),
		maxWorkers: 20,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	periodic, err := periodicJobs(cfg)
	if err != nil {
		return nil, err
	}

	queues := map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: cfg.maxWorkers}}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, log: cfg.log})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.log,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{pool: pool, client: client, registry: cfg.registry, log: cfg.log}, nil
}

func periodicJobs(cfg *config) ([]*river.PeriodicJob, error) {
	out := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, task := range cfg.schedules {
		sched, err := parseSchedule(task.Schedule())
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: %w", ErrInvalidSchedule, task.Schedule(), task.Name(), err)
		}
		cfg.registry.add(task.Name(), scheduledExecutor(task.Handle))

		name := task.Name()
		out = append(out, river.NewPeriodicJob(sched, func() (river.JobArgs, *river.InsertOpts) {
			return &taskArgs{Task: name}, nil
		}, &river.PeriodicJobOpts{}))
	}
	return out, nil
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}
	m.started = true
	m.log.InfoContext(ctx, "job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}
	m.started = false
	m.log.InfoContext(ctx, "job manager stopped")
	return nil
}

func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insert, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.Insert(ctx, args, insert); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

// EnqueueTx makes the job visible only once tx commits.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insert, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.InsertTx(ctx, tx, args, insert); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

func (m *Manager) prepare(name string, payload any, opts []EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	if _, ok := m.registry.lookup(name); !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return buildArgs(name, payload, opts...)
}

// Healthcheck fails until Start succeeds and whenever the pool is unreachable.
func (m *Manager) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if m == nil {
			return ErrHealthcheckFailed
		}
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if !started {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// StartFunc and Shutdown adapt the manager to app lifecycle hooks.
func (m *Manager) StartFunc() func(context.Context) error { return m.Start }

// Shutdown returns Stop as a shutdown hook. A manager that never started,
// because an earlier startup hook failed, counts as stopped.
func (m *Manager) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := m.Stop(ctx); err != nil && !errors.Is(err, ErrNotStarted) {
			return err
		}
		return nil
	}
}

// taskArgs is the single River job kind; Task selects the registered handler.
type taskArgs struct {
	Task      string          `json:"task" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "notifydesk:task" }

func buildArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{Task: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, errors.Join(ErrInvalidPayload, err)
		}
		args.Payload = raw
	}

	var ec enqueueConfig
	for _, opt := range opts {
		opt(&ec)
	}

	insert := &river.InsertOpts{
		Queue:       ec.queue,
		ScheduledAt: ec.scheduledAt,
		MaxAttempts: ec.maxAttempts,
	}
	if ec.uniqueFor > 0 {
		args.UniqueKey = ec.uniqueKey
		insert.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: ec.uniqueFor}
	}
	return args, insert, nil
}

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	log      *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	exec, ok := w.registry.lookup(j.Args.Task)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, j.Args.Task)
	}

	log := w.log.With(slog.String("task", j.Args.Task), slog.Int64("job_id", j.ID), slog.Int("attempt", j.Attempt))
	if err := exec.execute(ctx, j.Args.Payload); err != nil {
		log.ErrorContext(ctx, "task failed", slog.Any("error", err))
		return err
	}
	log.DebugContext(ctx, "task completed")
	return nil
}

type cronSchedule struct{ cron.Schedule }

func (s cronSchedule) Next(t time.Time) time.Time { return s.Schedule.Next(t) }

func parseSchedule(expr string) (river.PeriodicSchedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{s}, nil
}
